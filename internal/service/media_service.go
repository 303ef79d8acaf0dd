// Package service implements the business rules between HTTP handlers and
// repositories.
package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"path"

	"photogram/internal/models"
	"photogram/internal/storage"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// postNamespace prefixes every stored post image key.
	postNamespace = "posts"

	maxUploadSizeBytes = 10 << 20
	thumbMaxSize       = 256
	thumbWebPQuality   = 70
)

var extByFormat = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// MediaService validates uploaded images and places them in the object
// store under the posts namespace. Only keys leave this service.
type MediaService struct {
	store storage.ObjectStore
}

// NewMediaService returns a MediaService backed by the given store.
func NewMediaService(store storage.ObjectStore) *MediaService {
	return &MediaService{store: store}
}

// StorePostImage decodes and stores an uploaded image, returning the
// object key of the original and of a generated WebP thumbnail. The key is
// content-addressed, so re-uploading identical bytes reuses the same
// object.
func (s *MediaService) StorePostImage(ctx context.Context, data []byte) (imageKey, thumbKey string, err error) {
	if len(data) == 0 {
		return "", "", models.NewValidationError("Image file is required")
	}
	if len(data) > maxUploadSizeBytes {
		return "", "", models.NewValidationError("Image exceeds the maximum upload size of 10MB")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", "", models.NewValidationError("Uploaded file is not a supported image")
	}
	ext, ok := extByFormat[format]
	if !ok {
		return "", "", models.NewValidationError(fmt.Sprintf("Unsupported image format %q", format))
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	imageKey = path.Join(postNamespace, hash[:2], hash+ext)
	thumbKey = path.Join(postNamespace, hash[:2], hash+"_thumb.webp")

	if err := s.store.Save(ctx, imageKey, data); err != nil {
		return "", "", fmt.Errorf("store image: %w", err)
	}

	thumb, err := encodeThumbnail(img)
	if err != nil {
		// The original is stored; a missing thumbnail degrades, not fails.
		return imageKey, "", nil
	}
	if err := s.store.Save(ctx, thumbKey, thumb); err != nil {
		return imageKey, "", nil
	}
	return imageKey, thumbKey, nil
}

// Remove deletes stored objects for a post. Best-effort.
func (s *MediaService) Remove(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		_ = s.store.Remove(ctx, key)
	}
}

func encodeThumbnail(src image.Image) ([]byte, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty image")
	}

	scale := 1.0
	if w > h && w > thumbMaxSize {
		scale = float64(thumbMaxSize) / float64(w)
	} else if h >= w && h > thumbMaxSize {
		scale = float64(thumbMaxSize) / float64(h)
	}
	tw := int(float64(w) * scale)
	th := int(float64(h) * scale)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: thumbWebPQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
