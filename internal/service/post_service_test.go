package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"photogram/internal/models"
	"photogram/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testMediaService(t *testing.T) *MediaService {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return NewMediaService(store)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopTagRepo(), testMediaService(t))
	ctx := context.Background()

	t.Run("empty caption", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Image: makePNG(t, 4, 4)})
		assertValidationError(t, err)
	})

	t.Run("caption too long", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID:  1,
			Caption: strings.Repeat("x", 501),
			Image:   makePNG(t, 4, 4),
		})
		assertValidationError(t, err)
	})

	t.Run("missing image", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Caption: "hello"})
		assertValidationError(t, err)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID:  1,
			Caption: "hello",
			Image:   []byte("definitely not image bytes"),
		})
		assertValidationError(t, err)
	})
}

func TestPostService_CreatePost_Success(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	var stored *models.Post
	postRepo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 9
		stored = p
		return nil
	}
	postRepo.getByIDFn = func(_ context.Context, id, currentUserID uint) (*models.Post, error) {
		require.NotNil(t, stored)
		return stored, nil
	}

	svc := NewPostService(postRepo, noopTagRepo(), testMediaService(t))
	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:   3,
		Caption:  "first light",
		Image:    makePNG(t, 64, 48),
		TagNames: []string{"nature", "sunset"},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(3), post.UserID)
	assert.NotEmpty(t, post.ImagePath)
	assert.Len(t, post.Tags, 2)
}

func TestPostService_CreatePost_DeduplicatesTags(t *testing.T) {
	t.Parallel()

	tagRepo := noopTagRepo()
	var requested []string
	base := tagRepo.getOrCreateFn
	tagRepo.getOrCreateFn = func(ctx context.Context, name string) (*models.Tag, error) {
		requested = append(requested, name)
		return base(ctx, name)
	}

	svc := NewPostService(noopPostRepo(), tagRepo, testMediaService(t))
	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:   1,
		Caption:  "tagged",
		Image:    makePNG(t, 4, 4),
		TagNames: []string{"nature", "nature", "  ", "sunset", "nature"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"nature", "sunset"}, requested)
	assert.Len(t, post.Tags, 2)
}

func TestPostService_UpdatePost_Ownership(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 10, Caption: "original"}, nil
	}
	svc := NewPostService(postRepo, noopTagRepo(), testMediaService(t))

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		PostID:  1,
		Caption: "hijacked",
		UserID:  2, // not the author
	})
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	t.Run("owner can delete", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 4}, nil
		}
		deleted := false
		postRepo.deleteFn = func(_ context.Context, id uint) error {
			deleted = true
			return nil
		}
		svc := NewPostService(postRepo, noopTagRepo(), testMediaService(t))
		require.NoError(t, svc.DeletePost(context.Background(), 1, 4))
		assert.True(t, deleted)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 4}, nil
		}
		svc := NewPostService(postRepo, noopTagRepo(), testMediaService(t))
		err := svc.DeletePost(context.Background(), 1, 5)
		assertAppErrorCode(t, err, "FORBIDDEN")
	})

	t.Run("missing post is not found", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewPostService(postRepo, noopTagRepo(), testMediaService(t))
		err := svc.DeletePost(context.Background(), 99, 4)
		assertNotFoundError(t, err)
	})
}

func TestPostService_GetPost_ErrorTranslation(t *testing.T) {
	t.Parallel()

	t.Run("missing row is not found", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewPostService(postRepo, noopTagRepo(), testMediaService(t))

		_, err := svc.GetPost(context.Background(), 99, 0)
		assertNotFoundError(t, err)
	})

	t.Run("repository failure is internal", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return nil, errors.New("connection refused")
		}
		svc := NewPostService(postRepo, noopTagRepo(), testMediaService(t))

		_, err := svc.GetPost(context.Background(), 99, 0)
		assertAppErrorCode(t, err, "INTERNAL_ERROR")
	})
}
