package service

import (
	"context"
	"strings"

	"photogram/internal/models"
	"photogram/internal/observability"
	"photogram/internal/repository"
	"photogram/internal/validation"
)

const maxCaptionLength = 500

// PostService owns post lifecycle: image intake, tag resolution and the
// ownership rules for update and delete.
type PostService struct {
	postRepo repository.PostRepository
	tagRepo  repository.TagRepository
	media    *MediaService
}

// CreatePostInput carries a new post. Image is the raw uploaded bytes;
// TagNames may contain duplicates and blanks, both are dropped.
type CreatePostInput struct {
	Caption  string
	Image    []byte
	TagNames []string
	UserID   uint
}

// UpdatePostInput carries a caption edit. Only the owner may update, and
// only the caption is mutable; the image is immutable after creation.
type UpdatePostInput struct {
	PostID  uint
	Caption string
	UserID  uint
}

// NewPostService creates a PostService.
func NewPostService(postRepo repository.PostRepository, tagRepo repository.TagRepository, media *MediaService) *PostService {
	return &PostService{postRepo: postRepo, tagRepo: tagRepo, media: media}
}

// CreatePost validates the caption, stores the image, resolves tags by name
// (reusing existing rows) and persists the post with the caller as author.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	if err := validation.ValidateCaption(input.Caption, maxCaptionLength); err != nil {
		return nil, models.NewValidationError("Caption " + err.Error())
	}
	if len(input.Image) == 0 {
		return nil, models.NewValidationError("An image file is required")
	}

	tags, err := s.resolveTags(ctx, input.TagNames)
	if err != nil {
		return nil, err
	}

	imageKey, thumbKey, err := s.media.StorePostImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Caption:   input.Caption,
		ImagePath: imageKey,
		ThumbPath: thumbKey,
		UserID:    input.UserID,
		Tags:      tags,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		s.media.Remove(ctx, imageKey, thumbKey)
		return nil, err
	}

	observability.PostsCreatedTotal.Inc()
	return s.postRepo.GetByID(ctx, post.ID, input.UserID)
}

// resolveTags normalizes the requested names and maps each distinct one to
// a tag row, creating rows only for names not seen before.
func (s *PostService) resolveTags(ctx context.Context, names []string) ([]models.Tag, error) {
	seen := make(map[string]bool, len(names))
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		if err := validation.ValidateTagName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		seen[name] = true

		tag, err := s.tagRepo.GetOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// GetPost returns a single post with its computed counters. currentUserID
// may be zero for anonymous readers.
func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return post, nil
}

// ListPosts returns posts newest first.
func (s *PostService) ListPosts(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset, currentUserID)
}

// ListUserPosts returns one author's posts newest first.
func (s *PostService) ListUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

// UpdatePost edits a post's caption. Callers other than the author get a
// 403 regardless of the requested change.
func (s *PostService) UpdatePost(ctx context.Context, input UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, input.PostID, 0)
	if err != nil {
		return nil, lookupError(err, "Post", input.PostID)
	}
	if post.UserID != input.UserID {
		return nil, &models.AppError{Code: "FORBIDDEN", Message: "You can only edit your own posts"}
	}
	if err := validation.ValidateCaption(input.Caption, maxCaptionLength); err != nil {
		return nil, models.NewValidationError("Caption " + err.Error())
	}

	post.Caption = input.Caption
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, input.UserID)
}

// DeletePost removes a post and its stored image files. Comments and likes
// go with it via the schema's cascading foreign keys.
func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return lookupError(err, "Post", postID)
	}
	if post.UserID != userID {
		return &models.AppError{Code: "FORBIDDEN", Message: "You can only delete your own posts"}
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	s.media.Remove(ctx, post.ImagePath, post.ThumbPath)
	return nil
}
