package service

import (
	"context"

	"photogram/internal/cache"
	"photogram/internal/models"
	"photogram/internal/repository"
	"photogram/internal/validation"
)

const maxCommentLength = 500

// CommentService owns comment creation and listing under a post.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// CreateCommentInput carries a new comment for a post.
type CreateCommentInput struct {
	PostID  uint
	Content string
	UserID  uint
}

// NewCommentService creates a CommentService.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// CreateComment validates the content and attaches the comment to an
// existing post. A missing post is a 404, not a dangling foreign key.
func (s *CommentService) CreateComment(ctx context.Context, input CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateCaption(input.Content, maxCommentLength); err != nil {
		return nil, models.NewValidationError("Comment " + err.Error())
	}

	if _, err := s.postRepo.GetByID(ctx, input.PostID, 0); err != nil {
		return nil, lookupError(err, "Post", input.PostID)
	}

	comment := &models.Comment{
		Content: input.Content,
		PostID:  input.PostID,
		UserID:  input.UserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	// The cached post detail carries comments_count.
	cache.Invalidate(ctx, cache.PostKey(input.PostID))
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns a post's comments, newest first. The post must
// exist; listing comments of a deleted post is a 404.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, lookupError(err, "Post", postID)
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// DeleteComment removes the caller's own comment.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return lookupError(err, "Comment", commentID)
	}
	if comment.UserID != userID {
		return &models.AppError{Code: "FORBIDDEN", Message: "You can only delete your own comments"}
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(comment.PostID))
	return nil
}
