package service

import (
	"context"

	"photogram/internal/cache"
	"photogram/internal/models"
	"photogram/internal/observability"
	"photogram/internal/repository"
)

// LikeService owns the like/unlike operations. Uniqueness is enforced by
// the likes table's composite index, so concurrent double-likes collapse
// to a single row without racing on a read-then-write.
type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
}

// NewLikeService creates a LikeService.
func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo}
}

// LikePost records the caller's like on a post. Liking a post twice is a
// business-rule error with a fixed message.
func (s *LikeService) LikePost(ctx context.Context, postID, userID uint) (*models.Like, error) {
	if postID == 0 {
		return nil, models.NewValidationError("post_id is required")
	}
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, lookupError(err, "Post", postID)
	}

	like := &models.Like{PostID: postID, UserID: userID}
	created, err := s.likeRepo.Create(ctx, like)
	if err != nil {
		return nil, err
	}
	if !created {
		observability.LikeConflictsTotal.Inc()
		return nil, models.NewConflictError("You have already liked this post.")
	}

	observability.LikesTotal.Inc()
	cache.Invalidate(ctx, cache.PostKey(postID))
	return s.likeRepo.GetByPostAndUser(ctx, postID, userID)
}

// UnlikePost removes the caller's like. Unliking a post that was never
// liked is a 404.
func (s *LikeService) UnlikePost(ctx context.Context, postID, userID uint) error {
	if _, err := s.likeRepo.GetByPostAndUser(ctx, postID, userID); err != nil {
		return lookupError(err, "Like", postID)
	}
	if err := s.likeRepo.Delete(ctx, postID, userID); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(postID))
	return nil
}

// CountLikes returns the number of likes on a post.
func (s *LikeService) CountLikes(ctx context.Context, postID uint) (int64, error) {
	return s.likeRepo.CountByPost(ctx, postID)
}
