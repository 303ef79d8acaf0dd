package repository

import (
	"context"

	"photogram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// Create inserts the like. It returns false with a nil error when a
	// like for the same (post, user) already exists.
	Create(ctx context.Context, like *models.Like) (bool, error)
	GetByPostAndUser(ctx context.Context, postID, userID uint) (*models.Like, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	Delete(ctx context.Context, postID, userID uint) error
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create relies on the (post_id, user_id) unique index rather than a
// check-then-insert: ON CONFLICT DO NOTHING makes concurrent duplicate
// requests converge on a single row, and a zero-row result is the
// duplicate signal.
func (r *likeRepository) Create(ctx context.Context, like *models.Like) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(like)
	if result.Error != nil {
		if IsUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *likeRepository) GetByPostAndUser(ctx context.Context, postID, userID uint) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&like).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *likeRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *likeRepository) Delete(ctx context.Context, postID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{}).Error
}
