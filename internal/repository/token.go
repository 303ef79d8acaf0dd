package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"photogram/internal/models"

	"gorm.io/gorm"
)

// TokenRepository manages opaque auth tokens for the token auth variant.
type TokenRepository interface {
	// GetOrCreate returns the user's token, minting one on first login.
	GetOrCreate(ctx context.Context, userID uint) (*models.AuthToken, error)
	GetByKey(ctx context.Context, key string) (*models.AuthToken, error)
	DeleteByUser(ctx context.Context, userID uint) error
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func generateTokenKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (r *tokenRepository) GetOrCreate(ctx context.Context, userID uint) (*models.AuthToken, error) {
	var token models.AuthToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error
	if err == nil {
		return &token, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	key, err := generateTokenKey()
	if err != nil {
		return nil, err
	}
	token = models.AuthToken{Key: key, UserID: userID}
	if createErr := r.db.WithContext(ctx).Create(&token).Error; createErr != nil {
		if IsUniqueViolation(createErr) {
			// Concurrent first login minted it already.
			if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error; err != nil {
				return nil, err
			}
			return &token, nil
		}
		return nil, createErr
	}
	return &token, nil
}

func (r *tokenRepository) GetByKey(ctx context.Context, key string) (*models.AuthToken, error) {
	var token models.AuthToken
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error
}
