package service

import (
	"context"

	"photogram/internal/models"
	"photogram/internal/repository"
)

// UserService owns profile reads and the self-service account operations.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	UserID uint
	Bio    *string
}

// NewUserService creates a UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUser returns a user's public profile.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "User", id)
	}
	return user, nil
}

// ListUsers returns a page of users.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateProfile applies the caller's profile edits. Username, email and
// password do not change through this path.
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, lookupError(err, "User", input.UserID)
	}

	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the caller's account. Posts, comments, likes and
// auth tokens follow via the cascading foreign keys.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return lookupError(err, "User", userID)
	}
	return s.userRepo.Delete(ctx, userID)
}
