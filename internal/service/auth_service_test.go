package service

import (
	"context"
	"errors"
	"testing"

	"photogram/internal/config"
	"photogram/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testAuthConfig(mode string) *config.Config {
	return &config.Config{
		AuthMode:          mode,
		JWTSecret:         "test_secret",
		AccessTokenTTLMin: 15,
		RefreshTokenTTLHr: 24,
	}
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:  "alice",
		Email:     "alice@example.com",
		Password1: "Password123!",
		Password2: "Password123!",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	t.Parallel()

	userRepo := noopUserRepo()
	var created *models.User
	userRepo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 1
		created = u
		return nil
	}

	svc := NewAuthService(testAuthConfig(config.AuthModeJWT), userRepo, noopTokenRepo())
	user, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "alice", user.Username)

	// Stored password must be a bcrypt hash, never the plaintext
	assert.NotEqual(t, "Password123!", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("Password123!")))
}

func TestAuthService_Register_FieldErrors(t *testing.T) {
	t.Parallel()

	t.Run("password mismatch is scoped to password", func(t *testing.T) {
		t.Parallel()
		svc := NewAuthService(testAuthConfig(config.AuthModeJWT), noopUserRepo(), noopTokenRepo())

		in := validRegisterInput()
		in.Password2 = "Different123!"
		_, err := svc.Register(context.Background(), in)

		var fieldErrs models.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "password")
		assert.NotContains(t, fieldErrs, "email")
		assert.NotContains(t, fieldErrs, "username")
	})

	t.Run("duplicate email is scoped to email", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: 7, Email: email}, nil
		}
		createCalled := false
		userRepo.createFn = func(_ context.Context, _ *models.User) error {
			createCalled = true
			return nil
		}
		svc := NewAuthService(testAuthConfig(config.AuthModeJWT), userRepo, noopTokenRepo())

		_, err := svc.Register(context.Background(), validRegisterInput())

		var fieldErrs models.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "email")
		assert.NotContains(t, fieldErrs, "password")
		assert.False(t, createCalled, "a rejected registration must not hit the database")
	})

	t.Run("missing fields collect per-field messages", func(t *testing.T) {
		t.Parallel()
		svc := NewAuthService(testAuthConfig(config.AuthModeJWT), noopUserRepo(), noopTokenRepo())

		_, err := svc.Register(context.Background(), RegisterInput{})

		var fieldErrs models.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "username")
		assert.Contains(t, fieldErrs, "email")
		assert.Contains(t, fieldErrs, "password")
	})

	t.Run("weak password", func(t *testing.T) {
		t.Parallel()
		svc := NewAuthService(testAuthConfig(config.AuthModeJWT), noopUserRepo(), noopTokenRepo())

		in := validRegisterInput()
		in.Password1 = "weakpass"
		in.Password2 = "weakpass"
		_, err := svc.Register(context.Background(), in)

		var fieldErrs models.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "password")
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := noopUserRepo()
	userRepo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if username == "alice" {
			return &models.User{ID: 1, Username: "alice", Password: string(hash)}, nil
		}
		return nil, nil
	}
	svc := NewAuthService(testAuthConfig(config.AuthModeJWT), userRepo, noopTokenRepo())
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "alice", "Password123!")
		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "alice", "WrongPass123!")
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody", "Password123!")
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})
}

func TestAuthService_JWTRoundTrip(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(testAuthConfig(config.AuthModeJWT), noopUserRepo(), noopTokenRepo())
	ctx := context.Background()

	creds, err := svc.IssueCredentials(ctx, &models.User{ID: 42})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", creds.TokenType)
	require.NotEmpty(t, creds.Access)
	require.NotEmpty(t, creds.Refresh)

	userID, err := svc.ResolveCredential(ctx, "Bearer "+creds.Access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	// A refresh token is not an access token
	_, err = svc.ResolveCredential(ctx, "Bearer "+creds.Refresh)
	assertAppErrorCode(t, err, "UNAUTHORIZED")
}

func TestAuthService_Refresh(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(testAuthConfig(config.AuthModeJWT), noopUserRepo(), noopTokenRepo())
	ctx := context.Background()

	creds, err := svc.IssueCredentials(ctx, &models.User{ID: 7})
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, creds.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, next.Access)

	// An access token must not be accepted for refresh
	_, err = svc.Refresh(ctx, creds.Access)
	assertAppErrorCode(t, err, "UNAUTHORIZED")
}

func TestAuthService_OpaqueTokenMode(t *testing.T) {
	t.Parallel()

	tokenRepo := noopTokenRepo()
	deleted := false
	tokenRepo.deleteByUserFn = func(_ context.Context, userID uint) error {
		assert.Equal(t, uint(5), userID)
		deleted = true
		return nil
	}
	tokenRepo.getByKeyFn = func(_ context.Context, key string) (*models.AuthToken, error) {
		if key == "stub-key" {
			return &models.AuthToken{Key: key, UserID: 5}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}

	svc := NewAuthService(testAuthConfig(config.AuthModeToken), noopUserRepo(), tokenRepo)
	ctx := context.Background()

	creds, err := svc.IssueCredentials(ctx, &models.User{ID: 5})
	require.NoError(t, err)
	assert.Equal(t, "Token", creds.TokenType)
	assert.Equal(t, "stub-key", creds.Token)
	assert.Empty(t, creds.Access)

	userID, err := svc.ResolveCredential(ctx, "Token stub-key")
	require.NoError(t, err)
	assert.Equal(t, uint(5), userID)

	// Bearer scheme is rejected in token mode
	_, err = svc.ResolveCredential(ctx, "Bearer stub-key")
	assertAppErrorCode(t, err, "UNAUTHORIZED")

	// Unknown key
	_, err = svc.ResolveCredential(ctx, "Token bogus")
	assertAppErrorCode(t, err, "UNAUTHORIZED")

	require.NoError(t, svc.Logout(ctx, 5))
	assert.True(t, deleted)
}

func TestAuthService_ResolveCredential_TokenModeErrors(t *testing.T) {
	t.Parallel()

	t.Run("unknown key is unauthorized", func(t *testing.T) {
		t.Parallel()
		tokenRepo := noopTokenRepo()
		tokenRepo.getByKeyFn = func(_ context.Context, _ string) (*models.AuthToken, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewAuthService(testAuthConfig(config.AuthModeToken), noopUserRepo(), tokenRepo)

		_, err := svc.ResolveCredential(context.Background(), "Token deadbeef")
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})

	t.Run("repository failure is internal", func(t *testing.T) {
		t.Parallel()
		tokenRepo := noopTokenRepo()
		tokenRepo.getByKeyFn = func(_ context.Context, _ string) (*models.AuthToken, error) {
			return nil, errors.New("connection refused")
		}
		svc := NewAuthService(testAuthConfig(config.AuthModeToken), noopUserRepo(), tokenRepo)

		_, err := svc.ResolveCredential(context.Background(), "Token deadbeef")
		assertAppErrorCode(t, err, "INTERNAL_ERROR")
	})
}

func TestAuthService_Register_UniqueRace(t *testing.T) {
	t.Parallel()

	userRepo := noopUserRepo()
	userRepo.createFn = func(_ context.Context, _ *models.User) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
	}
	svc := NewAuthService(testAuthConfig(config.AuthModeJWT), userRepo, noopTokenRepo())

	_, err := svc.Register(context.Background(), validRegisterInput())
	assertAppErrorCode(t, err, "CONFLICT")
}
