package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"photogram/internal/config"
	"photogram/internal/models"
	"photogram/internal/observability"
	"photogram/internal/repository"
	"photogram/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "photogram-api"
	tokenAudience = "photogram-client"

	claimKindAccess  = "access"
	claimKindRefresh = "refresh"
)

// Credentials is what login returns. Exactly one variant is populated,
// selected by AUTH_MODE: an opaque key, or a signed access/refresh pair.
type Credentials struct {
	TokenType string `json:"token_type"`
	Token     string `json:"token,omitempty"`
	Access    string `json:"access,omitempty"`
	Refresh   string `json:"refresh,omitempty"`
}

// AuthService owns registration, credential verification and token
// issuance for both auth variants.
type AuthService struct {
	cfg       *config.Config
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
}

// RegisterInput carries the registration payload. Password2 is the
// confirmation; it is validated and discarded, never stored.
type RegisterInput struct {
	Username  string
	Email     string
	Password1 string
	Password2 string
}

// NewAuthService creates an AuthService.
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, tokenRepo repository.TokenRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, tokenRepo: tokenRepo}
}

// registerCheck is one named step of the registration pipeline. Checks run
// in order and record failures into the shared field error set.
type registerCheck struct {
	name string
	run  func(ctx context.Context, in RegisterInput, errs models.FieldErrors) error
}

func (s *AuthService) registerChecks() []registerCheck {
	return []registerCheck{
		{name: "required", run: func(_ context.Context, in RegisterInput, errs models.FieldErrors) error {
			if in.Username == "" {
				errs.Add("username", "This field is required")
			}
			if in.Email == "" {
				errs.Add("email", "This field is required")
			}
			if in.Password1 == "" {
				errs.Add("password", "This field is required")
			}
			return nil
		}},
		{name: "username_format", run: func(_ context.Context, in RegisterInput, errs models.FieldErrors) error {
			if in.Username == "" {
				return nil
			}
			if err := validation.ValidateUsername(in.Username); err != nil {
				errs.Add("username", err.Error())
			}
			return nil
		}},
		{name: "email_format", run: func(_ context.Context, in RegisterInput, errs models.FieldErrors) error {
			if in.Email == "" {
				return nil
			}
			if err := validation.ValidateEmail(in.Email); err != nil {
				errs.Add("email", err.Error())
			}
			return nil
		}},
		{name: "email_unique", run: func(ctx context.Context, in RegisterInput, errs models.FieldErrors) error {
			if in.Email == "" || len(errs["email"]) > 0 {
				return nil
			}
			existing, err := s.userRepo.GetByEmail(ctx, in.Email)
			if err != nil {
				return err
			}
			if existing != nil {
				errs.Add("email", "An account with this email address already exists")
			}
			return nil
		}},
		{name: "username_unique", run: func(ctx context.Context, in RegisterInput, errs models.FieldErrors) error {
			if in.Username == "" || len(errs["username"]) > 0 {
				return nil
			}
			existing, err := s.userRepo.GetByUsername(ctx, in.Username)
			if err != nil {
				return err
			}
			if existing != nil {
				errs.Add("username", "This username is already taken")
			}
			return nil
		}},
		{name: "password_strength", run: func(_ context.Context, in RegisterInput, errs models.FieldErrors) error {
			if in.Password1 == "" {
				return nil
			}
			if err := validation.ValidatePassword(in.Password1); err != nil {
				errs.Add("password", err.Error())
			}
			return nil
		}},
		{name: "password_match", run: func(_ context.Context, in RegisterInput, errs models.FieldErrors) error {
			if in.Password1 != in.Password2 {
				errs.Add("password", "Passwords must match")
			}
			return nil
		}},
	}
}

// Register runs the validation pipeline and persists the new user with a
// bcrypt-hashed password. A models.FieldErrors return carries every failed
// check, keyed by field.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	errs := models.FieldErrors{}
	for _, check := range s.registerChecks() {
		if err := check.run(ctx, in, errs); err != nil {
			return nil, fmt.Errorf("registration check %q: %w", check.name, err)
		}
	}
	if errs.HasErrors() {
		return nil, errs
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			// A concurrent registration slipped past the uniqueness checks.
			return nil, models.NewConflictError("A user with that username or email already exists")
		}
		return nil, models.NewInternalError(err)
	}

	observability.RegistrationsTotal.Inc()
	return user, nil
}

// Authenticate verifies a username/password pair against the stored hash.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// IssueCredentials returns the login credential for the configured auth
// mode: a per-user opaque key (get-or-create) or a fresh JWT pair.
func (s *AuthService) IssueCredentials(ctx context.Context, user *models.User) (*Credentials, error) {
	if s.cfg.AuthMode == config.AuthModeToken {
		token, err := s.tokenRepo.GetOrCreate(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return &Credentials{TokenType: "Token", Token: token.Key}, nil
	}

	access, err := s.signToken(user.ID, claimKindAccess, time.Duration(s.cfg.AccessTokenTTLMin)*time.Minute)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(user.ID, claimKindRefresh, time.Duration(s.cfg.RefreshTokenTTLHr)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &Credentials{TokenType: "Bearer", Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access/refresh pair.
// There is no server-side revocation list; the old pair simply ages out.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	if s.cfg.AuthMode != config.AuthModeJWT {
		return nil, models.NewValidationError("Token refresh is not available in opaque-token mode")
	}
	userID, err := s.parseToken(refreshToken, claimKindRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid or expired token")
		}
		return nil, models.NewInternalError(err)
	}
	return s.IssueCredentials(ctx, user)
}

// ResolveCredential maps an Authorization header value to the caller's
// user ID, honoring the configured auth mode. This is the single gate used
// by the auth middleware.
func (s *AuthService) ResolveCredential(ctx context.Context, authHeader string) (uint, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return 0, models.NewUnauthorizedError("Invalid authorization header format")
	}
	scheme, value := parts[0], parts[1]

	switch s.cfg.AuthMode {
	case config.AuthModeToken:
		if scheme != "Token" {
			return 0, models.NewUnauthorizedError("Expected 'Token <key>' authorization")
		}
		token, err := s.tokenRepo.GetByKey(ctx, value)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, models.NewUnauthorizedError("Invalid token")
			}
			return 0, models.NewInternalError(err)
		}
		return token.UserID, nil
	default:
		if scheme != "Bearer" {
			return 0, models.NewUnauthorizedError("Expected 'Bearer <token>' authorization")
		}
		return s.parseToken(value, claimKindAccess)
	}
}

// Logout invalidates the caller's credential where the mode supports it.
// In JWT mode logout is purely client-side and this is a no-op.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if s.cfg.AuthMode == config.AuthModeToken {
		return s.tokenRepo.DeleteByUser(ctx, userID)
	}
	return nil
}

func (s *AuthService) signToken(userID uint, kind string, ttl time.Duration) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(userID), 10),
		"iss":  tokenIssuer,
		"aud":  tokenAudience,
		"kind": kind,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) parseToken(tokenString, wantKind string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token claims")
	}
	if kind, _ := claims["kind"].(string); kind != wantKind {
		return 0, models.NewUnauthorizedError("Invalid token kind")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid user ID in token")
	}
	return uint(userID), nil
}
