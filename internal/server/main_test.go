package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"photogram/internal/config"
	"photogram/internal/models"
	"photogram/internal/repository"
	"photogram/internal/service"
	"photogram/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8480",
		Env:               "test",
		AuthMode:          config.AuthModeJWT,
		JWTSecret:         "test_secret",
		AccessTokenTTLMin: 15,
		RefreshTokenTTLHr: 24,
		PageSize:          20,
	}
}

// newTestServer builds a Server on an in-memory sqlite database with the
// full repository and service stack wired, but no Redis or metrics.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.AuthToken{},
	))

	cfg := testConfig()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	s := &Server{
		config:      cfg,
		db:          db,
		store:       store,
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		tagRepo:     repository.NewTagRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		likeRepo:    repository.NewLikeRepository(db),
		tokenRepo:   repository.NewTokenRepository(db),
	}

	media := service.NewMediaService(store)
	s.authService = service.NewAuthService(cfg, s.userRepo, s.tokenRepo)
	s.postService = service.NewPostService(s.postRepo, s.tagRepo, media)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	s.likeService = service.NewLikeService(s.likeRepo, s.postRepo)
	s.userService = service.NewUserService(s.userRepo)

	return s, db
}

// asUser injects the given user ID the way the auth middleware would.
func asUser(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, dest), "body: %s", data)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(30 * x), G: uint8(30 * y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartPost builds a multipart body with an image, caption and tags.
func multipartPost(t *testing.T, caption string, tagNames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes(t))
	require.NoError(t, err)

	require.NoError(t, w.WriteField("caption", caption))
	for _, name := range tagNames {
		require.NoError(t, w.WriteField("tag_names", name))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
