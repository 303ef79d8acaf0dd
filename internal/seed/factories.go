// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"photogram/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the plaintext password shared by all seeded accounts.
const SeedPassword = "Password123!"

var seedTagNames = []string{
	"nature", "travel", "food", "sunset", "portrait", "street",
	"architecture", "blackandwhite", "macro", "landscape", "pets",
	"coffee", "nightlife", "art", "minimal",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db           *gorm.DB
	rng          *rand.Rand
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())

	// One bcrypt hash shared across seeded users; hashing per user makes
	// large seeds painfully slow.
	hash, _ := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)

	return &Factory{
		db:           db,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hash),
	}
}

// CreateUser constructs and persists a sample models.User. Optional
// override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Password: f.passwordHash,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post without persisting it. Useful for batching.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	key := uuid.New().String()
	post := &models.Post{
		Caption:   gofakeit.Sentence(8),
		ImagePath: fmt.Sprintf("posts/seed/%s.jpg", key),
		ThumbPath: fmt.Sprintf("posts/seed/%s_thumb.webp", key),
		UserID:    user.ID,
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment persists a comment by the given user on the given post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(f.rng.Intn(12) + 3),
		UserID:  user.ID,
		PostID:  post.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like, ignoring duplicates.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	err := f.db.Create(like).Error
	if err != nil && f.db.Where("user_id = ? AND post_id = ?", user.ID, post.ID).
		First(&models.Like{}).Error == nil {
		return nil // already liked
	}
	return err
}

// GetOrCreateTag returns the named tag, creating it on first use.
func (f *Factory) GetOrCreateTag(name string) (*models.Tag, error) {
	var tag models.Tag
	if err := f.db.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// randomTags picks up to n distinct tag names from the seed vocabulary.
func (f *Factory) randomTags(n int) []string {
	perm := f.rng.Perm(len(seedTagNames))
	if n > len(perm) {
		n = len(perm)
	}
	names := make([]string, 0, n)
	for _, i := range perm[:n] {
		names = append(names, seedTagNames[i])
	}
	return names
}
