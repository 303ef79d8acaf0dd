package seed

import (
	"fmt"
	"log"

	"photogram/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder orchestrates demo data creation.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seeded data. Truncation order is irrelevant thanks
// to the cascading foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE likes, comments, post_tags, posts, tags, auth_tokens, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// Seed populates the database with test data.
func (s *Seeder) Seed(opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d test users created", len(users))

	posts, err := s.SeedPosts(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	if err := s.SeedEngagement(users, posts); err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// SeedUsers creates n fake users.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedPosts creates n posts spread over the given users, each with a few
// tags from the shared vocabulary.
func (s *Seeder) SeedPosts(users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		post := s.factory.BuildPost(author)

		for _, name := range s.factory.randomTags(s.factory.rng.Intn(4)) {
			tag, err := s.factory.GetOrCreateTag(name)
			if err != nil {
				return nil, err
			}
			post.Tags = append(post.Tags, *tag)
		}
		posts = append(posts, post)
	}

	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SeedEngagement sprinkles comments and likes over the posts.
func (s *Seeder) SeedEngagement(users []*models.User, posts []*models.Post) error {
	if len(users) == 0 {
		return nil
	}

	for _, post := range posts {
		for i := 0; i < s.factory.rng.Intn(5); i++ {
			commenter := users[s.factory.rng.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return err
			}
		}
		for i := 0; i < s.factory.rng.Intn(8); i++ {
			liker := users[s.factory.rng.Intn(len(users))]
			if err := s.factory.CreateLike(liker, post); err != nil {
				return err
			}
		}
	}
	return nil
}
