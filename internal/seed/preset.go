package seed

import (
	"fmt"
	"os"

	"photogram/internal/models"

	"gopkg.in/yaml.v3"
)

// Preset describes a declarative seed scenario loaded from a YAML file.
// Named accounts come first, then the random fill on top.
type Preset struct {
	Name  string `yaml:"name"`
	Users []struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Bio      string `yaml:"bio"`
		Posts    int    `yaml:"posts"`
	} `yaml:"users"`
	RandomUsers int `yaml:"random_users"`
	RandomPosts int `yaml:"random_posts"`
}

// LoadPreset reads and parses a preset file.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}
	return &p, nil
}

// ApplyPreset seeds the database according to the preset file at path.
func (s *Seeder) ApplyPreset(path string) error {
	p, err := LoadPreset(path)
	if err != nil {
		return err
	}

	for _, u := range p.Users {
		user, err := s.factory.CreateUser(func(m *models.User) {
			if u.Username != "" {
				m.Username = u.Username
			}
			if u.Email != "" {
				m.Email = u.Email
			}
			if u.Bio != "" {
				m.Bio = u.Bio
			}
		})
		if err != nil {
			return fmt.Errorf("preset user %q: %w", u.Username, err)
		}
		if _, err := s.SeedPosts([]*models.User{user}, u.Posts); err != nil {
			return err
		}
	}

	users, err := s.SeedUsers(p.RandomUsers)
	if err != nil {
		return err
	}
	posts, err := s.SeedPosts(users, p.RandomPosts)
	if err != nil {
		return err
	}
	return s.SeedEngagement(users, posts)
}
