// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered account. Passwords are stored bcrypt-hashed
// and never serialized. Rows are hard-deleted; the ON DELETE CASCADE
// constraints on posts, comments and likes remove everything the user owns.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Bio       string    `gorm:"size:500" json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
