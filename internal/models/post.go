package models

import "time"

// Post is an image post with a caption. The image bytes live in the object
// store; only the generated reference (ImagePath) is persisted. The author
// is always the authenticated caller, never taken from the request body.
type Post struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ImagePath string `gorm:"not null" json:"image"`
	ThumbPath string `json:"thumbnail,omitempty"`
	Caption   string `gorm:"size:500;not null" json:"caption"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Tags      []Tag  `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE" json:"tags"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"-" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"-" json:"comments_count"`
	// Liked indicates whether the requesting user liked this post (computed)
	Liked     bool      `gorm:"-" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
