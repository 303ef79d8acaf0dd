package models

import "time"

// AuthToken is the opaque per-user credential used when AUTH_MODE=token.
// One key per user, issued get-or-create on login and removed on logout.
type AuthToken struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
