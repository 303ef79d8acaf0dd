package models

// Tag labels posts. Name is the sole identity: creation is get-or-create,
// backed by the unique index so concurrent creators converge on one row.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
}
