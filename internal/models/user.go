// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents an author account in the Quill application.
// Credentials are stored as a bcrypt hash and never serialized.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	// Posts are removed with their author (ON DELETE CASCADE).
	Posts []Post `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}
