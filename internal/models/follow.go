package models

import "time"

// Follow is a directed edge meaning User receives Author's posts in their
// personalized feed.
//
// There is deliberately no composite unique index on (author_id, user_id):
// uniqueness is enforced by a check-then-create at the service layer, which
// leaves a small race window under concurrent subscribes. Read paths must
// therefore use existence checks rather than assume at most one row per pair.
type Follow struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	AuthorID uint `gorm:"not null;index" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	UserID   uint `gorm:"not null;index" json:"user_id"`
	User     User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
