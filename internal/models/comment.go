package models

import "time"

// Comment is an append-only reply to a post. When the post is deleted the
// comment survives with a nil post reference.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"type:text;not null" json:"text"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	PostID   *uint  `gorm:"index" json:"post_id,omitempty"`
	Post     *Post  `gorm:"foreignKey:PostID;constraint:OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time `json:"pub_date"`
}
