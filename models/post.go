package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// PostTitleMaxLen bounds Post.Title in characters.
	PostTitleMaxLen = 100
	// PostBodyMaxLen bounds Post.Body in characters.
	PostBodyMaxLen = 200
)

// Post is a short entry authored by a user.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_posts_user_created,priority:1;not null" json:"user_id"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Body      string    `gorm:"size:200;not null" json:"body"`
	CreatedAt time.Time `gorm:"index;index:idx_posts_user_created,priority:2" json:"created"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// BeforeCreate assigns the creation time server side; clients never set it.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	p.CreatedAt = time.Now()
	return nil
}
