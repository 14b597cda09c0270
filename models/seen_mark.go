package models

import "time"

// SeenMark records that a user has seen a post. A missing row means unseen.
type SeenMark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_seen_user_post,priority:1" json:"user_id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_seen_user_post,priority:2" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
