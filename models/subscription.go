package models

import "time"

// Subscription is a directed follow edge owned by the subscriber.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_subscription_pair,priority:1" json:"subscriber_id"`
	TargetID     uint      `gorm:"not null;index;uniqueIndex:idx_subscription_pair,priority:2" json:"target_id"`
	CreatedAt    time.Time `json:"created_at"`
	Subscriber   User      `gorm:"foreignKey:SubscriberID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Target       User      `gorm:"foreignKey:TargetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
