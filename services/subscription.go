package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/blogfeed/models"
)

// SubscriptionState is the caller's full subscription set after a toggle.
type SubscriptionState struct {
	Subscribed    bool     `json:"-"`
	Subscriptions []string `json:"subscriptions"`
}

// SubscriptionGraph manages directed follow edges between users.
type SubscriptionGraph struct {
	db *gorm.DB
}

// NewSubscriptionGraph creates a SubscriptionGraph backed by db.
func NewSubscriptionGraph(db *gorm.DB) *SubscriptionGraph {
	return &SubscriptionGraph{db: db}
}

// Toggle removes the edge subscriber->target when present and creates it otherwise.
func (g *SubscriptionGraph) Toggle(ctx context.Context, subscriberID uint, targetUsername string) (SubscriptionState, error) {
	var target models.User
	if err := g.db.WithContext(ctx).Where("username = ?", targetUsername).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SubscriptionState{}, fmt.Errorf("user %q: %w", targetUsername, ErrNotFound)
		}
		return SubscriptionState{}, fmt.Errorf("load target user: %w", err)
	}
	if target.ID == subscriberID {
		return SubscriptionState{}, ErrSelfSubscription
	}

	var subscribed bool
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("subscriber_id = ? AND target_id = ?", subscriberID, target.ID).Delete(&models.Subscription{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Subscription{SubscriberID: subscriberID, TargetID: target.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent toggle created the edge first; this one removes it.
			return tx.Where("subscriber_id = ? AND target_id = ?", subscriberID, target.ID).
				Delete(&models.Subscription{}).Error
		}
		subscribed = true
		return nil
	})
	if err != nil {
		return SubscriptionState{}, fmt.Errorf("toggle subscription: %w", err)
	}

	names, err := g.Usernames(ctx, subscriberID)
	if err != nil {
		return SubscriptionState{}, err
	}
	return SubscriptionState{Subscribed: subscribed, Subscriptions: names}, nil
}

// ListTargets returns every user the subscriber follows.
func (g *SubscriptionGraph) ListTargets(ctx context.Context, subscriberID uint) ([]models.User, error) {
	var users []models.User
	err := g.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.target_id = users.id").
		Where("subscriptions.subscriber_id = ?", subscriberID).
		Order("users.username ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list subscription targets: %w", err)
	}
	return users, nil
}

// Usernames returns the usernames the subscriber follows, sorted.
func (g *SubscriptionGraph) Usernames(ctx context.Context, subscriberID uint) ([]string, error) {
	users, err := g.ListTargets(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names, nil
}

// UsernamesFor batches Usernames for several subscribers in one query.
func (g *SubscriptionGraph) UsernamesFor(ctx context.Context, subscriberIDs []uint) (map[uint][]string, error) {
	out := make(map[uint][]string, len(subscriberIDs))
	if len(subscriberIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		SubscriberID uint
		Username     string
	}
	err := g.db.WithContext(ctx).Model(&models.Subscription{}).
		Select("subscriptions.subscriber_id, users.username").
		Joins("JOIN users ON users.id = subscriptions.target_id").
		Where("subscriptions.subscriber_id IN ?", subscriberIDs).
		Order("users.username ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("batch subscriptions: %w", err)
	}
	for _, r := range rows {
		out[r.SubscriberID] = append(out[r.SubscriberID], r.Username)
	}
	return out, nil
}
