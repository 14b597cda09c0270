package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedItem is a post as seen by one viewer. Seen is derived per viewer, never stored on the post.
type FeedItem struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Owner   string    `json:"owner"`
	Created time.Time `json:"created"`
	Seen    bool      `json:"seen"`
}

const feedColumns = "posts.id, posts.title, posts.body, users.username AS owner, posts.created_at AS created, " +
	"CASE WHEN seen_marks.id IS NULL THEN 0 ELSE 1 END AS seen"

// FeedAssembler builds per-caller feeds over subscription edges, posts and seen marks.
type FeedAssembler struct {
	db *gorm.DB
}

// NewFeedAssembler creates a FeedAssembler backed by db.
func NewFeedAssembler(db *gorm.DB) *FeedAssembler {
	return &FeedAssembler{db: db}
}

// Feed is a lazy, ordered and filtered view of one caller's feed. No query runs until sliced.
type Feed struct {
	db       *gorm.DB
	callerID uint
	filter   SeenFilter
	order    []clause.OrderByColumn
}

// Assemble returns the caller's feed. A caller without subscriptions gets an empty feed.
func (a *FeedAssembler) Assemble(callerID uint, filter SeenFilter, order []clause.OrderByColumn) *Feed {
	if len(order) == 0 {
		order = FeedOrdering.defaults
	}
	return &Feed{db: a.db, callerID: callerID, filter: filter, order: order}
}

func (f *Feed) base(ctx context.Context) *gorm.DB {
	q := f.db.WithContext(ctx).Table("posts").
		Joins("JOIN subscriptions ON subscriptions.target_id = posts.user_id AND subscriptions.subscriber_id = ?", f.callerID).
		Joins("JOIN users ON users.id = posts.user_id").
		Joins("LEFT JOIN seen_marks ON seen_marks.post_id = posts.id AND seen_marks.user_id = ?", f.callerID)
	if f.filter.Set {
		if f.filter.Value {
			q = q.Where("seen_marks.id IS NOT NULL")
		} else {
			q = q.Where("seen_marks.id IS NULL")
		}
	}
	return q
}

// Slice implements Source. A negative limit returns everything from offset.
func (f *Feed) Slice(ctx context.Context, offset, limit int) ([]FeedItem, error) {
	var items []FeedItem
	q := applyOrder(f.base(ctx).Select(feedColumns), f.order).Offset(offset).Limit(limit)
	if err := q.Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	return items, nil
}

// Count implements Source.
func (f *Feed) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := f.base(ctx).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count feed: %w", err)
	}
	return n, nil
}

// All materializes the whole feed.
func (f *Feed) All(ctx context.Context) ([]FeedItem, error) {
	return f.Slice(ctx, 0, -1)
}
