package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/blogfeed/models"
)

// Profile is one entry of the profiles list.
type Profile struct {
	ID            uint     `json:"id"`
	Username      string   `json:"username"`
	PostsCount    int64    `json:"posts_count"`
	Subscriptions []string `json:"subscriptions"`
}

// ProfileService lists users with their subscriptions and post counts.
type ProfileService struct {
	db    *gorm.DB
	graph *SubscriptionGraph
}

// NewProfileService creates a ProfileService.
func NewProfileService(db *gorm.DB, graph *SubscriptionGraph) *ProfileService {
	return &ProfileService{db: db, graph: graph}
}

// List returns all profiles ordered by the raw "?ordering=" value, see ProfileOrdering.
func (s *ProfileService) List(ctx context.Context, ordering string) ([]Profile, error) {
	var users []models.User
	q := applyOrder(s.db.WithContext(ctx).Model(&models.User{}), ProfileOrdering.Resolve(ordering))
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subs, err := s.graph.UsernamesFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Profile, 0, len(users))
	for _, u := range users {
		names := subs[u.ID]
		if names == nil {
			names = []string{}
		}
		out = append(out, Profile{ID: u.ID, Username: u.Username, PostsCount: u.PostCount, Subscriptions: names})
	}
	return out, nil
}
