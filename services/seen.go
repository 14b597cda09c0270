package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/blogfeed/models"
)

// SeenMarks stores per-(user, post) seen flags as row existence.
type SeenMarks struct {
	db *gorm.DB
}

// NewSeenMarks creates a SeenMarks store backed by db.
func NewSeenMarks(db *gorm.DB) *SeenMarks {
	return &SeenMarks{db: db}
}

// ToggleSeen flips the mark and returns the new value. Post existence is the caller's concern.
func (s *SeenMarks) ToggleSeen(ctx context.Context, userID, postID uint) (bool, error) {
	var seen bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SeenMark{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.SeenMark{UserID: userID, PostID: postID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent toggle marked the post first; this one unmarks it.
			return tx.Where("user_id = ? AND post_id = ?", userID, postID).
				Delete(&models.SeenMark{}).Error
		}
		seen = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("toggle seen mark: %w", err)
	}
	return seen, nil
}

// IsSeen reports whether userID has marked postID as seen.
func (s *SeenMarks) IsSeen(ctx context.Context, userID, postID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.SeenMark{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check seen mark: %w", err)
	}
	return n > 0, nil
}
