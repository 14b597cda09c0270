package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/cppla/blogfeed/models"
	"github.com/cppla/blogfeed/utils"
)

// FieldError describes one rejected input field. It matches ErrInvalidField with errors.Is.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Reason }

// Unwrap lets errors.Is(err, ErrInvalidField) match.
func (e *FieldError) Unwrap() error { return ErrInvalidField }

// PostView is the public representation of a post.
type PostView struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Owner   string    `json:"owner"`
	Created time.Time `json:"created"`
}

// UserPosts is a user with their posts, newest first.
type UserPosts struct {
	Username string     `json:"username"`
	Posts    []PostView `json:"posts"`
}

// PostService creates and lists posts.
type PostService struct {
	db *gorm.DB
}

// NewPostService creates a PostService backed by db.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// ValidatePost sanitizes and checks title and body lengths.
func ValidatePost(title, body string) (string, string, error) {
	title = utils.Sanitize(strings.TrimSpace(title))
	body = utils.Sanitize(strings.TrimSpace(body))
	switch {
	case title == "":
		return "", "", &FieldError{Field: "title", Reason: "may not be blank"}
	case utf8.RuneCountInString(title) > models.PostTitleMaxLen:
		return "", "", &FieldError{Field: "title", Reason: fmt.Sprintf("ensure this field has no more than %d characters", models.PostTitleMaxLen)}
	case body == "":
		return "", "", &FieldError{Field: "body", Reason: "may not be blank"}
	case utf8.RuneCountInString(body) > models.PostBodyMaxLen:
		return "", "", &FieldError{Field: "body", Reason: fmt.Sprintf("ensure this field has no more than %d characters", models.PostBodyMaxLen)}
	}
	return title, body, nil
}

// Create stores a post for owner and bumps the owner's post counter in the same transaction.
func (s *PostService) Create(ctx context.Context, ownerID uint, title, body string) (PostView, error) {
	title, body, err := ValidatePost(title, body)
	if err != nil {
		return PostView{}, err
	}

	var owner models.User
	post := models.Post{UserID: ownerID, Title: title, Body: body}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&owner, ownerID).Error; err != nil {
			return err
		}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", ownerID).
			UpdateColumn("post_count", gorm.Expr("post_count + ?", 1)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PostView{}, fmt.Errorf("owner %d: %w", ownerID, ErrNotFound)
		}
		return PostView{}, fmt.Errorf("create post: %w", err)
	}
	return PostView{ID: post.ID, Title: post.Title, Body: post.Body, Owner: owner.Username, Created: post.CreatedAt}, nil
}

// Exists reports whether a post with id exists.
func (s *PostService) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check post: %w", err)
	}
	return n > 0, nil
}

// ListByUsername returns a user's posts newest first.
func (s *PostService) ListByUsername(ctx context.Context, username string) (UserPosts, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Order("id DESC")
		}).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserPosts{}, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return UserPosts{}, fmt.Errorf("load user posts: %w", err)
	}

	out := UserPosts{Username: user.Username, Posts: make([]PostView, 0, len(user.Posts))}
	for _, p := range user.Posts {
		out.Posts = append(out.Posts, PostView{ID: p.ID, Title: p.Title, Body: p.Body, Owner: user.Username, Created: p.CreatedAt})
	}
	return out, nil
}
