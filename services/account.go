package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/cppla/blogfeed/models"
	"github.com/cppla/blogfeed/utils"
)

// Accounts registers users and checks credentials.
type Accounts struct {
	db *gorm.DB
}

// NewAccounts creates an Accounts service backed by db.
func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
}

// Register validates input and creates a user with a bcrypt password hash.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	if l := utf8.RuneCountInString(username); l < 2 || l > 64 || !validUsername(username) {
		return models.User{}, &FieldError{Field: "username", Reason: "2-64 characters: letters, digits and @.+-_ only"}
	}
	if _, ok := reservedUsernames[strings.ToLower(username)]; ok {
		return models.User{}, &FieldError{Field: "username", Reason: fmt.Sprintf("%q is reserved", username)}
	}
	if in.Password != in.Password2 {
		return models.User{}, &FieldError{Field: "password", Reason: "password fields didn't match"}
	}
	if l := len(in.Password); l < 6 || l > utils.MaxPasswordBytes {
		return models.User{}, &FieldError{Field: "password", Reason: fmt.Sprintf("must be 6-%d bytes", utils.MaxPasswordBytes)}
	}

	var n int64
	if err := a.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return models.User{}, fmt.Errorf("check username: %w", err)
	}
	if n > 0 {
		return models.User{}, fmt.Errorf("username %q: %w", username, ErrDuplicate)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Username: username, Email: strings.TrimSpace(in.Email), PasswordHash: hash}
	if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, fmt.Errorf("username %q: %w", username, ErrDuplicate)
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user when the password matches.
func (a *Accounts) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var user models.User
	if err := a.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrBadCredentials
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return models.User{}, ErrBadCredentials
	}
	return user, nil
}

// reservedUsernames are static path segments under /api. A user with one of
// these names could not be reached through /api/<username>/... routes.
var reservedUsernames = map[string]struct{}{
	"auth":          {},
	"feed":          {},
	"post":          {},
	"post_create":   {},
	"profiles_list": {},
}

func validUsername(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r == '@' || r == '.' || r == '+' || r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
