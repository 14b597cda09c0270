package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cppla/blogfeed/config"
	"github.com/cppla/blogfeed/models"
	"github.com/cppla/blogfeed/utils"
)

// newTestDB opens a private in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.Set(config.AppConfig{
		JWTSecret:     "test-secret",
		DBDriver:      "sqlite",
		SQLitePath:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		LogLevel:      "silent",
		RedisDisabled: true,
	})
	db, err := config.OpenDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createPosts(t *testing.T, db *gorm.DB, owner models.User, n int) []PostView {
	t.Helper()
	svc := NewPostService(db)
	out := make([]PostView, 0, n)
	for i := 0; i < n; i++ {
		p, err := svc.Create(context.Background(), owner.ID, fmt.Sprintf("post %d by %s", i, owner.Username), "hi")
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func follow(t *testing.T, db *gorm.DB, subscriber models.User, targets ...models.User) {
	t.Helper()
	g := NewSubscriptionGraph(db)
	for _, target := range targets {
		state, err := g.Toggle(context.Background(), subscriber.ID, target.Username)
		require.NoError(t, err)
		require.Contains(t, state.Subscriptions, target.Username)
	}
}

// beforeFirstInsert runs insert inside the first INSERT transaction on table,
// ahead of the statement, like a concurrent request committing first.
func beforeFirstInsert(t *testing.T, db *gorm.DB, table, query string, args ...any) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:insert_first_"+table, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context, query, args...)
		require.NoError(t, err)
	})
	require.NoError(t, err)
}
