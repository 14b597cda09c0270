package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blogfeed/models"
)

func TestToggleSeenTwiceReturnsToUnseen(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")
	post := createPosts(t, db, author, 1)[0]

	marks := NewSeenMarks(db)
	seen, err := marks.IsSeen(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = marks.ToggleSeen(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, seen)
	seen, err = marks.IsSeen(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = marks.ToggleSeen(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, seen)

	var rows int64
	require.NoError(t, db.Model(&models.SeenMark{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestSeenMarkIsPerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "author")
	r1 := createUser(t, db, "reader1")
	r2 := createUser(t, db, "reader2")
	post := createPosts(t, db, author, 1)[0]

	marks := NewSeenMarks(db)
	_, err := marks.ToggleSeen(ctx, r1.ID, post.ID)
	require.NoError(t, err)

	seen, err := marks.IsSeen(ctx, r2.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestSeenMarksCascadeWithPost(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")
	post := createPosts(t, db, author, 1)[0]

	_, err := NewSeenMarks(db).ToggleSeen(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.Post{}, post.ID).Error)

	var rows int64
	require.NoError(t, db.Model(&models.SeenMark{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestToggleSeenLosingInsertUnmarks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")
	post := createPosts(t, db, author, 1)[0]
	beforeFirstInsert(t, db, "seen_marks",
		"INSERT INTO seen_marks (user_id, post_id, created_at) VALUES (?, ?, ?)", reader.ID, post.ID, time.Now())

	marks := NewSeenMarks(db)
	seen, err := marks.ToggleSeen(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = marks.IsSeen(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, seen)
}
