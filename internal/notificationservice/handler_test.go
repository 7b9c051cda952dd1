package notificationservice

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/writelyhq/writely/internal/common"
	"github.com/writelyhq/writely/internal/postservice"
)

func insertTestUser(db *sql.DB, username, email string) (int, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return 0, err
	}

	var id int
	err = db.QueryRow(`
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id`, username, email, randomBytes).Scan(&id)
	return id, err
}

func setupTestEnvironment(t *testing.T) (*NotificationService, *sql.DB, func() error, int, *postservice.Post) {
	db := common.TestDB("file://../../migrations", t)
	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	authorID, err := insertTestUser(db, "author", "author@example.com")
	assert.NoError(t, err)

	now := time.Now()
	post := &postservice.Post{Title: "Hello World", Slug: "hello-world", UserID: authorID, PublishedAt: &now}
	err = db.QueryRow(`
		INSERT INTO posts (title, slug, user_id, content, published_at)
		VALUES ($1, $2, $3, 'This is a test post.', $4)
		RETURNING id`, post.Title, post.Slug, post.UserID, post.PublishedAt).Scan(&post.ID)
	assert.NoError(t, err)

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM notifications")
		cache.Flush()
		return err
	}

	return NewNotificationService(db, cache), db, cleanup, authorID, post
}

func TestNotifyPublish(t *testing.T) {
	s, db, cleanup, authorID, post := setupTestEnvironment(t)

	var recipients []int
	for i := 0; i < 3; i++ {
		id, err := insertTestUser(db, fmt.Sprintf("reader%d", i), fmt.Sprintf("reader%d@example.com", i))
		assert.NoError(t, err)
		recipients = append(recipients, id)
	}

	ctx := context.Background()

	n, err := s.NotifyPublish(ctx, post, recipients)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	var count int
	assert.NoError(t, db.QueryRow("SELECT COUNT(*) FROM notifications WHERE title = 'New Post Published'").Scan(&count))
	assert.Equal(t, 3, count)

	var actor int
	assert.NoError(t, db.QueryRow("SELECT actor_id FROM notifications LIMIT 1").Scan(&actor))
	assert.Equal(t, authorID, actor)

	// fan-out to no one is a no-op, not an error
	n, err = s.NotifyPublish(ctx, post, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})
}

func TestUnreadCount(t *testing.T) {
	s, db, cleanup, _, post := setupTestEnvironment(t)

	readerID, err := insertTestUser(db, "reader", "reader@example.com")
	assert.NoError(t, err)

	ctx := context.Background()

	// a user with no notifications has a count of zero
	count, err := s.UnreadCount(ctx, readerID)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	// an absent user also has a count of zero, not an error
	count, err = s.UnreadCount(ctx, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = s.NotifyPublish(ctx, post, []int{readerID})
	assert.NoError(t, err)

	count, err = s.UnreadCount(ctx, readerID)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})
}

func TestMarkRead(t *testing.T) {
	s, db, cleanup, _, post := setupTestEnvironment(t)

	readerID, err := insertTestUser(db, "reader", "reader@example.com")
	assert.NoError(t, err)
	strangerID, err := insertTestUser(db, "stranger", "stranger@example.com")
	assert.NoError(t, err)

	ctx := context.Background()

	_, err = s.NotifyPublish(ctx, post, []int{readerID})
	assert.NoError(t, err)

	var id int
	assert.NoError(t, db.QueryRow("SELECT id FROM notifications WHERE user_id = $1", readerID).Scan(&id))

	// marking someone else's notification is silently ignored
	assert.NoError(t, s.MarkRead(ctx, id, strangerID))

	var read bool
	assert.NoError(t, db.QueryRow("SELECT read FROM notifications WHERE id = $1", id).Scan(&read))
	assert.False(t, read)

	assert.NoError(t, s.MarkRead(ctx, id, readerID))
	assert.NoError(t, db.QueryRow("SELECT read FROM notifications WHERE id = $1", id).Scan(&read))
	assert.True(t, read)

	// marking an already-read or missing notification succeeds
	assert.NoError(t, s.MarkRead(ctx, id, readerID))
	assert.NoError(t, s.MarkRead(ctx, 999999, readerID))

	count, err := s.UnreadCount(ctx, readerID)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})
}

func TestListNotifications(t *testing.T) {
	s, db, cleanup, _, post := setupTestEnvironment(t)

	readerID, err := insertTestUser(db, "reader", "reader@example.com")
	assert.NoError(t, err)

	ctx := context.Background()

	for i := 0; i < PageSize+2; i++ {
		_, err := s.NotifyPublish(ctx, post, []int{readerID})
		assert.NoError(t, err)
	}

	first, err := s.List(ctx, readerID, 1)
	assert.NoError(t, err)
	assert.Len(t, first, PageSize)

	second, err := s.List(ctx, readerID, 2)
	assert.NoError(t, err)
	assert.Len(t, second, 2)

	// page numbers below 1 are clamped to the first page
	clamped, err := s.List(ctx, readerID, 0)
	assert.NoError(t, err)
	assert.Len(t, clamped, PageSize)

	_, err = s.List(ctx, 0, 1)
	assert.Equal(t, common.ValidationError{Errors: map[string]string{"user_id": "must be greater than zero"}}, err)

	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})
}
