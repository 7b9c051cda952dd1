package dashboardservice

import (
	"context"
	"crypto/rand"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/writelyhq/writely/internal/common"
)

func TestMonthsBack(t *testing.T) {
	testCases := []struct {
		name     string
		now      time.Time
		expected []MonthCount
	}{
		{
			name: "mid year",
			now:  time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC),
			expected: []MonthCount{
				{Year: 2026, Month: 3},
				{Year: 2026, Month: 4},
				{Year: 2026, Month: 5},
				{Year: 2026, Month: 6},
				{Year: 2026, Month: 7},
				{Year: 2026, Month: 8},
			},
		},
		{
			name: "year rollover",
			now:  time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			expected: []MonthCount{
				{Year: 2025, Month: 9},
				{Year: 2025, Month: 10},
				{Year: 2025, Month: 11},
				{Year: 2025, Month: 12},
				{Year: 2026, Month: 1},
				{Year: 2026, Month: 2},
			},
		},
		{
			name: "january",
			now:  time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
			expected: []MonthCount{
				{Year: 2025, Month: 8},
				{Year: 2025, Month: 9},
				{Year: 2025, Month: 10},
				{Year: 2025, Month: 11},
				{Year: 2025, Month: 12},
				{Year: 2026, Month: 1},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, monthsBack(tc.now, monthWindow))
		})
	}
}

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

func insertTestPost(db *sql.DB, userID int, slug string, publishedAt *time.Time) (int, error) {
	var id int
	err := db.QueryRow(`
		INSERT INTO posts (title, slug, user_id, content, published_at)
		VALUES ('Test Post', $1, $2, 'This is a test post.', $3)
		RETURNING id`, slug, userID, publishedAt).Scan(&id)
	return id, err
}

func TestStats(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	s := NewDashboardService(db)

	authorID, err := insertTestUser(db, "author", "author@example.com")
	assert.NoError(t, err)
	otherID, err := insertTestUser(db, "other", "other@example.com")
	assert.NoError(t, err)

	now := time.Now()

	// two published posts this month, one draft
	firstID, err := insertTestPost(db, authorID, "first-post", &now)
	assert.NoError(t, err)
	_, err = insertTestPost(db, authorID, "second-post", &now)
	assert.NoError(t, err)
	_, err = insertTestPost(db, authorID, "draft-post", nil)
	assert.NoError(t, err)

	// another author's post must not leak into the stats
	_, err = insertTestPost(db, otherID, "foreign-post", &now)
	assert.NoError(t, err)

	// one approved comment and one pending comment on the first post
	_, err = db.Exec(`
		INSERT INTO comments (post_id, author_name, author_email, body, approved)
		VALUES ($1, 'Ana', 'a@x.com', 'Approved', true), ($1, 'Bob', 'b@x.com', 'Pending', false)`, firstID)
	assert.NoError(t, err)

	ctx := context.Background()

	stats, err := s.Stats(ctx, authorID)
	assert.NoError(t, err)

	assert.Len(t, stats.Published, 2)
	assert.Len(t, stats.Drafts, 1)
	assert.Len(t, stats.PendingComments, 1)
	assert.Equal(t, 2, stats.CountPublished)
	assert.Equal(t, 1, stats.CountDrafts)
	assert.Equal(t, 1, stats.CountPending)
	assert.Equal(t, 2, stats.TotalCommentsReceived)

	assert.Len(t, stats.PostsByMonth, monthWindow)
	total := 0
	for _, m := range stats.PostsByMonth {
		total += m.Count
	}
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, stats.PostsByMonth[monthWindow-1].Count)

	assert.InDelta(t, 2.0/monthWindow, stats.AvgPostsPerMonth, 0.0001)
	assert.InDelta(t, 1.0, stats.AvgCommentsPerPost, 0.0001)
}

func TestStatsMonthBoundary(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	s := NewDashboardService(db)

	authorID, err := insertTestUser(db, "author", "author@example.com")
	assert.NoError(t, err)

	// Published at the first instant of the current UTC month. The
	// bucket walk and the database grouping must agree on where it
	// lands regardless of the server's local timezone.
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	_, err = insertTestPost(db, authorID, "boundary-post", &monthStart)
	assert.NoError(t, err)

	stats, err := s.Stats(context.Background(), authorID)
	assert.NoError(t, err)

	assert.Len(t, stats.PostsByMonth, monthWindow)
	last := stats.PostsByMonth[monthWindow-1]
	assert.Equal(t, now.Year(), last.Year)
	assert.Equal(t, int(now.Month()), last.Month)
	assert.Equal(t, 1, last.Count)
}

func TestStatsEmpty(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	s := NewDashboardService(db)

	authorID, err := insertTestUser(db, "author", "author@example.com")
	assert.NoError(t, err)

	stats, err := s.Stats(context.Background(), authorID)
	assert.NoError(t, err)

	assert.Empty(t, stats.Published)
	assert.Equal(t, 0, stats.CountPublished)
	assert.Len(t, stats.PostsByMonth, monthWindow)

	// averages are defined as zero, not NaN
	assert.Equal(t, 0.0, stats.AvgPostsPerMonth)
	assert.Equal(t, 0.0, stats.AvgCommentsPerPost)

	_, err = s.Stats(context.Background(), 0)
	assert.Equal(t, common.ValidationError{Errors: map[string]string{"user_id": "must be greater than zero"}}, err)
}
