package dashboardservice

import (
	"context"
	"database/sql"
	"time"
)

func newDashboardModel(db *sql.DB) *DashboardModel {
	return &DashboardModel{db: db}
}

func (m *DashboardModel) getPublished(ctx context.Context, userID, limit int) ([]PostSummary, error) {
	query := `
		SELECT id, title, slug, created_at, published_at
		FROM posts
		WHERE user_id = $1 AND published_at IS NOT NULL
		ORDER BY published_at DESC
		LIMIT $2`

	return m.queryPosts(ctx, query, userID, limit)
}

func (m *DashboardModel) getDrafts(ctx context.Context, userID, limit int) ([]PostSummary, error) {
	query := `
		SELECT id, title, slug, created_at, published_at
		FROM posts
		WHERE user_id = $1 AND published_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2`

	return m.queryPosts(ctx, query, userID, limit)
}

func (m *DashboardModel) queryPosts(ctx context.Context, query string, args ...any) ([]PostSummary, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []PostSummary
	for rows.Next() {
		var (
			p     PostSummary
			pubAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.CreatedAt, &pubAt); err != nil {
			return nil, err
		}
		if pubAt.Valid {
			t := pubAt.Time
			p.PublishedAt = &t
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

func (m *DashboardModel) getPendingComments(ctx context.Context, userID, limit int) ([]CommentSummary, error) {
	query := `
		SELECT c.id, c.post_id, p.title, c.author_name, c.body, c.created_at
		FROM comments c
		JOIN posts p ON c.post_id = p.id
		WHERE p.user_id = $1 AND c.approved = false
		ORDER BY c.created_at DESC
		LIMIT $2`

	rows, err := m.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []CommentSummary
	for rows.Next() {
		var c CommentSummary
		if err := rows.Scan(&c.ID, &c.PostID, &c.PostTitle, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

func (m *DashboardModel) countPublished(ctx context.Context, userID int) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts WHERE user_id = $1 AND published_at IS NOT NULL", userID).Scan(&count)
	return count, err
}

func (m *DashboardModel) countDrafts(ctx context.Context, userID int) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts WHERE user_id = $1 AND published_at IS NULL", userID).Scan(&count)
	return count, err
}

func (m *DashboardModel) countPendingComments(ctx context.Context, userID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM comments c
		JOIN posts p ON c.post_id = p.id
		WHERE p.user_id = $1 AND c.approved = false`

	var count int
	err := m.db.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

func (m *DashboardModel) countCommentsReceived(ctx context.Context, userID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM comments c
		JOIN posts p ON c.post_id = p.id
		WHERE p.user_id = $1`

	var count int
	err := m.db.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

// countPublishedByMonth returns publication counts grouped by calendar
// month on or after the window start.
func (m *DashboardModel) countPublishedByMonth(ctx context.Context, userID int, since time.Time) (map[[2]int]int, error) {
	query := `
		SELECT EXTRACT(YEAR FROM published_at AT TIME ZONE 'UTC')::int, EXTRACT(MONTH FROM published_at AT TIME ZONE 'UTC')::int, COUNT(*)
		FROM posts
		WHERE user_id = $1 AND published_at IS NOT NULL AND published_at >= $2
		GROUP BY 1, 2`

	rows, err := m.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[[2]int]int)
	for rows.Next() {
		var year, month, count int
		if err := rows.Scan(&year, &month, &count); err != nil {
			return nil, err
		}
		counts[[2]int{year, month}] = count
	}

	return counts, rows.Err()
}
