package dashboardservice

import (
	"database/sql"
	"time"
)

// monthWindow is the number of months covered by the posts-by-month
// statistic, the current month included.
const monthWindow = 6

// listLimit caps the dashboard post and comment listings.
const listLimit = 10

type DashboardService struct {
	m *DashboardModel
}

type DashboardModel struct {
	db *sql.DB
}

type PostSummary struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type CommentSummary struct {
	ID         int       `json:"id"`
	PostID     int       `json:"post_id"`
	PostTitle  string    `json:"post_title"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type MonthCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

type Stats struct {
	Published             []PostSummary    `json:"published_posts"`
	Drafts                []PostSummary    `json:"draft_posts"`
	PendingComments       []CommentSummary `json:"pending_comments"`
	CountPublished        int              `json:"total_published"`
	CountDrafts           int              `json:"total_drafts"`
	CountPending          int              `json:"total_pending_comments"`
	PostsByMonth          []MonthCount     `json:"posts_by_month"`
	AvgPostsPerMonth      float64          `json:"avg_posts_per_month"`
	TotalCommentsReceived int              `json:"total_comments_received"`
	AvgCommentsPerPost    float64          `json:"avg_comments_per_published_post"`
}
