package commentservice

import (
	"database/sql"
	"time"
)

type CommentService struct {
	m *CommentModel
}

type CommentModel struct {
	db *sql.DB
}

type Comment struct {
	ID          int       `json:"id"`
	PostID      int       `json:"post_id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	Site        *string   `json:"site,omitempty"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
	Approved    bool      `json:"approved"`
}
