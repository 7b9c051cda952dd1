package postservice

import (
	"database/sql"
	"time"

	"github.com/writelyhq/writely/internal/common"
)

// Action selects the lifecycle transition applied when a post is
// created or updated.
type Action string

const (
	ActionSaveDraft Action = "save_draft"
	ActionPublish   Action = "publish"
)

type PostService struct {
	m  *PostModel
	c  *common.Cache
	mb common.MessageProducer
}

type PostModel struct {
	db *sql.DB
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Post struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	UserID int    `json:"user_id"`
	Author string `json:"author,omitempty"`
	// Category is nil when the post is uncategorized.
	Category *Category `json:"category,omitempty"`
	Tags     []Tag     `json:"tags,omitempty"`
	// Content is stored in Markdown format.
	Content   string    `json:"content"`
	ImagePath *string   `json:"image_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	// PublishedAt is nil while the post is a draft.
	PublishedAt *time.Time `json:"published_at"`
	Version     int        `json:"version"`
}

// Draft reports whether the post has not been published yet.
func (p *Post) Draft() bool {
	return p.PublishedAt == nil
}

// PublishedEvent is the message published to the broker when a post
// transitions into the published state.
type PublishedEvent struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}
