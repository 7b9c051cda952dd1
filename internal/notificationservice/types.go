package notificationservice

import (
	"database/sql"
	"time"

	"github.com/writelyhq/writely/internal/common"
)

// PageSize is the fixed page size for notification listings.
const PageSize = 10

type NotificationService struct {
	m *NotificationModel
	c *common.Cache
}

type NotificationModel struct {
	db *sql.DB
}

type Notification struct {
	ID     int `json:"id"`
	UserID int `json:"-"`
	// ActorID is nil when the acting user account has been removed.
	ActorID   *int      `json:"actor_id,omitempty"`
	PostID    *int      `json:"post_id,omitempty"`
	Title     string    `json:"title"`
	Verb      string    `json:"verb"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}
