package notificationservice

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/writelyhq/writely/internal/common"
	"github.com/writelyhq/writely/internal/postservice"
)

func NewNotificationService(db *sql.DB, c *common.Cache) *NotificationService {
	return &NotificationService{m: newNotificationModel(db), c: c}
}

// NotifyPublish creates one notification per recipient for a freshly
// published post, with the post author as actor. Returns the number of
// notifications created.
func (s *NotificationService) NotifyPublish(ctx context.Context, post *postservice.Post, recipients []int) (int, error) {
	v := common.NewValidator()
	v.Check(post != nil, "post", "must be provided")
	if !v.Valid() {
		return 0, v.ValidationError()
	}

	if len(recipients) == 0 {
		return 0, nil
	}

	title := "New Post Published"
	verb := fmt.Sprintf("A new post titled %q was published.", post.Title)
	message := fmt.Sprintf("Check out the new post: /post/%s", post.Slug)

	n, err := s.m.insertForRecipients(ctx, recipients, post.UserID, post.ID, title, verb, message)
	if err != nil {
		return 0, err
	}

	for _, recipient := range recipients {
		s.c.Delete(common.CacheKeyUnreadCount(recipient))
	}

	return n, nil
}

// UnreadCount returns the number of unread notifications for a user.
// An absent or anonymous user has a count of zero, not an error.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	if userID < 1 {
		return 0, nil
	}

	if cached, ok := s.c.Get(common.CacheKeyUnreadCount(userID)); ok {
		if count, ok := cached.(int); ok {
			return count, nil
		}
	}

	count, err := s.m.unreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.c.Set(common.CacheKeyUnreadCount(userID), count)

	return count, nil
}

// MarkRead marks a notification as read. Marking a missing notification
// or one belonging to another user is silently ignored.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID int) error {
	if id < 1 || userID < 1 {
		return nil
	}

	if err := s.m.markRead(ctx, id, userID); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyUnreadCount(userID))

	return nil
}

// List returns one page of the user's notifications, newest first.
// Pages are numbered from 1 and hold PageSize entries.
func (s *NotificationService) List(ctx context.Context, userID, page int) ([]Notification, error) {
	v := common.NewValidator()
	v.Check(userID > 0, "user_id", "must be greater than zero")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if page < 1 {
		page = 1
	}

	return s.m.getByUser(ctx, userID, PageSize, (page-1)*PageSize)
}
