package commentservice

import (
	"context"
	"crypto/rand"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/writelyhq/writely/internal/common"
)

func setupTestPost(db *sql.DB, username, email, slug string) (userID int, postID int, err error) {
	randomBytes := make([]byte, 16)
	_, err = rand.Read(randomBytes)
	if err != nil {
		return 0, 0, err
	}

	err = db.QueryRow(`
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id`, username, email, randomBytes).Scan(&userID)
	if err != nil {
		return 0, 0, err
	}

	err = db.QueryRow(`
		INSERT INTO posts (title, slug, user_id, content, published_at)
		VALUES ('Test Post', $1, $2, 'This is a test post.', now())
		RETURNING id`, slug, userID).Scan(&postID)
	if err != nil {
		return 0, 0, err
	}

	return userID, postID, nil
}

func setupTestEnvironment(t *testing.T) (*CommentService, *sql.DB, func() error, int, int) {
	db := common.TestDB("file://../../migrations", t)

	userID, postID, err := setupTestPost(db, "testuser", "testuser@example.com", "test-post")
	assert.NoError(t, err)

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM comments")
		return err
	}

	return NewCommentService(db), db, cleanup, userID, postID
}

func TestSubmitComment(t *testing.T) {
	s, db, cleanup, _, postID := setupTestEnvironment(t)

	site := "https://example.com"
	badSite := "ftp://example.com"

	testCases := []struct {
		name        string
		req         *SubmitCommentRequest
		inline      bool
		approved    bool
		expectedErr error
	}{
		{
			name: "general submission stays pending",
			req: &SubmitCommentRequest{
				PostID: postID,
				Name:   "Ana",
				Email:  "a@x.com",
				Body:   "Hi",
			},
			inline:   false,
			approved: false,
		},
		{
			name: "inline submission is approved immediately",
			req: &SubmitCommentRequest{
				PostID: postID,
				Name:   "Ana",
				Email:  "a@x.com",
				Body:   "Hi",
			},
			inline:   true,
			approved: true,
		},
		{
			name: "optional site is stored",
			req: &SubmitCommentRequest{
				PostID: postID,
				Name:   "Ana",
				Email:  "a@x.com",
				Site:   &site,
				Body:   "Hi",
			},
			inline:   false,
			approved: false,
		},
		{
			name: "invalid email",
			req: &SubmitCommentRequest{
				PostID: postID,
				Name:   "Ana",
				Email:  "not-an-email",
				Body:   "Hi",
			},
			expectedErr: common.ValidationError{Errors: map[string]string{"email": "must be a valid email address"}},
		},
		{
			name: "invalid site scheme",
			req: &SubmitCommentRequest{
				PostID: postID,
				Name:   "Ana",
				Email:  "a@x.com",
				Site:   &badSite,
				Body:   "Hi",
			},
			expectedErr: common.ValidationError{Errors: map[string]string{"site": "must be a valid http or https URL"}},
		},
		{
			name: "missing post",
			req: &SubmitCommentRequest{
				PostID: 999999,
				Name:   "Ana",
				Email:  "a@x.com",
				Body:   "Hi",
			},
			expectedErr: ErrPostForeignKey,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()

			var comment *Comment
			var err error
			if tc.inline {
				comment, err = s.SubmitInline(ctx, tc.req)
			} else {
				comment, err = s.Submit(ctx, tc.req)
			}

			if tc.expectedErr != nil {
				assert.Equal(t, tc.expectedErr, err)
				assert.Nil(t, comment)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.approved, comment.Approved)

				var stored bool
				err = db.QueryRow("SELECT approved FROM comments WHERE id = $1", comment.ID).Scan(&stored)
				assert.NoError(t, err)
				assert.Equal(t, tc.approved, stored)
			}

			t.Cleanup(func() {
				assert.NoError(t, cleanup())
			})
		})
	}
}

func TestApproveComments(t *testing.T) {
	s, db, cleanup, userID, postID := setupTestEnvironment(t)

	_, otherPostID, err := setupTestPost(db, "otheruser", "otheruser@example.com", "other-post")
	assert.NoError(t, err)

	ctx := context.Background()

	mine, err := s.Submit(ctx, &SubmitCommentRequest{PostID: postID, Name: "Ana", Email: "a@x.com", Body: "Hi"})
	assert.NoError(t, err)

	foreign, err := s.Submit(ctx, &SubmitCommentRequest{PostID: otherPostID, Name: "Ana", Email: "a@x.com", Body: "Hi"})
	assert.NoError(t, err)

	// Only the comment on the caller's own post is approved.
	approved, err := s.Approve(ctx, userID, []int{mine.ID, foreign.ID})
	assert.NoError(t, err)
	assert.Equal(t, 1, approved)

	var flag bool
	assert.NoError(t, db.QueryRow("SELECT approved FROM comments WHERE id = $1", mine.ID).Scan(&flag))
	assert.True(t, flag)

	assert.NoError(t, db.QueryRow("SELECT approved FROM comments WHERE id = $1", foreign.ID).Scan(&flag))
	assert.False(t, flag)

	_, err = s.Approve(ctx, userID, nil)
	assert.Equal(t, common.ValidationError{Errors: map[string]string{"ids": "must be provided"}}, err)

	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})
}

func TestDeleteComment(t *testing.T) {
	s, db, cleanup, userID, postID := setupTestEnvironment(t)

	ctx := context.Background()

	comment, err := s.Submit(ctx, &SubmitCommentRequest{PostID: postID, Name: "Ana", Email: "a@x.com", Body: "Hi"})
	assert.NoError(t, err)

	// a non-owner cannot delete
	err = s.Delete(ctx, comment.ID, userID+1)
	assert.Equal(t, ErrRecordNotFound, err)

	err = s.Delete(ctx, comment.ID, userID)
	assert.NoError(t, err)

	var count int
	assert.NoError(t, db.QueryRow("SELECT COUNT(*) FROM comments").Scan(&count))
	assert.Equal(t, 0, count)

	err = s.Delete(ctx, comment.ID, userID)
	assert.Equal(t, ErrRecordNotFound, err)

	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})
}

func TestListComments(t *testing.T) {
	s, _, cleanup, userID, postID := setupTestEnvironment(t)

	ctx := context.Background()

	pending, err := s.Submit(ctx, &SubmitCommentRequest{PostID: postID, Name: "Ana", Email: "a@x.com", Body: "Pending"})
	assert.NoError(t, err)

	visible, err := s.SubmitInline(ctx, &SubmitCommentRequest{PostID: postID, Name: "Bob", Email: "b@x.com", Body: "Visible"})
	assert.NoError(t, err)

	approved, err := s.ListApproved(ctx, postID)
	assert.NoError(t, err)
	assert.Len(t, approved, 1)
	assert.Equal(t, visible.ID, approved[0].ID)

	limit := 0
	queue, err := s.ListPending(ctx, userID, &limit)
	assert.NoError(t, err)
	assert.Len(t, queue, 1)
	assert.Equal(t, pending.ID, queue[0].ID)

	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})
}
