package commentservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrPostForeignKey = errors.New("post_id does not exist")
)

func newCommentModel(db *sql.DB) *CommentModel {
	return &CommentModel{db: db}
}

func (m *CommentModel) insert(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (post_id, author_name, author_email, site, body, approved)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := m.db.QueryRowContext(ctx, query, c.PostID, c.AuthorName, c.AuthorEmail, c.Site, c.Body, c.Approved).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "comments_post_id_fkey" {
			return ErrPostForeignKey
		}
		return err
	}

	return nil
}

// approve bulk-approves comments, restricted to comments on posts owned
// by authorID. Returns the number of comments flipped.
func (m *CommentModel) approve(ctx context.Context, authorID int, ids []int) (int, error) {
	query := `
		UPDATE comments
		SET approved = true
		FROM posts
		WHERE comments.post_id = posts.id
		  AND posts.user_id = $1
		  AND comments.id = ANY($2)`

	res, err := m.db.ExecContext(ctx, query, authorID, pq.Array(ids))
	if err != nil {
		return 0, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rows), nil
}

// delete removes a comment. The join against posts enforces that only
// the post owner can delete; a foreign or missing comment is reported
// uniformly as ErrRecordNotFound.
func (m *CommentModel) delete(ctx context.Context, commentID, userID int) error {
	query := `
		DELETE FROM comments
		USING posts
		WHERE comments.id = $1
		  AND comments.post_id = posts.id
		  AND posts.user_id = $2`

	res, err := m.db.ExecContext(ctx, query, commentID, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *CommentModel) getApprovedByPost(ctx context.Context, postID int) ([]Comment, error) {
	query := `
		SELECT id, post_id, author_name, author_email, site, body, created_at, approved
		FROM comments
		WHERE post_id = $1 AND approved = true
		ORDER BY created_at DESC`

	return m.queryComments(ctx, query, postID)
}

func (m *CommentModel) getPendingForAuthor(ctx context.Context, authorID, limit int) ([]Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_name, c.author_email, c.site, c.body, c.created_at, c.approved
		FROM comments c
		JOIN posts p ON c.post_id = p.id
		WHERE p.user_id = $1 AND c.approved = false
		ORDER BY c.created_at DESC
		LIMIT $2`

	return m.queryComments(ctx, query, authorID, limit)
}

func (m *CommentModel) queryComments(ctx context.Context, query string, args ...any) ([]Comment, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var (
			c    Comment
			site sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorName, &c.AuthorEmail, &site, &c.Body, &c.CreatedAt, &c.Approved); err != nil {
			return nil, err
		}
		if site.Valid {
			c.Site = &site.String
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}
