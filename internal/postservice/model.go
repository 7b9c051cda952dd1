package postservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateSlug  = errors.New("duplicate slug")
	ErrUserForeignKey = errors.New("user_id does not exist")
)

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// UniqueViolationError is a helper function to check if the error is a unique constraint error.
func UniqueViolationError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (m *PostModel) insert(ctx context.Context, p *Post) error {
	query := `
		INSERT INTO posts (title, slug, user_id, content, published_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version`

	err := m.db.QueryRowContext(ctx, query, p.Title, p.Slug, p.UserID, p.Content, p.PublishedAt).Scan(&p.ID, &p.CreatedAt, &p.Version)
	if err != nil {
		switch {
		case UniqueViolationError(err, "posts_slug_key"):
			return ErrDuplicateSlug
		case ForeignKeyError(err, "posts_user_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

// update mutates a draft in place. The WHERE clause enforces both the
// ownership and the draft-only rule, so a published post or a foreign
// post surfaces as ErrRecordNotFound.
func (m *PostModel) update(ctx context.Context, p *Post) error {
	query := `
		UPDATE posts
		SET title = $1, content = $2, published_at = $3, version = version + 1
		WHERE id = $4 AND user_id = $5 AND published_at IS NULL
		RETURNING slug, created_at, version`

	err := m.db.QueryRowContext(ctx, query, p.Title, p.Content, p.PublishedAt, p.ID, p.UserID).Scan(&p.Slug, &p.CreatedAt, &p.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *PostModel) delete(ctx context.Context, postID, userID int) error {
	query := `
		DELETE FROM posts
		WHERE id = $1 AND user_id = $2`

	res, err := m.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (m *PostModel) slugTaken(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)", slug).Scan(&exists)
	return exists, err
}

func (m *PostModel) setCategory(ctx context.Context, postID int, categoryID int) error {
	_, err := m.db.ExecContext(ctx, "UPDATE posts SET category_id = $1 WHERE id = $2", categoryID, postID)
	return err
}

func (m *PostModel) setImage(ctx context.Context, postID, userID int, path string) error {
	res, err := m.db.ExecContext(ctx, "UPDATE posts SET image_path = $1 WHERE id = $2 AND user_id = $3", path, postID, userID)
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

// addTag is additive: attaching a tag that is already attached is a no-op.
func (m *PostModel) addTag(ctx context.Context, postID, tagID int) error {
	query := `
		INSERT INTO post_tags (post_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	_, err := m.db.ExecContext(ctx, query, postID, tagID)
	return err
}

const postColumns = `
	p.id, p.title, p.slug, p.user_id, u.username, p.content, p.image_path, p.created_at, p.published_at, p.version,
	c.id, c.name, c.slug`

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var (
		p       Post
		image   sql.NullString
		pubAt   sql.NullTime
		catID   sql.NullInt64
		catName sql.NullString
		catSlug sql.NullString
	)

	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.UserID, &p.Author, &p.Content, &image, &p.CreatedAt, &pubAt, &p.Version, &catID, &catName, &catSlug)
	if err != nil {
		return nil, err
	}

	if image.Valid {
		p.ImagePath = &image.String
	}
	if pubAt.Valid {
		t := pubAt.Time
		p.PublishedAt = &t
	}
	if catID.Valid {
		p.Category = &Category{ID: int(catID.Int64), Name: catName.String, Slug: catSlug.String}
	}

	return &p, nil
}

func (m *PostModel) getByID(ctx context.Context, id int) (*Post, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		JOIN users u ON p.user_id = u.id
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1`

	p, err := scanPost(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return p, nil
}

func (m *PostModel) getBySlug(ctx context.Context, slug string) (*Post, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		JOIN users u ON p.user_id = u.id
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.slug = $1`

	p, err := scanPost(m.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return p, nil
}

func (m *PostModel) getTags(ctx context.Context, postID int) ([]Tag, error) {
	query := `
		SELECT t.id, t.name, t.slug
		FROM tags t
		JOIN post_tags pt ON t.id = pt.tag_id
		WHERE pt.post_id = $1
		ORDER BY t.name`

	rows, err := m.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

func (m *PostModel) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}

	return posts, rows.Err()
}

// getPublished returns published posts only, newest publication first.
func (m *PostModel) getPublished(ctx context.Context, limit, offset int) ([]Post, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		JOIN users u ON p.user_id = u.id
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.published_at IS NOT NULL
		ORDER BY p.published_at DESC
		LIMIT $1 OFFSET $2`

	return m.queryPosts(ctx, query, limit, offset)
}

func (m *PostModel) getPublishedByCategorySlug(ctx context.Context, slug string, limit, offset int) ([]Post, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		JOIN users u ON p.user_id = u.id
		JOIN categories c ON p.category_id = c.id
		WHERE c.slug = $1 AND p.published_at IS NOT NULL
		ORDER BY p.published_at DESC
		LIMIT $2 OFFSET $3`

	return m.queryPosts(ctx, query, slug, limit, offset)
}

func (m *PostModel) getPublishedByTagSlug(ctx context.Context, slug string, limit, offset int) ([]Post, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		JOIN users u ON p.user_id = u.id
		LEFT JOIN categories c ON p.category_id = c.id
		JOIN post_tags pt ON p.id = pt.post_id
		JOIN tags t ON pt.tag_id = t.id
		WHERE t.slug = $1 AND p.published_at IS NOT NULL
		ORDER BY p.published_at DESC
		LIMIT $2 OFFSET $3`

	return m.queryPosts(ctx, query, slug, limit, offset)
}
