package postservice

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// A taxonomy token is either the numeric id of an existing row or free
// text naming a row to reuse or create. Unknown ids and empty tokens
// are silently dropped.
var numericTokenRX = regexp.MustCompile(`^[0-9]+$`)

func (m *PostModel) getCategoryByID(ctx context.Context, id int) (*Category, error) {
	var c Category
	err := m.db.QueryRowContext(ctx, "SELECT id, name, slug FROM categories WHERE id = $1", id).Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

func (m *PostModel) getCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	var c Category
	err := m.db.QueryRowContext(ctx, "SELECT id, name, slug FROM categories WHERE slug = $1", slug).Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

func (m *PostModel) insertCategory(ctx context.Context, name, slug string) (*Category, error) {
	c := Category{Name: name, Slug: slug}
	err := m.db.QueryRowContext(ctx, "INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id", name, slug).Scan(&c.ID)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// getOrCreateCategory is keyed on the slug. A concurrent create racing
// on the unique constraint is recovered by re-fetching the winner.
func (m *PostModel) getOrCreateCategory(ctx context.Context, name, slug string) (*Category, bool, error) {
	c, err := m.getCategoryBySlug(ctx, slug)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return nil, false, err
	}

	c, err = m.insertCategory(ctx, name, slug)
	if err == nil {
		return c, true, nil
	}
	if UniqueViolationError(err, "categories_slug_key") || UniqueViolationError(err, "categories_name_key") {
		c, err = m.getCategoryBySlug(ctx, slug)
		return c, false, err
	}

	return nil, false, err
}

// resolveCategory maps a taxonomy token to a category. The returned
// category is nil (with no error) when the token is empty or names an
// id that does not exist.
func (m *PostModel) resolveCategory(ctx context.Context, token string) (*Category, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	if numericTokenRX.MatchString(token) {
		id, err := strconv.Atoi(token)
		if err != nil {
			return nil, nil
		}

		c, err := m.getCategoryByID(ctx, id)
		if errors.Is(err, ErrRecordNotFound) {
			return nil, nil
		}
		return c, err
	}

	c, _, err := m.getOrCreateCategory(ctx, token, Slugify(token))
	return c, err
}

func (m *PostModel) getTagByID(ctx context.Context, id int) (*Tag, error) {
	var t Tag
	err := m.db.QueryRowContext(ctx, "SELECT id, name, slug FROM tags WHERE id = $1", id).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &t, nil
}

func (m *PostModel) getTagBySlug(ctx context.Context, slug string) (*Tag, error) {
	var t Tag
	err := m.db.QueryRowContext(ctx, "SELECT id, name, slug FROM tags WHERE slug = $1", slug).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &t, nil
}

func (m *PostModel) insertTag(ctx context.Context, name, slug string) (*Tag, error) {
	t := Tag{Name: name, Slug: slug}
	err := m.db.QueryRowContext(ctx, "INSERT INTO tags (name, slug) VALUES ($1, $2) RETURNING id", name, slug).Scan(&t.ID)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (m *PostModel) getOrCreateTag(ctx context.Context, name, slug string) (*Tag, bool, error) {
	t, err := m.getTagBySlug(ctx, slug)
	if err == nil {
		return t, false, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return nil, false, err
	}

	t, err = m.insertTag(ctx, name, slug)
	if err == nil {
		return t, true, nil
	}
	if UniqueViolationError(err, "tags_slug_key") || UniqueViolationError(err, "tags_name_key") {
		t, err = m.getTagBySlug(ctx, slug)
		return t, false, err
	}

	return nil, false, err
}

func (m *PostModel) resolveTag(ctx context.Context, token string) (*Tag, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	if numericTokenRX.MatchString(token) {
		id, err := strconv.Atoi(token)
		if err != nil {
			return nil, nil
		}

		t, err := m.getTagByID(ctx, id)
		if errors.Is(err, ErrRecordNotFound) {
			return nil, nil
		}
		return t, err
	}

	t, _, err := m.getOrCreateTag(ctx, token, TagSlug(token))
	return t, err
}

func (m *PostModel) listCategories(ctx context.Context) ([]Category, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT id, name, slug FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (m *PostModel) listTags(ctx context.Context) ([]Tag, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT id, name, slug FROM tags ORDER BY name")
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
