package postservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/writelyhq/writely/internal/common"
)

func NewPostService(db *sql.DB, c *common.Cache, mb common.MessageProducer) *PostService {
	return &PostService{m: newPostModel(db), c: c, mb: mb}
}

type CreatePostRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
	// Category and Tags carry taxonomy tokens: an existing numeric id
	// or free text to get-or-create.
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at"`
	Action      Action     `json:"action"`
}

type UpdatePostRequest struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at"`
	Action      Action     `json:"action"`
}

// resolvePublishedAt applies the draft/publish state transition. A
// save_draft action always clears the timestamp, even if one was
// supplied. A publish action keeps the supplied timestamp as given, or
// stamps the current time when none was supplied.
func resolvePublishedAt(action Action, supplied *time.Time) *time.Time {
	if action != ActionPublish {
		return nil
	}

	if supplied != nil {
		t := *supplied
		return &t
	}

	now := time.Now()
	return &now
}

// CreatePost creates a new post owned by userID. The slug is taken as
// given when supplied, otherwise allocated from the title.
func (s *PostService) CreatePost(ctx context.Context, userID int, req *CreatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateAction(v, req.Action)
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post := &Post{
		Title:       req.Title,
		UserID:      userID,
		Content:     sanitizeMarkdown(req.Content),
		PublishedAt: resolvePublishedAt(req.Action, req.PublishedAt),
	}

	explicitSlug := strings.TrimSpace(req.Slug) != ""
	if explicitSlug {
		post.Slug = strings.TrimSpace(req.Slug)
	} else {
		slug, err := allocateSlug(ctx, post.Title, s.m.slugTaken)
		if err != nil {
			return nil, err
		}
		post.Slug = slug
	}

	for {
		err := s.m.insert(ctx, post)
		if err == nil {
			break
		}

		// An allocated slug can be lost to a concurrent insert between
		// the existence check and the insert. Reallocate and retry.
		if errors.Is(err, ErrDuplicateSlug) {
			if explicitSlug {
				v.AddError("slug", "is already in use")
				return nil, v.ValidationError()
			}

			slug, err := allocateSlug(ctx, post.Title, s.m.slugTaken)
			if err != nil {
				return nil, err
			}
			post.Slug = slug
			continue
		}

		return nil, err
	}

	if err := s.attachTaxonomy(ctx, post.ID, req.Category, req.Tags); err != nil {
		return nil, err
	}

	if post.PublishedAt != nil {
		if err := s.publishEvent(ctx, post); err != nil {
			return nil, err
		}
	}

	return s.getPost(ctx, post.ID)
}

// UpdatePost mutates a draft. Only the owning author can edit, and only
// while the post is unpublished; any other combination is reported as
// ErrRecordNotFound so existence is never leaked.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID int, req *UpdatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateAction(v, req.Action)
	validateInt(v, postID, "id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post := &Post{
		ID:          postID,
		Title:       req.Title,
		UserID:      userID,
		Content:     sanitizeMarkdown(req.Content),
		PublishedAt: resolvePublishedAt(req.Action, req.PublishedAt),
	}

	if err := s.m.update(ctx, post); err != nil {
		return nil, err
	}

	// Tag attachment is additive: tags already on the post stay even
	// when omitted from the request.
	if err := s.attachTaxonomy(ctx, post.ID, req.Category, req.Tags); err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyPostBySlug(post.Slug))

	if post.PublishedAt != nil {
		if err := s.publishEvent(ctx, post); err != nil {
			return nil, err
		}
	}

	return s.getPost(ctx, post.ID)
}

// DeletePost deletes a post owned by userID, cascading to its comments
// and notifications.
func (s *PostService) DeletePost(ctx context.Context, postID, userID int) error {
	v := common.NewValidator()
	validateInt(v, postID, "id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	post, err := s.m.getByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.m.delete(ctx, postID, userID); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyPostBySlug(post.Slug))

	return nil
}

// GetPostBySlug returns a post with its tags attached.
func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	v := common.NewValidator()
	v.Check(slug != "", "slug", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyPostBySlug(slug)); ok {
		if post, ok := cached.(*Post); ok {
			return post, nil
		}
	}

	post, err := s.m.getBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	tags, err := s.m.getTags(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Tags = tags

	s.c.Set(common.CacheKeyPostBySlug(slug), post)

	return post, nil
}

// ListPublished returns published posts, newest first. Default limit is 6 and default offset is 0, matching the public listing page size.
func (s *PostService) ListPublished(ctx context.Context, limit, offset *int) ([]Post, error) {
	if *limit < 1 {
		*limit = 6
	}

	if *offset < 0 {
		*offset = 0
	}

	return s.m.getPublished(ctx, *limit, *offset)
}

func (s *PostService) ListByCategory(ctx context.Context, slug string, limit, offset *int) ([]Post, error) {
	if *limit < 1 {
		*limit = 6
	}

	if *offset < 0 {
		*offset = 0
	}

	return s.m.getPublishedByCategorySlug(ctx, slug, *limit, *offset)
}

func (s *PostService) ListByTag(ctx context.Context, slug string, limit, offset *int) ([]Post, error) {
	if *limit < 1 {
		*limit = 6
	}

	if *offset < 0 {
		*offset = 0
	}

	return s.m.getPublishedByTagSlug(ctx, slug, *limit, *offset)
}

// CreateCategory gets or creates a category by name, keyed on the
// locale-aware slug. The bool reports whether a new row was created.
func (s *PostService) CreateCategory(ctx context.Context, name string) (*Category, bool, error) {
	name = strings.TrimSpace(name)

	v := common.NewValidator()
	validateName(v, name, "nome")
	if !v.Valid() {
		return nil, false, v.ValidationError()
	}

	return s.m.getOrCreateCategory(ctx, name, Slugify(name))
}

// CreateTag gets or creates a tag by name, keyed on the simple
// lowercase-hyphen slug.
func (s *PostService) CreateTag(ctx context.Context, name string) (*Tag, bool, error) {
	name = strings.TrimSpace(name)

	v := common.NewValidator()
	validateName(v, name, "nome")
	if !v.Valid() {
		return nil, false, v.ValidationError()
	}

	return s.m.getOrCreateTag(ctx, name, TagSlug(name))
}

func (s *PostService) Categories(ctx context.Context) ([]Category, error) {
	return s.m.listCategories(ctx)
}

func (s *PostService) Tags(ctx context.Context) ([]Tag, error) {
	return s.m.listTags(ctx)
}

// AttachImage records the stored image path on a post. Only the owning
// author can attach an image.
func (s *PostService) AttachImage(ctx context.Context, postID, userID int, path string) error {
	v := common.NewValidator()
	validateInt(v, postID, "id")
	validateInt(v, userID, "user_id")
	v.Check(path != "", "image", "must be provided")
	if !v.Valid() {
		return v.ValidationError()
	}

	post, err := s.m.getByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.m.setImage(ctx, postID, userID, path); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyPostBySlug(post.Slug))

	return nil
}

func (s *PostService) attachTaxonomy(ctx context.Context, postID int, categoryToken string, tagTokens []string) error {
	category, err := s.m.resolveCategory(ctx, categoryToken)
	if err != nil {
		return err
	}
	if category != nil {
		if err := s.m.setCategory(ctx, postID, category.ID); err != nil {
			return err
		}
	}

	for _, token := range tagTokens {
		tag, err := s.m.resolveTag(ctx, token)
		if err != nil {
			return err
		}
		if tag == nil {
			continue
		}
		if err := s.m.addTag(ctx, postID, tag.ID); err != nil {
			return err
		}
	}

	return nil
}

func (s *PostService) publishEvent(ctx context.Context, post *Post) error {
	data, err := json.Marshal(PublishedEvent{Title: post.Title, Slug: post.Slug})
	if err != nil {
		return err
	}

	return s.mb.Publish(ctx, data, common.PostPublishedKey, common.PostExchange)
}

func (s *PostService) getPost(ctx context.Context, id int) (*Post, error) {
	post, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tags, err := s.m.getTags(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Tags = tags

	return post, nil
}
