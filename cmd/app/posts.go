package main

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/writelyhq/writely/internal/common"
	"github.com/writelyhq/writely/internal/postservice"
)

type createPostRequest struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at"`
	Action      string     `json:"action"`
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input createPostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	req := &postservice.CreatePostRequest{
		Title:       input.Title,
		Slug:        input.Slug,
		Content:     input.Content,
		Category:    input.Category,
		Tags:        input.Tags,
		PublishedAt: input.PublishedAt,
		Action:      postservice.Action(input.Action),
	}

	post, err := app.postService.CreatePost(r.Context(), user.ID, req)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		case errors.Is(err, postservice.ErrUserForeignKey):
			app.unAuthorizedErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if post.PublishedAt != nil {
		app.notifyPublish(r, post)
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type updatePostRequest struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at"`
	Action      string     `json:"action"`
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input updatePostRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	req := &postservice.UpdatePostRequest{
		Title:       input.Title,
		Content:     input.Content,
		Category:    input.Category,
		Tags:        input.Tags,
		PublishedAt: input.PublishedAt,
		Action:      postservice.Action(input.Action),
	}

	post, err := app.postService.UpdatePost(r.Context(), user.ID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if post.PublishedAt != nil {
		app.notifyPublish(r, post)
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// notifyPublish records one notification per recipient. Fan-out failure
// is logged, not surfaced: the post is already published.
func (app *application) notifyPublish(r *http.Request, post *postservice.Post) {
	recipients, err := app.userService.ListRecipientIDs(r.Context(), post.UserID)
	if err != nil {
		app.logError(r, err)
		return
	}

	_, err = app.notificationService.NotifyPublish(r.Context(), post, recipients)
	if err != nil {
		app.logError(r, err)
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	err = app.postService.DeletePost(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "post deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// getVisiblePost resolves a slug to a post. Drafts are only visible to
// their author; anyone else gets the same not-found response as for a
// missing post, so a draft's existence is never leaked. On failure the
// response has already been written and nil is returned.
func (app *application) getVisiblePost(w http.ResponseWriter, r *http.Request, slug string) *postservice.Post {
	post, err := app.postService.GetPostBySlug(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil
	}

	if post.Draft() {
		user := app.getUserContext(r)
		if user == nil || user.ID != post.UserID {
			app.notFoundErrorResponse(w, r)
			return nil
		}
	}

	return post
}

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post := app.getVisiblePost(w, r, slug)
	if post == nil {
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	posts, err := app.postService.ListPublished(r.Context(), limit, offset)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listPostsByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	posts, err := app.postService.ListByCategory(r.Context(), slug, limit, offset)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listPostsByTagHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	posts, err := app.postService.ListByTag(r.Context(), slug, limit, offset)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) uploadPostImageHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.postService.GetPostBySlug(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	user := app.getUserContext(r)
	if post.UserID != user.ID {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = r.ParseMultipartForm(10 << 20)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		app.badRequestErrorResponse(w, r, errors.New("image file must be provided"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		app.badRequestErrorResponse(w, r, errors.New("unsupported image format"))
		return
	}

	path, err := app.files.Save(file, ext)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.postService.AttachImage(r.Context(), post.ID, user.ID, path)
	if err != nil {
		app.files.Remove(path)
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"image_path": path}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
