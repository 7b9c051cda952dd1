package main

import (
	"errors"
	"net/http"

	"github.com/writelyhq/writely/internal/commentservice"
	"github.com/writelyhq/writely/internal/common"
)

// submitCommentRequest uses the legacy form field names.
type submitCommentRequest struct {
	PostID   int     `json:"post_id"`
	Nome     string  `json:"nome"`
	Email    string  `json:"email"`
	Site     *string `json:"site"`
	Mensagem string  `json:"mensagem"`
}

// submitCommentHandler records a comment through the general creation
// path. It stays pending until the post author approves it.
func (app *application) submitCommentHandler(w http.ResponseWriter, r *http.Request) {
	var input submitCommentRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	req := &commentservice.SubmitCommentRequest{
		PostID: input.PostID,
		Name:   input.Nome,
		Email:  input.Email,
		Site:   input.Site,
		Body:   input.Mensagem,
	}

	comment, err := app.commentService.Submit(r.Context(), req)
	if err != nil {
		app.commentErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"comment": comment}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// submitInlineCommentHandler records a comment from the post detail
// page. These are approved immediately.
func (app *application) submitInlineCommentHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post := app.getVisiblePost(w, r, slug)
	if post == nil {
		return
	}

	var input submitCommentRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	req := &commentservice.SubmitCommentRequest{
		PostID: post.ID,
		Name:   input.Nome,
		Email:  input.Email,
		Site:   input.Site,
		Body:   input.Mensagem,
	}

	comment, err := app.commentService.SubmitInline(r.Context(), req)
	if err != nil {
		app.commentErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"comment": comment}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) commentErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.As(err, &common.ValidationError{}):
		validationErr := err.(common.ValidationError)
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	case errors.Is(err, commentservice.ErrPostForeignKey):
		app.notFoundErrorResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

type approveCommentsRequest struct {
	IDs []int `json:"ids"`
}

func (app *application) approveCommentsHandler(w http.ResponseWriter, r *http.Request) {
	var input approveCommentsRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	approved, err := app.commentService.Approve(r.Context(), user.ID, input.IDs)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"approved": approved}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	err = app.commentService.Delete(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, commentservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "comment deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post := app.getVisiblePost(w, r, slug)
	if post == nil {
		return
	}

	comments, err := app.commentService.ListApproved(r.Context(), post.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"comments": comments}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listPendingCommentsHandler(w http.ResponseWriter, r *http.Request) {
	limit, _, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	comments, err := app.commentService.ListPending(r.Context(), user.ID, limit)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"comments": comments}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
