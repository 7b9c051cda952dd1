package main

import (
	"errors"
	"net/http"

	"github.com/writelyhq/writely/internal/common"
)

type createTaxonomyRequest struct {
	Nome string `json:"nome"`
}

// createTagHandler gets or creates a tag by name. The nome field and
// response shape follow the legacy inline-creation endpoint.
func (app *application) createTagHandler(w http.ResponseWriter, r *http.Request) {
	var input createTaxonomyRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	tag, created, err := app.postService.CreateTag(r.Context(), input.Nome)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			app.badRequestErrorResponse(w, r, errors.New("nome must be provided"))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"id": tag.ID, "nome": tag.Name, "slug": tag.Slug, "created": created}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var input createTaxonomyRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	category, created, err := app.postService.CreateCategory(r.Context(), input.Nome)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			app.badRequestErrorResponse(w, r, errors.New("nome must be provided"))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"id": category.ID, "nome": category.Name, "slug": category.Slug, "created": created}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listTagsHandler(w http.ResponseWriter, r *http.Request) {
	tags, err := app.postService.Tags(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"tags": tags}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := app.postService.Categories(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"categories": categories}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
