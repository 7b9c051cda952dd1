package main

import (
	"errors"
	"net/http"

	"github.com/writelyhq/writely/internal/common"
)

func (app *application) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	stats, err := app.dashboardService.Stats(r.Context(), user.ID)
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

	err = app.writeJSON(w, http.StatusOK, envelope{"stats": stats}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
