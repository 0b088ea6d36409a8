package main

import "net/http"

// ListTags godoc
//
//	@Summary		List tags
//	@Description	Returns all tags grouped by display order. Reference data for filters.
//	@Tags			Tags
//	@Produce		json
//	@Success		200	{array}		store.Tag
//	@Failure		500	{object}	error
//	@Router			/tags [get]
func (app *application) listTagsHandler(w http.ResponseWriter, r *http.Request) {
	tags, err := app.store.Tags.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, tags); err != nil {
		app.internalServerError(w, r, err)
	}
}
