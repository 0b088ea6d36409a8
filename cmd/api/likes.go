package main

import (
	"net/http"
)

// TogglePlaceLike godoc
//
//	@Summary		Toggle a bookmark
//	@Description	Bookmarks the place for the authenticated profile, or removes the bookmark if it already exists.
//	@Tags			Places
//	@Produce		json
//	@Param			placeID	path		int				true	"Place ID"
//	@Success		200		{object}	map[string]bool	"resulting liked state"
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/places/{placeID}/like [post]
func (app *application) togglePlaceLikeHandler(w http.ResponseWriter, r *http.Request) {
	placeID, err := parsePlaceID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	profile := getProfileFromContext(r)

	liked, err := app.store.Likes.Toggle(r.Context(), placeID, profile.ProfileID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]bool{"liked": liked}); err != nil {
		app.internalServerError(w, r, err)
	}
}
