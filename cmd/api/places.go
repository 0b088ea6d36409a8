package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"honhonji/internal/store"

	"github.com/go-chi/chi/v5"
)

func parsePlaceID(r *http.Request) (int64, error) {
	placeID, err := strconv.ParseInt(chi.URLParam(r, "placeID"), 10, 64)
	if err != nil || placeID <= 0 {
		return 0, fmt.Errorf("invalid placeID")
	}
	return placeID, nil
}

// ListPlaces godoc
//
//	@Summary		List approved places
//	@Description	Returns approved places of one type, each with its tags. Optionally narrowed to one tag.
//	@Tags			Places
//	@Produce		json
//	@Param			type	query		string	false	"restaurant|cafe|trail (default restaurant)"
//	@Param			tag		query		int		false	"tag ID to filter by"
//	@Success		200		{array}		store.Place
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Router			/places [get]
func (app *application) listPlacesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	placeType := strings.TrimSpace(q.Get("type"))
	if placeType == "" {
		placeType = store.PlaceTypeRestaurant
	}
	switch placeType {
	case store.PlaceTypeRestaurant, store.PlaceTypeCafe, store.PlaceTypeTrail:
	default:
		app.badRequestResponse(w, r, fmt.Errorf("invalid place type %q", placeType))
		return
	}

	var tagID int64
	if raw := q.Get("tag"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			app.badRequestResponse(w, r, fmt.Errorf("invalid tag id"))
			return
		}
		tagID = parsed
	}

	places, err := app.store.Places.List(r.Context(), store.PlaceFilter{
		Type:  placeType,
		TagID: tagID,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, places); err != nil {
		app.internalServerError(w, r, err)
	}
}

type placeDetail struct {
	*store.Place
	IsLiked bool `json:"is_liked"`
}

// GetPlace godoc
//
//	@Summary		Get a place
//	@Description	Returns one place with its tags. When the caller is authenticated, is_liked reflects their bookmark.
//	@Tags			Places
//	@Produce		json
//	@Param			placeID	path		int	true	"Place ID"
//	@Success		200		{object}	placeDetail
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Failure		500		{object}	error
//	@Router			/places/{placeID} [get]
func (app *application) getPlaceHandler(w http.ResponseWriter, r *http.Request) {
	placeID, err := parsePlaceID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	place, err := app.store.Places.GetByID(r.Context(), placeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	detail := placeDetail{Place: place}
	if profile := getProfileFromContext(r); profile != nil {
		liked, err := app.store.Likes.IsLiked(r.Context(), placeID, profile.ProfileID)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		detail.IsLiked = liked
	}

	if err := app.jsonResponse(w, http.StatusOK, detail); err != nil {
		app.internalServerError(w, r, err)
	}
}

// ListBookmarks godoc
//
//	@Summary		List bookmarked places
//	@Description	Returns the places the authenticated profile has bookmarked.
//	@Tags			Places
//	@Produce		json
//	@Success		200	{array}		store.Place
//	@Failure		401	{object}	error
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/places/bookmarks [get]
func (app *application) listBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	profile := getProfileFromContext(r)

	places, err := app.store.Likes.ListByProfile(r.Context(), profile.ProfileID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, places); err != nil {
		app.internalServerError(w, r, err)
	}
}
