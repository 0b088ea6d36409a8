package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"honhonji/internal/store"

	"github.com/go-chi/chi/v5"
)

type createReviewPayload struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Content string `json:"content" validate:"required,max=2000"`
}

// CreatePlaceReview godoc
//
//	@Summary		Review a place
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Param			placeID	path		int					true	"Place ID"
//	@Param			payload	body		createReviewPayload	true	"Review"
//	@Success		201		{object}	store.Review
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/places/{placeID}/reviews [post]
func (app *application) createPlaceReviewHandler(w http.ResponseWriter, r *http.Request) {
	placeID, err := parsePlaceID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload createReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationFailedResponse(w, r, err)
		return
	}

	profile := getProfileFromContext(r)
	review := &store.Review{
		PlaceID:   placeID,
		ProfileID: &profile.ProfileID,
		Rating:    payload.Rating,
		Content:   payload.Content,
	}

	if err := app.store.Reviews.Create(r.Context(), review); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// ListPlaceReviews godoc
//
//	@Summary		List reviews of a place
//	@Tags			Reviews
//	@Produce		json
//	@Param			placeID	path		int	true	"Place ID"
//	@Success		200		{array}		store.Review
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Router			/places/{placeID}/reviews [get]
func (app *application) listPlaceReviewsHandler(w http.ResponseWriter, r *http.Request) {
	placeID, err := parsePlaceID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	reviews, err := app.store.Reviews.ListByPlace(r.Context(), placeID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, reviews); err != nil {
		app.internalServerError(w, r, err)
	}
}

// DeletePlaceReview godoc
//
//	@Summary		Delete my review
//	@Tags			Reviews
//	@Produce		json
//	@Param			placeID		path	int	true	"Place ID"
//	@Param			reviewID	path	int	true	"Review ID"
//	@Success		204
//	@Failure		400	{object}	error
//	@Failure		404	{object}	error
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/places/{placeID}/reviews/{reviewID} [delete]
func (app *application) deletePlaceReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil || reviewID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid reviewID"))
		return
	}

	profile := getProfileFromContext(r)
	if err := app.store.Reviews.Delete(r.Context(), reviewID, profile.ProfileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
