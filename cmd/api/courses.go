package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"honhonji/internal/store"

	"github.com/go-chi/chi/v5"
)

func parseCourseID(r *http.Request) (int64, error) {
	courseID, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil || courseID <= 0 {
		return 0, fmt.Errorf("invalid courseID")
	}
	return courseID, nil
}

// requireCourseOwner answers whether the authenticated profile owns the
// course; a course owned by someone else is reported as not found.
func (app *application) requireCourseOwner(w http.ResponseWriter, r *http.Request, courseID int64) bool {
	profile := getProfileFromContext(r)

	owns, err := app.store.Courses.Owns(r.Context(), courseID, profile.ProfileID)
	if err != nil {
		app.internalServerError(w, r, err)
		return false
	}
	if !owns {
		app.notFoundResponse(w, r, fmt.Errorf("course %d not owned by caller", courseID))
		return false
	}
	return true
}

type createCoursePayload struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description"`
}

// CreateCourse godoc
//
//	@Summary		Create a course
//	@Description	Creates an empty itinerary owned by the authenticated profile.
//	@Tags			Courses
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		createCoursePayload	true	"Course fields"
//	@Success		201		{object}	store.Course
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/courses [post]
func (app *application) createCourseHandler(w http.ResponseWriter, r *http.Request) {
	var payload createCoursePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationFailedResponse(w, r, err)
		return
	}

	profile := getProfileFromContext(r)
	course := &store.Course{
		Name:        payload.Name,
		Description: payload.Description,
		ProfileID:   profile.ProfileID,
	}

	if err := app.store.Courses.Create(r.Context(), course); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, course); err != nil {
		app.internalServerError(w, r, err)
	}
}

// ListMyCourses godoc
//
//	@Summary		List my courses
//	@Tags			Courses
//	@Produce		json
//	@Success		200	{array}		store.Course
//	@Failure		401	{object}	error
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/courses [get]
func (app *application) listMyCoursesHandler(w http.ResponseWriter, r *http.Request) {
	profile := getProfileFromContext(r)

	courses, err := app.store.Courses.ListByProfile(r.Context(), profile.ProfileID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, courses); err != nil {
		app.internalServerError(w, r, err)
	}
}

type courseDetail struct {
	*store.Course
	ShareCode string `json:"share_code,omitempty"`
}

// GetCourse godoc
//
//	@Summary		Get a course
//	@Description	Returns the course with its places in itinerary order, plus its share code.
//	@Tags			Courses
//	@Produce		json
//	@Param			courseID	path		int	true	"Course ID"
//	@Success		200			{object}	courseDetail
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/courses/{courseID} [get]
func (app *application) getCourseHandler(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseCourseID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	profile := getProfileFromContext(r)
	course, err := app.store.Courses.GetByID(r.Context(), courseID, profile.ProfileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	detail := courseDetail{Course: course}
	if code, err := app.shareCodes.Encode(course.ID); err == nil {
		detail.ShareCode = code
	}

	if err := app.jsonResponse(w, http.StatusOK, detail); err != nil {
		app.internalServerError(w, r, err)
	}
}

// GetSharedCourse godoc
//
//	@Summary		Resolve a shared course
//	@Description	Public share-link view of a course, addressed by its share code.
//	@Tags			Courses
//	@Produce		json
//	@Param			code	path		string	true	"Share code"
//	@Success		200		{object}	store.Course
//	@Failure		404		{object}	error
//	@Failure		500		{object}	error
//	@Router			/courses/shared/{code} [get]
func (app *application) getSharedCourseHandler(w http.ResponseWriter, r *http.Request) {
	courseID, err := app.shareCodes.Decode(chi.URLParam(r, "code"))
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	course, err := app.store.Courses.GetShared(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, course); err != nil {
		app.internalServerError(w, r, err)
	}
}

type updateCoursePayload struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description"`
}

// UpdateCourse godoc
//
//	@Summary		Update course name and description
//	@Tags			Courses
//	@Accept			json
//	@Produce		json
//	@Param			courseID	path		int					true	"Course ID"
//	@Param			payload		body		updateCoursePayload	true	"New fields"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/courses/{courseID} [patch]
func (app *application) updateCourseHandler(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseCourseID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload updateCoursePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationFailedResponse(w, r, err)
		return
	}

	profile := getProfileFromContext(r)
	err = app.store.Courses.Update(r.Context(), courseID, profile.ProfileID, payload.Name, payload.Description)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	data := map[string]any{"success": true, "message": "course saved"}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

// DeleteCourse godoc
//
//	@Summary		Delete a course
//	@Description	Removes the course and all of its places. Owner only.
//	@Tags			Courses
//	@Produce		json
//	@Param			courseID	path		int	true	"Course ID"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/courses/{courseID} [delete]
func (app *application) deleteCourseHandler(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseCourseID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	profile := getProfileFromContext(r)
	if err := app.store.Courses.Delete(r.Context(), courseID, profile.ProfileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	data := map[string]any{"success": true, "message": "course deleted"}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

type addCoursePlacePayload struct {
	PlaceID int64 `json:"place_id" validate:"required,gt=0"`
}

// AddCoursePlace godoc
//
//	@Summary		Add a place to a course
//	@Description	Appends the place at the end of the itinerary.
//	@Tags			Courses
//	@Accept			json
//	@Produce		json
//	@Param			courseID	path		int						true	"Course ID"
//	@Param			payload		body		addCoursePlacePayload	true	"Place to add"
//	@Success		201			{object}	store.CoursePlace
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Failure		409			{object}	error	"place is already in this course"
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/courses/{courseID}/places [post]
func (app *application) addCoursePlaceHandler(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseCourseID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload addCoursePlacePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationFailedResponse(w, r, err)
		return
	}

	if !app.requireCourseOwner(w, r, courseID) {
		return
	}

	cp, err := app.store.Courses.AddPlace(r.Context(), courseID, payload.PlaceID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateMembership):
			app.conflictResponse(w, r, err)
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, cp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type addPlaceToCoursesPayload struct {
	CourseIDs []int64 `json:"course_ids" validate:"required,min=1,dive,gt=0"`
}

type addPlaceToCoursesResult struct {
	Results  []store.CoursePlace   `json:"results"`
	Failures []store.CourseFailure `json:"failures"`
}

// AddPlaceToCourses godoc
//
//	@Summary		Add a place to several courses
//	@Description	Applies the add to each course independently; a course that already contains the place yields a per-course failure, never a failed batch.
//	@Tags			Courses
//	@Accept			json
//	@Produce		json
//	@Param			placeID	path		int							true	"Place ID"
//	@Param			payload	body		addPlaceToCoursesPayload	true	"Target courses"
//	@Success		200		{object}	addPlaceToCoursesResult
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/places/{placeID}/courses [post]
func (app *application) addPlaceToCoursesHandler(w http.ResponseWriter, r *http.Request) {
	placeID, err := parsePlaceID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload addPlaceToCoursesPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationFailedResponse(w, r, err)
		return
	}

	// Courses the caller does not own are skipped up front and reported as
	// per-course failures, same as any other per-course error.
	profile := getProfileFromContext(r)
	var owned []int64
	var failures []store.CourseFailure
	for _, courseID := range payload.CourseIDs {
		owns, err := app.store.Courses.Owns(r.Context(), courseID, profile.ProfileID)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		if !owns {
			failures = append(failures, store.CourseFailure{
				CourseID: courseID,
				Error:    store.ErrNotFound.Error(),
			})
			continue
		}
		owned = append(owned, courseID)
	}

	results, storeFailures := app.store.Courses.AddPlaceToCourses(r.Context(), owned, placeID)
	failures = append(failures, storeFailures...)

	out := addPlaceToCoursesResult{Results: results, Failures: failures}
	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

// RemoveCoursePlace godoc
//
//	@Summary		Remove a place from a course
//	@Description	Deletes the membership row and shifts later places down to keep positions contiguous.
//	@Tags			Courses
//	@Produce		json
//	@Param			courseID	path		int	true	"Course ID"
//	@Param			placeID		path		int	true	"Place ID"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error	"place was not in the course"
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/courses/{courseID}/places/{placeID} [delete]
func (app *application) removeCoursePlaceHandler(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseCourseID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	placeID, err := parsePlaceID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !app.requireCourseOwner(w, r, courseID) {
		return
	}

	if err := app.store.Courses.RemovePlace(r.Context(), courseID, placeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	data := map[string]any{"success": true, "message": "place removed from course"}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

type reorderCoursePlacesPayload struct {
	PlaceIDs []int64 `json:"place_ids" validate:"required,min=1,dive,gt=0"`
}

// ReorderCoursePlaces godoc
//
//	@Summary		Reorder the places in a course
//	@Description	Takes the complete current membership in the desired order; place i gets position i+1. Clients coalesce rapid drag operations and submit once.
//	@Tags			Courses
//	@Accept			json
//	@Produce		json
//	@Param			courseID	path		int							true	"Course ID"
//	@Param			payload		body		reorderCoursePlacesPayload	true	"Full permutation of the course's place ids"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Failure		409			{object}	error	"list does not match current membership"
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/courses/{courseID}/places [put]
func (app *application) reorderCoursePlacesHandler(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseCourseID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload reorderCoursePlacesPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationFailedResponse(w, r, err)
		return
	}

	if !app.requireCourseOwner(w, r, courseID) {
		return
	}

	if err := app.store.Courses.Reorder(r.Context(), courseID, payload.PlaceIDs); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, err)
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	data := map[string]any{"success": true, "message": "course order saved"}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
