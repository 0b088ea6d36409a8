package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"honhonji/internal/store"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

type submitPlacePayload struct {
	PlaceType   string  `json:"place_type" validate:"required,oneof=restaurant cafe trail"`
	PlaceName   string  `json:"place_name" validate:"required,max=200"`
	Address     string  `json:"address" validate:"required_unless=PlaceType trail"`
	Description *string `json:"description"`
	Phone       *string `json:"phone"`
	Homepage    *string `json:"homepage" validate:"omitempty,url"`
	Instagram   *string `json:"instagram"`
	Naver       *string `json:"naver"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	TagIDs      []int64 `json:"tag_ids" validate:"dive,gt=0"`
}

// SubmitPlace godoc
//
//	@Summary		Submit a place recommendation
//	@Description	Creates a pending place for moderation. Restaurants and cafes need an address, which is geocoded server-side; a failed geocode leaves the coordinates unset and does not block the submission. Anonymous submissions are allowed.
//	@Tags			Submissions
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		submitPlacePayload	true	"Candidate place"
//	@Success		201		{object}	map[string]any
//	@Failure		400		{object}	error
//	@Failure		422		{object}	error	"validation failed, offending fields listed"
//	@Failure		500		{object}	error
//	@Router			/submissions [post]
func (app *application) submitPlaceHandler(w http.ResponseWriter, r *http.Request) {
	var payload submitPlacePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payload.Address = strings.TrimSpace(payload.Address)
	if err := Validate.Struct(payload); err != nil {
		app.validationFailedResponse(w, r, err)
		return
	}

	submission := &store.PlaceSubmission{
		Type:        payload.PlaceType,
		Name:        strings.TrimSpace(payload.PlaceName),
		Description: payload.Description,
		Phone:       payload.Phone,
		Homepage:    payload.Homepage,
		Instagram:   payload.Instagram,
		Naver:       payload.Naver,
		ImageURL:    payload.ImageURL,
		Source:      store.PlaceSourceAdmin,
	}
	if payload.Address != "" {
		submission.Address = &payload.Address
	}

	if profile := getProfileFromContext(r); profile != nil {
		id := profile.ProfileID
		submission.SubmittedBy = &id
		submission.Source = store.PlaceSourceUser
	}

	// Geocoding is best effort; a place without coordinates is normal.
	if payload.Address != "" {
		coords, err := app.geocoder.Lookup(r.Context(), payload.Address)
		if err != nil {
			app.logger.Warnw("geocoding failed", "address", payload.Address, "error", err)
		} else {
			submission.Lat = &coords.Latitude
			submission.Lng = &coords.Longitude
		}
	}

	submission.TagIDs = payload.TagIDs

	place, err := app.store.Submissions.Submit(r.Context(), submission)
	if err != nil {
		if place != nil {
			// The place row exists; only the tag links failed. Moderators
			// will see the orphan in the pending queue.
			app.logger.Errorw("tag linking failed after place insert",
				"place_id", place.ID, "error", err)
		}
		app.internalServerError(w, r, err)
		return
	}

	data := map[string]any{
		"success":  true,
		"message":  fmt.Sprintf("%s has been submitted for review", place.Name),
		"place_id": place.ID,
		"name":     place.Name,
	}
	if err := app.jsonResponse(w, http.StatusCreated, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

// UploadSubmissionImage godoc
//
//	@Summary		Upload a submission image
//	@Description	Stores the image on Cloudinary and returns the URL to use as image_url in a submission.
//	@Tags			Submissions
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image	formData	file	true	"Image file"
//	@Success		201		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Router			/submissions/images [post]
func (app *application) uploadSubmissionImageHandler(w http.ResponseWriter, r *http.Request) {
	// 10 MB cap on the whole form
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("image file is required"))
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("submission_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
	resp, err := app.cld.Upload.Upload(r.Context(), file, uploader.UploadParams{
		Folder:    "submissions",
		PublicID:  publicID,
		Overwrite: api.Bool(false),
	})
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("cloudinary upload: %w", err))
		return
	}

	data := map[string]string{"image_url": resp.SecureURL}
	if err := app.jsonResponse(w, http.StatusCreated, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
