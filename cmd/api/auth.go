package main

import (
	"errors"
	"fmt"
	"net/http"

	"honhonji/internal/mailer"
	"honhonji/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type registerProfilePayload struct {
	Name             string `json:"name" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email,max=255"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	MarketingConsent bool   `json:"marketing_consent"`
}

type profileWithTokens struct {
	*store.Profile
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterProfile godoc
//
//	@Summary		Register a profile
//	@Description	Creates a profile and returns access and refresh tokens.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		registerProfilePayload	true	"Profile credentials"
//	@Success		201		{object}	profileWithTokens
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error
//	@Failure		500		{object}	error
//	@Router			/authentication/user [post]
func (app *application) registerProfileHandler(w http.ResponseWriter, r *http.Request) {
	var payload registerProfilePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationFailedResponse(w, r, err)
		return
	}

	profile := &store.Profile{
		Name:             payload.Name,
		Email:            payload.Email,
		MarketingConsent: payload.MarketingConsent,
	}
	if err := profile.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Profiles.Create(r.Context(), profile); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			app.conflictResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(profile.ProfileID.String(), profile.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// Welcome mail must not delay or fail the signup.
	go func() {
		data := map[string]string{
			"Username":    profile.Name,
			"FrontendURL": app.config.frontendURL,
		}
		if _, err := app.mailer.Send(mailer.WelcomeTemplate, profile.Name, profile.Email, data); err != nil {
			app.logger.Errorw("failed to send welcome email", "email", profile.Email, "error", err)
		}
	}()

	resp := profileWithTokens{
		Profile:      profile,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if err := app.jsonResponse(w, http.StatusCreated, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type createTokenPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateToken godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for access and refresh tokens.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		createTokenPayload	true	"Credentials"
//	@Success		200		{object}	map[string]string
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Router			/authentication/token [post]
func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload createTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationFailedResponse(w, r, err)
		return
	}

	profile, err := app.store.Profiles.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid credentials"))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := profile.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid credentials"))
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(profile.ProfileID.String(), profile.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	data := map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

type refreshTokenPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshToken godoc
//
//	@Summary		Refresh tokens
//	@Description	Exchanges a valid refresh token for a new token pair.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		refreshTokenPayload	true	"Refresh token"
//	@Success		200		{object}	map[string]string
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Router			/authentication/refresh [post]
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload refreshTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationFailedResponse(w, r, err)
		return
	}

	jwtToken, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	claims, _ := jwtToken.Claims.(jwt.MapClaims)
	sub, _ := claims["sub"].(string)
	profileID, err := uuid.Parse(sub)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("malformed subject claim"))
		return
	}

	profile, err := app.store.Profiles.GetByID(r.Context(), profileID)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(profile.ProfileID.String(), profile.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	data := map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
