package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"strings"

	"honhonji/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type profileKey string

const profileCtx profileKey = "profile"

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// read the auth header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			// parse it -> get the base64
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			// decode it
			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			// check the credentials
			username := app.config.auth.basic.user
			pass := app.config.auth.basic.pass

			creds := strings.SplitN(string(decoded), ":", 2)
			if len(creds) != 2 || creds[0] != username || creds[1] != pass {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, err := app.profileFromBearer(r)
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), profileCtx, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthTokenMiddleware attaches the profile when a valid bearer token
// is present and lets the request through anonymously otherwise. Used on the
// submission routes, where anonymous submissions are permitted.
func (app *application) OptionalAuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		profile, err := app.profileFromBearer(r)
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), profileCtx, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) profileFromBearer(r *http.Request) (*store.Profile, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header is missing")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("authorization header is malformed")
	}

	jwtToken, err := app.authenticator.ValidateAccessToken(parts[1])
	if err != nil {
		return nil, err
	}

	claims, _ := jwtToken.Claims.(jwt.MapClaims)

	sub, _ := claims["sub"].(string)
	profileID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("malformed subject claim")
	}

	return app.store.Profiles.GetByID(r.Context(), profileID)
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			if allow, retryAfter := app.rateLimiter.Allow(clientIP(r)); !allow {
				app.rateLimitExceededResponse(w, r, retryAfter.String())
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func getProfileFromContext(r *http.Request) *store.Profile {
	profile, _ := r.Context().Value(profileCtx).(*store.Profile)
	return profile
}

func clientIP(r *http.Request) string {
	// middleware.RealIP has already rewritten RemoteAddr when the request
	// came through a proxy.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
