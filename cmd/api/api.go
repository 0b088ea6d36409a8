package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"honhonji/docs" //this is required to generate swagger docs
	"honhonji/internal/auth"
	"honhonji/internal/geocode"
	"honhonji/internal/mailer"
	"honhonji/internal/notify"
	"honhonji/internal/ratelimiter"
	"honhonji/internal/sharecode"
	"honhonji/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	geocoder      geocode.Geocoder
	notifier      notify.Notifier
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	shareCodes    *sharecode.Codec
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	frontendURL string
	mail        mailConfig
	auth        authConfig
	geocoding   geocodingConfig
	cron        cronConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret          string
	refreshSecret   string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type geocodingConfig struct {
	keyID string
	key   string
}

type cronConfig struct {
	secret     string
	webhookURL string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Request context timeout; further processing stops once it fires.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerProfileHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Get("/tags", app.listTagsHandler)

		r.Route("/places", func(r chi.Router) {
			r.Get("/", app.listPlacesHandler)
			r.With(app.AuthTokenMiddleware).Get("/bookmarks", app.listBookmarksHandler)

			r.Route("/{placeID}", func(r chi.Router) {
				r.With(app.OptionalAuthTokenMiddleware).Get("/", app.getPlaceHandler)
				r.With(app.AuthTokenMiddleware).Post("/like", app.togglePlaceLikeHandler)
				r.With(app.AuthTokenMiddleware).Post("/courses", app.addPlaceToCoursesHandler)

				r.Get("/reviews", app.listPlaceReviewsHandler)
				r.With(app.AuthTokenMiddleware).Post("/reviews", app.createPlaceReviewHandler)
				r.With(app.AuthTokenMiddleware).Delete("/reviews/{reviewID}", app.deletePlaceReviewHandler)
			})
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Use(app.RateLimiterMiddleware)
			r.Use(app.OptionalAuthTokenMiddleware)
			r.Post("/", app.submitPlaceHandler)
			r.Post("/images", app.uploadSubmissionImageHandler)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/shared/{code}", app.getSharedCourseHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Post("/", app.createCourseHandler)
				r.Get("/", app.listMyCoursesHandler)

				r.Route("/{courseID}", func(r chi.Router) {
					r.Get("/", app.getCourseHandler)
					r.Patch("/", app.updateCourseHandler)
					r.Delete("/", app.deleteCourseHandler)

					r.Post("/places", app.addCoursePlaceHandler)
					r.Put("/places", app.reorderCoursePlacesHandler)
					r.Delete("/places/{placeID}", app.removeCoursePlaceHandler)
				})
			})
		})

		r.Post("/cron/notify-pending", app.notifyPendingHandler)
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Reports service status, environment and version.
//	@Tags			Ops
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
