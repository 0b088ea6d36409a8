package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"honhonji/internal/auth"
	"honhonji/internal/db"
	"honhonji/internal/geocode"
	"honhonji/internal/mailer"
	"honhonji/internal/notify"
	"honhonji/internal/ratelimiter"
	"honhonji/internal/sharecode"
	"honhonji/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 20
	defaultEnabled := true

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            time.Minute,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

var version = "0.3.0"

//	@title			HonHonji API
//	@description	API for HonHonji, a map-based local discovery application.

//	@contact.name	API Support

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	maxConnsStr := os.Getenv("DB_MAX_CONNS")
	maxConns, err := strconv.Atoi(maxConnsStr)
	if err != nil {
		log.Fatalf("Invalid value for DB_MAX_CONNS: %v", err)
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		log.Fatalf("Invalid value for SMTP_PORT: %v", err)
	}

	cfg := config{
		addr:        os.Getenv("ADDR"),
		env:         os.Getenv("ENV"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		apiURL:      os.Getenv("EXTERNAL_URL"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(maxConns),
			maxIdleTime: os.Getenv("DB_MAX_IDLE_TIME"),
		},
		mail: mailConfig{
			fromEmail: os.Getenv("SMTP_FROM_EMAIL"),
			smtp: smtpConfig{
				host:     os.Getenv("SMTP_HOST"),
				port:     smtpPort,
				username: os.Getenv("SMTP_USERNAME"),
				password: os.Getenv("SMTP_PASSWORD"),
			},
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:          os.Getenv("AUTH_TOKEN_SECRET"),
				refreshSecret:   os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				accessTokenExp:  time.Hour * 24 * 3, // 3 days
				refreshTokenExp: time.Hour * 24 * 9, // 9 days
				iss:             "HonHonji",
			},
		},
		geocoding: geocodingConfig{
			keyID: os.Getenv("NAVER_API_CLIENT_ID"),
			key:   os.Getenv("NAVER_API_CLIENT_SECRET"),
		},
		cron: cronConfig{
			secret:     os.Getenv("CRON_SECRET"),
			webhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
		},
		rateLimiter: LoadRateLimiterConfig(),
	}

	// Logger
	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Database
	pool, err := db.New(
		cfg.db.addr,
		cfg.db.maxConns,
		cfg.db.maxIdleTime,
	)
	if err != nil {
		logger.Fatal(err)
	}

	defer pool.Close()
	logger.Info("database connection pool established")

	//storage
	store := store.NewStorage(pool)

	//cloudinary
	cloudinaryUrl := os.Getenv("CLOUDINARY_URL")
	cld, err := cloudinary.NewFromURL(cloudinaryUrl)
	if err != nil {
		logger.Fatal(err)
	}

	// welcome emails
	smtp, err := mailer.NewSMTPClient(
		cfg.mail.smtp.host,
		cfg.mail.smtp.port,
		cfg.mail.smtp.username,
		cfg.mail.smtp.password,
		cfg.mail.fromEmail,
	)
	if err != nil {
		logger.Fatal(err)
	}

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	// Authenticator
	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.accessTokenExp,
		cfg.auth.token.refreshTokenExp,
	)

	shareCodes, err := sharecode.New(os.Getenv("SHARE_CODE_SALT"))
	if err != nil {
		logger.Fatal(err)
	}

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         store,
		geocoder:      geocode.NewClient(cfg.geocoding.keyID, cfg.geocoding.key),
		notifier:      notify.NewSlackWebhook(cfg.cron.webhookURL),
		cld:           cld,
		mailer:        smtp,
		authenticator: jwtAuthenticator,
		shareCodes:    shareCodes,
		rateLimiter:   rateLimiter,
	}

	//Metrics collected at /v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		stat := pool.Stat()
		return map[string]any{
			"total_conns":    stat.TotalConns(),
			"acquired_conns": stat.AcquiredConns(),
			"idle_conns":     stat.IdleConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
