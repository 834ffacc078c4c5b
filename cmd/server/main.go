package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/coldsend/coldsend/internal"
	"github.com/coldsend/coldsend/internal/cookie"
	"github.com/coldsend/coldsend/internal/crypto"
	"github.com/coldsend/coldsend/internal/dispatch"
	"github.com/coldsend/coldsend/internal/events"
	"github.com/coldsend/coldsend/internal/handler"
	"github.com/coldsend/coldsend/internal/jobs"
	"github.com/coldsend/coldsend/internal/mail"
	"github.com/coldsend/coldsend/internal/middleware"
	"github.com/coldsend/coldsend/internal/oauth"
	"github.com/coldsend/coldsend/internal/router"
	"github.com/coldsend/coldsend/internal/routes"
	"github.com/coldsend/coldsend/internal/session"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Session store
	var sessionStore session.Store
	switch cfg.SessionStore {
	case "postgres":
		logger.Info("Connecting to database...")
		sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer sqlDB.Close()

		if err := sqlDB.Ping(); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}

		logger.Info("Running database migrations...")
		if err := internal.RunMigrations(sqlDB); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		// Encrypt OAuth tokens at rest when a key is configured
		var encryptor crypto.Encryptor
		if cfg.SessionEncryptionKey != "" {
			key, err := crypto.DecodeKeyBase64(cfg.SessionEncryptionKey)
			if err != nil {
				return fmt.Errorf("invalid SESSION_ENCRYPTION_KEY: %w", err)
			}
			if encryptor, err = crypto.NewAESEncryptor(key); err != nil {
				return fmt.Errorf("encryptor initialization failed: %w", err)
			}
			logger.Info("Session token encryption enabled")
		}

		pgStore := session.NewPostgresStore(pool, session.DefaultTTL, encryptor)
		sessionStore = pgStore

		cleanup := jobs.NewSessionCleanup(pgStore, jobs.DefaultCleanupInterval, logger)
		go cleanup.Start()
		defer cleanup.Stop()
	default:
		memStore := session.NewMemoryStore(session.DefaultTTL)
		defer memStore.Close()
		sessionStore = memStore
	}
	logger.Info("Session store initialized", "store", cfg.SessionStore)

	// Google OAuth client
	google := oauth.NewGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)

	// Mail transport
	var transport mail.Transport
	switch cfg.MailTransport {
	case "smtp":
		transport = mail.NewSMTPTransport(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     int(cfg.SMTP.Port),
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		}, logger)
	default:
		transport = mail.NewGmailTransport(google.Config())
	}
	logger.Info("Mail transport initialized", "transport", cfg.MailTransport)

	// Dispatch event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NatsURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NatsURL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info("NATS publisher initialized", "url", cfg.NatsURL)
	}

	// Metrics
	metrics := middleware.NewMetrics("coldsend")
	dispatchMetrics := dispatch.NewMetrics("coldsend")

	// Dispatch service
	dispatchService := dispatch.NewService(publisher, dispatchMetrics, logger)

	// Rate limiters
	defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer defaultRateLimiter.Stop()

	sendRateLimiter := middleware.NewRateLimiter(middleware.SendRateLimiterConfig(cfg.SendRatePerHour))
	defer sendRateLimiter.Stop()

	// Handlers
	cookies := cookie.NewConfig(cfg.IsProd())
	authHandler := handler.NewAuthHandler(google, sessionStore, cookies, cfg.FrontendURL, logger)
	userHandler := handler.NewUserHandler()
	sendHandler := handler.NewSendHandler(dispatchService, transport, google, sessionStore, cookies, logger)

	// Router
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig()),
		router.CORS(cfg.AllowedOrigins),
		defaultRateLimiter.Middleware,
		router.Logger(logger),
		middleware.WithSession(sessionStore),
		middleware.WithRequestLogger(logger),
	)

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.Register(r, routes.Deps{
		Auth:            authHandler,
		User:            userHandler,
		Send:            sendHandler,
		SendRateLimiter: sendRateLimiter,
		StaticDir:       cfg.StaticDir,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr, "env", cfg.Env)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
