// Command server runs the back-office HTTP API.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	app "github.com/shopops/backoffice/internal/app"
	"github.com/shopops/backoffice/internal/app/httpapi"
	"github.com/shopops/backoffice/internal/app/services/auth"
	"github.com/shopops/backoffice/internal/app/storage/postgres"
	"github.com/shopops/backoffice/internal/config"
	"github.com/shopops/backoffice/internal/metrics"
	"github.com/shopops/backoffice/internal/middleware"
	"github.com/shopops/backoffice/pkg/logger"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		envFile    = flag.String("env", ".env", "Path to an optional .env file")
	)
	flag.Parse()

	// A missing .env is normal outside local development.
	_ = godotenv.Load(*envFile)

	log := logger.NewDefault("server")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}
	log = logger.New("server", cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.WithError(err).Fatal("ping database")
	}
	if err := postgres.Migrate(db); err != nil {
		log.WithError(err).Fatal("run migrations")
	}

	store := postgres.New(db)
	stores := app.Stores{
		Catalog:     store,
		Inventory:   store,
		Sales:       store,
		Bank:        store,
		Expenses:    store,
		Tasks:       store,
		Attachments: store,
		Users:       store,
	}

	application := app.New(stores, app.Options{
		UploadDir: cfg.Uploads.Dir,
		Auth: auth.Config{
			Secret:     cfg.Auth.SessionSecret,
			SessionTTL: cfg.Auth.SessionTTL,
			OIDC: auth.OIDCConfig{
				ClientID:     cfg.Auth.OIDCClientID,
				ClientSecret: cfg.Auth.OIDCClientSecret,
				AuthorizeURL: cfg.Auth.OIDCAuthorizeURL,
				TokenURL:     cfg.Auth.OIDCTokenURL,
				UserInfoURL:  cfg.Auth.OIDCUserInfoURL,
				RedirectURL:  cfg.Auth.OIDCRedirectURL,
				Provider:     cfg.Auth.OIDCProvider,
			},
		},
	}, log)

	m := metrics.New("backoffice")

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	handler := httpapi.New(application, cfg.Server.Production(), log)
	handler.Register(router)

	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.MetricsMiddleware(m))

	session := middleware.NewSessionMiddleware(application.Auth, log, append(
		httpapi.SkipAuthPaths(), "/health", "/metrics",
	))
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	rateLimiter.StartCleanup(10 * time.Minute)
	cors := middleware.NewCORSMiddleware(cfg.Server.AllowedOrigins)

	chain := cors.Handler(session.Handler(rateLimiter.Handler(router)))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      chain,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Expired sessions are swept in the background.
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if err := application.Auth.PruneSessions(sweepCtx); err != nil {
					log.WithError(err).Warn("prune sessions")
				}
			}
		}
	}()

	go func() {
		log.WithField("addr", server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
