package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"coffee-with-me/internal/adapters/auth/jwtauth"
	pg "coffee-with-me/internal/adapters/storage/postgres"
	"coffee-with-me/internal/config"
	"coffee-with-me/internal/platform/logger"
	"coffee-with-me/internal/router"
)

// @title Coffee With Me API
// @version 1.0
// @description Amistades, coffee breaks y notificaciones entre estudiantes.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env es opcional; en prod las variables vienen del entorno.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("invalid config", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(ctx, cfg.DBDSN)
		if err != nil {
			log.Error("postgres unavailable", map[string]any{"error": err})
			os.Exit(1)
		}
		defer db.Close()

		if cfg.DBAutoMigrate {
			if err := pg.Migrate(ctx, db); err != nil {
				log.Error("migrations failed", map[string]any{"error": err})
				os.Exit(1)
			}
		}
	}

	var rdb redis.UniversalClient
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Error("redis unavailable", map[string]any{"error": err, "addr": cfg.RedisAddr})
			os.Exit(1)
		}
		defer rdb.Close()
	}

	jwt, err := jwtauth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		log.Error("jwt setup failed", map[string]any{"error": err})
		os.Exit(1)
	}

	app := router.NewRouter(router.Options{
		AuthVerifier:   jwt,
		TokenIssuer:    jwt,
		AuthDevMode:    cfg.AuthDevMode,
		DB:             db,
		Redis:          rdb,
		WebhookURL:     cfg.WebhookURL,
		WebhookTimeout: cfg.WebhookTimeout,
		Dispatch:       cfg.Dispatch,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     app,
		ReadTimeout: 5 * time.Second,
		// sin WriteTimeout: /api/notifications/stream es de larga duración
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"config": cfg.String()})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": err})
		}
	case <-ctx.Done():
		log.Info("shutting down", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", map[string]any{"error": err})
	}
	if err := app.Close(shutdownCtx); err != nil {
		log.Warn("notifications shutdown", map[string]any{"error": err})
	}
}
