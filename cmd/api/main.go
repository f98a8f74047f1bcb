package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/cineapp/catalog-api/docs" // swagger docs
	"github.com/cineapp/catalog-api/internal/api"
	"github.com/cineapp/catalog-api/internal/infrastructure/config"
	mongodb "github.com/cineapp/catalog-api/internal/infrastructure/db/mongo"
	redisdb "github.com/cineapp/catalog-api/internal/infrastructure/db/redis"
	"github.com/cineapp/catalog-api/internal/infrastructure/email"
	"github.com/cineapp/catalog-api/internal/infrastructure/omdb"
	"github.com/cineapp/catalog-api/internal/infrastructure/queue"
	"github.com/cineapp/catalog-api/pkg/logger"
)

// @title        CineApp Catalog API
// @version      1.0
// @description  Movie catalog backend with accounts, viewing profiles, and watchlists.
// @BasePath     /api
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("configuration failed")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.Production(),
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes failed")
	}
	if err := mongodb.NewProfileRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("profile indexes failed")
	}
	if err := mongodb.NewMovieRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("movie indexes failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	// --- Outbound mail, delivered asynchronously ---
	sesMailer, err := email.NewSESMailer(ctx, email.Config{
		Region:    cfg.SES.Region,
		FromEmail: cfg.SES.FromEmail,
		FromName:  cfg.SES.FromName,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("mailer setup failed")
	}
	mailer := queue.NewMailDispatcher(0, sesMailer, log)
	mailer.Start(ctx)

	// --- External movie source ---
	source := omdb.NewClient(cfg.OMDB.BaseURL, cfg.OMDB.APIKey, log)

	e := api.NewRouter(db, rdb, mailer, source, api.RouterConfig{
		JWTSecret:    cfg.JWTSecret,
		FrontendURL:  cfg.FrontendURL,
		SecureCookie: cfg.Production(),
	}, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
		os.Exit(1)
	}
}
