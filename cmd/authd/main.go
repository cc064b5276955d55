package main

import (
	"context"
	"fmt"

	"github.com/avykov/multiauth/internal/auth"
	"github.com/avykov/multiauth/internal/config"
	handler "github.com/avykov/multiauth/internal/handler/http"
	"github.com/avykov/multiauth/internal/logger"
	"github.com/avykov/multiauth/internal/server"
	"github.com/avykov/multiauth/internal/session"
	"github.com/avykov/multiauth/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("authd")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	db, err := store.Open(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	stores := store.NewStores(db, cfg.Auth, log)

	var sessions session.Manager
	if cfg.Storage.Session.RedisURL != "" {
		redisStore, err := session.NewRedisStore(cfg.Storage.Session, log)
		if err != nil {
			log.Fatal().Err(err).Msg("error connecting session store")
		}
		defer redisStore.Close()
		sessions = redisStore
	} else {
		log.Warn().Msg("no redis URL configured, sessions are in-process only")
		sessions = session.NewMemoryStore()
	}

	hasher, err := auth.NewHasher(cfg.Auth.HashMethod)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating password hasher")
	}

	authenticator := auth.NewAuthenticator(
		auth.Config{
			SessionKey:    cfg.Auth.SessionKey,
			CookieName:    cfg.Auth.CookieName,
			TokenLifetime: cfg.Auth.TokenLifetime,
		},
		auth.NewRepositoryStrategy(stores.Users, log),
		stores.Users,
		stores.Tokens,
		hasher,
		log,
	)

	handlers := handler.NewHandler(authenticator, sessions, cfg.Storage.Session.TTL, log)

	srv, err := server.NewServer(handlers.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
