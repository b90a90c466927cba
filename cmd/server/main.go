package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prephub/internal/config"
	"prephub/internal/httpserver"
	"prephub/internal/security"
	"prephub/internal/store/postgres"
	"prephub/internal/store/sqlite"
)

// @title           PrepHub API
// @version         1.0
// @description     Study-group backend: practice-sheet tracking, presence, chat, and chapter voting.

// @host            localhost:8000
// @BasePath        /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	var db *sql.DB
	var repos httpserver.Repos
	switch cfg.DBDriver {
	case "sqlite":
		db, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		if err := sqlite.Migrate(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		repos = httpserver.Repos{
			Users:           sqlite.NewUserRepo(db),
			Presence:        sqlite.NewPresenceRepo(db),
			Conversations:   sqlite.NewConversationRepo(db),
			ChatMessages:    sqlite.NewChatMessageRepo(db),
			Whispers:        sqlite.NewWhisperRepo(db),
			Recommendations: sqlite.NewRecommendationRepo(db),
			Chapters:        sqlite.NewChaptersConfigRepo(db),
			Sheets:          sqlite.NewSheetRepo(db),
		}
	default:
		db, err = postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		if err := postgres.Migrate(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		repos = httpserver.Repos{
			Users:           postgres.NewUserRepo(db),
			Presence:        postgres.NewPresenceRepo(db),
			Conversations:   postgres.NewConversationRepo(db),
			ChatMessages:    postgres.NewChatMessageRepo(db),
			Whispers:        postgres.NewWhisperRepo(db),
			Recommendations: postgres.NewRecommendationRepo(db),
			Chapters:        postgres.NewChaptersConfigRepo(db),
			Sheets:          postgres.NewSheetRepo(db),
		}
	}
	defer db.Close()

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(0)

	encryptor, err := security.NewEncryptor([]byte(cfg.EncryptKey))
	if err != nil {
		log.Fatalf("failed to initialize encryptor: %v", err)
	}

	// Build HTTP router
	router := httpserver.NewRouter(cfg, repos, tokenSvc, passwordHasher, encryptor)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Starting %s (%s, %s) on %s\n", cfg.AppName, cfg.Env, cfg.DBDriver, cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
