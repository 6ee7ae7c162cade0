package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wavefeed/wavefeed-be/internal/api"
	"github.com/wavefeed/wavefeed-be/internal/auth"
	"github.com/wavefeed/wavefeed-be/internal/config"
	"github.com/wavefeed/wavefeed-be/internal/database"
	"github.com/wavefeed/wavefeed-be/internal/logger"
	"github.com/wavefeed/wavefeed-be/internal/maintenance"
	"github.com/wavefeed/wavefeed-be/internal/services"
	"github.com/wavefeed/wavefeed-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration. A missing signing secret is fatal; the server
	// must never mint unverifiable tokens.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the token issuer
	tokens := auth.NewTokenIssuer(cfg.JWTSecret)

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db)
	activityService := services.NewActivityService(db)
	postService := services.NewPostService(db, activityService, hub)

	// Set up and start the activity log pruner
	pruner := maintenance.NewPruner(activityService, cfg.ActivityRetentionDays)
	if err := pruner.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start activity pruner")
	}

	// Set up router
	router := api.NewRouter(tokens, hub, userService, postService, activityService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	pruner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
