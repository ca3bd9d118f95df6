package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nahom-d/lookbook/internal/database"
	"github.com/nahom-d/lookbook/internal/handlers"
	"github.com/nahom-d/lookbook/internal/middleware"
	"github.com/nahom-d/lookbook/internal/services"
	"github.com/nahom-d/lookbook/pkg/helper"
	"github.com/nahom-d/lookbook/pkg/logging"
)

func main() {
	cfg, err := helper.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Setup(cfg.LogLevel)

	// Initialize the wardrobe graph store
	client, err := database.NewNeo4jClient(cfg.Neo4jConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Neo4j")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(ctx); err != nil {
			log.Error().Err(err).Msg("error closing Neo4j connection")
		}
	}()

	wardrobe := database.NewWardrobeStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := wardrobe.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure graph schema")
	}
	if err := wardrobe.RefreshAffinities(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to refresh item affinities")
	}

	status, err := wardrobe.GetStatus(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read graph status")
	}
	log.Info().
		Int("looks", status["looks"]).
		Int("items", status["items"]).
		Int("tags", status["tags"]).
		Msg("wardrobe graph ready")

	// Initialize services
	looks := database.NewNeo4jLookRepository(client)
	engine := services.NewSuggestionService(client)

	// Initialize API handlers
	apiHandler := handlers.NewAPIHandler(engine, looks, wardrobe, cfg.FallbackThreshold)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	apiHandler.SetupRoutes(router)

	// Create server with graceful shutdown
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.AppPort),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.AppPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	// Gracefully shutdown with a timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
