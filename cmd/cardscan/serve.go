package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/LooWze/LooWzeIA/internal/api"
	"github.com/LooWze/LooWzeIA/internal/database"
	"github.com/LooWze/LooWzeIA/internal/services"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the card scan HTTP API",
		Example: `  # Start on the configured port (8080 by default)
  cardscan serve

  # Start on a custom port with the tesseract binary instead of libtesseract
  OCR_ENGINE=cli cardscan serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := a.cfg, a.logger
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if !cfg.IsDevelopment() {
				gin.SetMode(gin.ReleaseMode)
			}
			if cfg.UsesDevelopmentSecret() {
				logger.Warn("JWT_SECRET not set; signing tokens with the development secret")
			}

			// Initialize database
			db, err := database.Initialize(cfg.Database.Path, cfg.Logging.Level == "debug", logger)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			// Initialize services
			engine, closeEngine, err := newOCREngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closeEngine()

			storage, err := services.NewImageStorageService(cfg.Storage.UploadsDir, db)
			if err != nil {
				return err
			}
			auth, err := services.NewAuthService(db, cfg.Auth.JWTSecret, cfg.TokenTTL())
			if err != nil {
				return err
			}
			collection := services.NewCollectionService(db, logger)
			collection.RefreshMetrics(cmd.Context())

			identifier := services.NewCardIdentifier(engine, cfg.OCR.Languages, newCatalog(cfg, logger), storage, logger)

			// Setup router
			router := api.SetupRouter(api.Dependencies{
				Identifier:   identifier,
				Auth:         auth,
				Collection:   collection,
				ImageStorage: storage,
				CORSOrigins:  cfg.Server.CORSAllowedOrigins,
				Logger:       logger,
			})

			// Create HTTP server for graceful shutdown
			srv := &http.Server{
				Addr:              cfg.Addr(),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("starting server", "addr", srv.Addr, "engine", engine.Name())
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for interrupt signal or server error
			select {
			case <-cmd.Context().Done():
			case err := <-serverErr:
				return err
			}
			logger.Info("shutting down server")

			// Give outstanding requests a deadline to complete
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server forced to shutdown", "error", err)
				return err
			}

			logger.Info("server exited")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config)")

	return cmd
}
