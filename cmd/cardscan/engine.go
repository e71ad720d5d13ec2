package main

import (
	"fmt"
	"log/slog"

	"github.com/LooWze/LooWzeIA/internal/config"
	"github.com/LooWze/LooWzeIA/internal/ocr"
	"github.com/LooWze/LooWzeIA/internal/ocr/tesseract"
	"github.com/LooWze/LooWzeIA/internal/services"
)

// newOCREngine builds the configured engine. The returned cleanup releases it.
func newOCREngine(cfg *config.Config, logger *slog.Logger) (ocr.Engine, func(), error) {
	switch cfg.OCR.Engine {
	case config.EngineGosseract:
		engine := tesseract.New()
		logger.Info("OCR engine ready", "engine", engine.Name(), "languages", cfg.OCR.Languages)
		return engine, func() {
			if err := engine.Close(); err != nil {
				logger.Warn("failed to close OCR engine", "error", err)
			}
		}, nil
	case config.EngineCLI:
		engine := ocr.NewCLIEngine(cfg.OCR.TesseractPath)
		if !engine.IsAvailable() {
			logger.Warn("tesseract binary not found; scans will return no text", "path", cfg.OCR.TesseractPath)
		} else {
			logger.Info("OCR engine ready", "engine", engine.Name(), "languages", cfg.OCR.Languages)
		}
		return engine, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported OCR engine %q", cfg.OCR.Engine)
	}
}

func newCatalog(cfg *config.Config, logger *slog.Logger) *services.PokemonTCGService {
	if cfg.Catalog.APIKey == "" {
		logger.Info("POKEMON_TCG_API_KEY not set; using the unauthenticated rate limit")
	}
	return services.NewPokemonTCGService(services.PokemonTCGOptions{
		APIKey:            cfg.Catalog.APIKey,
		BaseURL:           cfg.Catalog.BaseURL,
		Timeout:           cfg.CatalogTimeout(),
		RequestsPerSecond: cfg.Catalog.RateLimit,
		Logger:            logger,
	})
}
