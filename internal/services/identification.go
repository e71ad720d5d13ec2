package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/LooWze/LooWzeIA/internal/metrics"
	"github.com/LooWze/LooWzeIA/internal/models"
	"github.com/LooWze/LooWzeIA/internal/ocr"
)

// CardIdentifier runs the scan pipeline: store both faces, read the front,
// extract identifiers, and look them up in the catalog.
type CardIdentifier struct {
	engine    ocr.Engine
	languages []string
	detector  *LanguageDetector
	catalog   CatalogSearcher
	store     ImageStore
	logger    *slog.Logger
}

// NewCardIdentifier wires the pipeline. A nil engine skips OCR entirely.
// Language detection is limited to the OCR languages. A CardIdentifier is
// safe for concurrent use when its engine, catalog and store are.
func NewCardIdentifier(engine ocr.Engine, languages []string, catalog CatalogSearcher, store ImageStore, logger *slog.Logger) *CardIdentifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardIdentifier{
		engine:    engine,
		languages: languages,
		detector:  NewLanguageDetector(languages),
		catalog:   catalog,
		store:     store,
		logger:    logger,
	}
}

// Identify processes one scan. Only a storage failure is returned as an
// error; every later stage degrades to empty values and is reported through
// the result's diagnostics.
//
// The back face is stored for the record but never read.
func (c *CardIdentifier) Identify(ctx context.Context, userID uint, front, back ImageUpload) (*models.DetectionResult, error) {
	images, err := c.store.StoreScan(ctx, userID, front, back)
	if err != nil {
		metrics.IdentificationsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	result := &models.DetectionResult{
		Language:    models.LanguageUnknown,
		Suggestions: []models.CandidateCard{},
		Status:      models.StatusPendingConfirmation,
		Images:      images,
	}
	diag := &result.Diagnostics

	rawText, ocrStage := c.readFront(ctx, front.Data)
	result.RawText = rawText
	diag.OCR = ocrStage

	if rawText == "" {
		skipped := models.StageResult{Outcome: models.OutcomeSkipped}
		diag.Language, diag.Name, diag.Number, diag.Query, diag.Catalog = skipped, skipped, skipped, skipped, skipped
		c.finish(result)
		return result, nil
	}

	if lang, ok := c.detector.Detect(rawText); ok {
		result.Language = lang
		diag.Language = models.StageResult{Outcome: models.OutcomeExtracted}
	} else {
		diag.Language = models.StageResult{Outcome: models.OutcomeNotFound}
	}

	ids := ExtractIdentifiers(rawText)
	diag.Name = presence(ids.HasName())
	diag.Number = presence(ids.HasNumber())
	if ids.HasName() {
		result.PokemonName = &ids.Name
	}
	if ids.HasNumber() {
		result.CardNumber = &ids.Number
	}

	query, err := BuildCatalogQuery(ids)
	if errors.Is(err, ErrNoQuery) {
		diag.Query = models.StageResult{Outcome: models.OutcomeNotFound}
		diag.Catalog = models.StageResult{Outcome: models.OutcomeSkipped}
		c.finish(result)
		return result, nil
	}
	result.Query = query
	diag.Query = models.StageResult{Outcome: models.OutcomeExtracted}

	found := c.catalog.Search(ctx, query)
	result.Suggestions = found.Cards
	if result.Suggestions == nil {
		result.Suggestions = []models.CandidateCard{}
	}
	diag.Catalog = models.StageResult{Outcome: found.Outcome}
	if found.Err != nil {
		diag.Catalog.Detail = found.Err.Error()
	}

	c.finish(result)
	return result, nil
}

// readFront returns the front face text with fragments joined by single spaces.
func (c *CardIdentifier) readFront(ctx context.Context, image []byte) (string, models.StageResult) {
	if c.engine == nil {
		return "", models.StageResult{Outcome: models.OutcomeSkipped, Detail: "no OCR engine configured"}
	}

	start := time.Now()
	lines, err := c.engine.Recognize(ctx, image, c.languages)
	metrics.OCRProcessingDuration.WithLabelValues(c.engine.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("OCR failed", "engine", c.engine.Name(), "error", err)
		return "", models.StageResult{Outcome: models.OutcomeUpstreamFailure, Detail: err.Error()}
	}

	text := strings.Join(lines, " ")
	if text == "" {
		return "", models.StageResult{Outcome: models.OutcomeNotFound}
	}
	return text, models.StageResult{Outcome: models.OutcomeExtracted}
}

func (c *CardIdentifier) finish(result *models.DetectionResult) {
	d := result.Diagnostics
	for stage, r := range map[string]models.StageResult{
		"ocr":      d.OCR,
		"language": d.Language,
		"name":     d.Name,
		"number":   d.Number,
		"query":    d.Query,
		"catalog":  d.Catalog,
	} {
		metrics.StageOutcomesTotal.WithLabelValues(stage, string(r.Outcome)).Inc()
	}

	metrics.CatalogResultsCount.Observe(float64(len(result.Suggestions)))
	outcome := "suggested"
	if len(result.Suggestions) == 0 {
		outcome = "empty"
	}
	metrics.IdentificationsTotal.WithLabelValues(outcome).Inc()

	c.logger.Info("card identified",
		"front", result.Images.Front,
		"language", result.Language,
		"query", result.Query,
		"suggestions", len(result.Suggestions),
		"ocr", d.OCR.Outcome,
		"catalog", d.Catalog.Outcome,
	)
}

func presence(found bool) models.StageResult {
	if found {
		return models.StageResult{Outcome: models.OutcomeExtracted}
	}
	return models.StageResult{Outcome: models.OutcomeNotFound}
}
