package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/LooWze/LooWzeIA/internal/metrics"
	"github.com/LooWze/LooWzeIA/internal/models"
)

const topCardsLimit = 5

// CollectionService stores confirmed cards and computes per-user statistics.
type CollectionService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCollectionService(db *gorm.DB, logger *slog.Logger) *CollectionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionService{db: db, logger: logger}
}

// Confirm records a card the user picked from the suggestions or typed in.
func (s *CollectionService) Confirm(ctx context.Context, userID uint, req models.ConfirmCardRequest) (*models.OwnedCard, error) {
	card := models.OwnedCard{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		SetName: strings.TrimSpace(req.SetName),
		Number:  strings.TrimSpace(req.Number),
		Rarity:  strings.TrimSpace(req.Rarity),
		Finish:  models.NormalizeFinish(req.Finish),
	}
	if req.Price != nil {
		card.Price = *req.Price
	}
	if img := strings.TrimSpace(req.Image); img != "" {
		card.Image = &img
	}

	if err := s.db.WithContext(ctx).Create(&card).Error; err != nil {
		return nil, fmt.Errorf("save card: %w", err)
	}

	s.logger.Info("card confirmed", "user_id", userID, "name", card.Name, "finish", card.Finish)
	s.refreshGauges(ctx)
	return &card, nil
}

// List returns the user's cards matching every set filter field, in the order
// they were added.
func (s *CollectionService) List(ctx context.Context, userID uint, filter models.CollectionFilter) ([]models.OwnedCard, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.SetName != "" {
		query = query.Where("set_name = ?", filter.SetName)
	}
	if filter.Rarity != "" {
		query = query.Where("rarity = ?", filter.Rarity)
	}
	if filter.Finish != "" {
		query = query.Where("finish = ?", models.NormalizeFinish(filter.Finish))
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	cards := []models.OwnedCard{}
	if err := query.Order("id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// Value sums the recorded prices of the user's cards.
func (s *CollectionService) Value(ctx context.Context, userID uint) (*models.CollectionValue, error) {
	var total float64
	err := s.db.WithContext(ctx).Model(&models.OwnedCard{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(price), 0)").
		Scan(&total).Error
	if err != nil {
		return nil, fmt.Errorf("sum collection value: %w", err)
	}
	return &models.CollectionValue{TotalValue: total}, nil
}

type collectionAggregate struct {
	Count    int
	AvgPrice float64
	MaxPrice float64
	MinPrice float64
}

// Stats summarizes the user's collection. MostExpensive is nil and Top5 is
// empty for an empty collection.
func (s *CollectionService) Stats(ctx context.Context, userID uint) (*models.CollectionStats, error) {
	var agg collectionAggregate
	err := s.db.WithContext(ctx).Model(&models.OwnedCard{}).
		Where("user_id = ?", userID).
		Select("COUNT(*) AS count, COALESCE(AVG(price), 0) AS avg_price, COALESCE(MAX(price), 0) AS max_price, COALESCE(MIN(price), 0) AS min_price").
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate collection: %w", err)
	}

	var top []models.OwnedCard
	err = s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("price DESC").Order("id").
		Limit(topCardsLimit).
		Find(&top).Error
	if err != nil {
		return nil, fmt.Errorf("top cards: %w", err)
	}

	stats := &models.CollectionStats{
		Count:    agg.Count,
		AvgPrice: agg.AvgPrice,
		MaxPrice: agg.MaxPrice,
		MinPrice: agg.MinPrice,
		Top5:     make([]models.CollectionCardSummary, 0, len(top)),
	}
	for _, card := range top {
		stats.Top5 = append(stats.Top5, summarize(card))
	}
	if len(stats.Top5) > 0 {
		most := stats.Top5[0]
		stats.MostExpensive = &most
	}

	var finishes []finishCount
	err = s.db.WithContext(ctx).Model(&models.OwnedCard{}).
		Where("user_id = ?", userID).
		Select("finish, COUNT(*) AS count").
		Group("finish").
		Scan(&finishes).Error
	if err != nil {
		return nil, fmt.Errorf("count finishes: %w", err)
	}

	stats.ByFinish = make(map[models.Finish]int, len(finishes))
	for _, f := range models.AllFinishes() {
		stats.ByFinish[f] = 0
	}
	for _, fc := range finishes {
		stats.ByFinish[fc.Finish] += fc.Count
		if fc.Finish.IsFoilVariant() {
			stats.FoilCount += fc.Count
		}
	}
	return stats, nil
}

type finishCount struct {
	Finish models.Finish
	Count  int
}

func summarize(card models.OwnedCard) models.CollectionCardSummary {
	return models.CollectionCardSummary{
		Name:   card.Name,
		Set:    card.SetName,
		Price:  card.Price,
		Finish: card.Finish,
	}
}

// refreshGauges updates the service-wide collection gauges.
func (s *CollectionService) refreshGauges(ctx context.Context) {
	var totals struct {
		Count int64
		Value float64
	}
	err := s.db.WithContext(ctx).Model(&models.OwnedCard{}).
		Select("COUNT(*) AS count, COALESCE(SUM(price), 0) AS value").
		Scan(&totals).Error
	if err != nil {
		s.logger.Warn("failed to refresh collection metrics", "error", err)
		return
	}
	metrics.CollectionCardsTotal.Set(float64(totals.Count))
	metrics.CollectionValueEUR.Set(totals.Value)
}

// RefreshMetrics loads the collection gauges, e.g. at startup.
func (s *CollectionService) RefreshMetrics(ctx context.Context) {
	s.refreshGauges(ctx)
}
