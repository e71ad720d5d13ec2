package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/LooWze/LooWzeIA/internal/metrics"
	"github.com/LooWze/LooWzeIA/internal/models"
)

const (
	pokemonTCGBaseURL = "https://api.pokemontcg.io/v2"

	// DefaultCatalogTimeout bounds a single catalog lookup, including any wait
	// for the rate limiter.
	DefaultCatalogTimeout = 5 * time.Second
)

// CatalogSearcher looks up candidate cards for a catalog query.
// Search never fails: problems are reported through the returned outcome.
type CatalogSearcher interface {
	Search(ctx context.Context, query string) CatalogResult
}

// CatalogResult is the tagged outcome of one catalog lookup.
// Cards is never nil.
type CatalogResult struct {
	Cards   []models.CandidateCard
	Outcome models.Outcome
	Err     error
}

// PokemonTCGOptions configures the Pokemon TCG API client.
type PokemonTCGOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond paces outgoing requests; zero disables pacing.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// PokemonTCGService queries the pokemontcg.io card search API.
type PokemonTCGService struct {
	client  *http.Client
	apiKey  string
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewPokemonTCGService(opts PokemonTCGOptions) *PokemonTCGService {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = pokemonTCGBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultCatalogTimeout
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PokemonTCGService{
		client:  &http.Client{Timeout: timeout},
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

type pokemonSearchResponse struct {
	Data       []pokemonCard `json:"data"`
	TotalCount int           `json:"totalCount"`
}

type pokemonCard struct {
	Set        *pokemonSet        `json:"set"`
	Images     *pokemonImages     `json:"images"`
	Cardmarket *pokemonCardmarket `json:"cardmarket"`
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Number     string             `json:"number"`
	Rarity     string             `json:"rarity"`
}

type pokemonSet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type pokemonImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

// Prices stay raw so one null or malformed entry cannot sink the whole page.
type pokemonCardmarket struct {
	URL       string                     `json:"url"`
	UpdatedAt string                     `json:"updatedAt"`
	Prices    map[string]json.RawMessage `json:"prices"`
}

// Search runs a single lookup and folds every failure into the result.
func (s *PokemonTCGService) Search(ctx context.Context, query string) CatalogResult {
	start := time.Now()
	cards, err := s.SearchCards(ctx, query)
	metrics.CatalogRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(string(models.OutcomeUpstreamFailure)).Inc()
		s.logger.Warn("catalog search failed", "query", query, "error", err)
		return CatalogResult{
			Cards:   []models.CandidateCard{},
			Outcome: models.OutcomeUpstreamFailure,
			Err:     err,
		}
	}

	outcome := models.OutcomeExtracted
	if len(cards) == 0 {
		outcome = models.OutcomeNotFound
	}
	metrics.CatalogRequestsTotal.WithLabelValues(string(outcome)).Inc()
	s.logger.Debug("catalog search", "query", query, "results", len(cards))
	return CatalogResult{Cards: cards, Outcome: outcome}
}

// SearchCards passes query through as the `q` search expression and returns
// at most models.MaxSuggestions cards in the order the API ranked them.
func (s *PokemonTCGService) SearchCards(ctx context.Context, query string) ([]models.CandidateCard, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("catalog rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(models.MaxSuggestions))
	reqURL := fmt.Sprintf("%s/cards?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search pokemon tcg: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pokemon tcg API returned status %d", resp.StatusCode)
	}

	var searchResp pokemonSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode pokemon tcg response: %w", err)
	}

	data := searchResp.Data
	if len(data) > models.MaxSuggestions {
		data = data[:models.MaxSuggestions]
	}

	cards := make([]models.CandidateCard, len(data))
	for i, pc := range data {
		cards[i] = convertToCandidate(pc)
	}
	return cards, nil
}

func convertToCandidate(pc pokemonCard) models.CandidateCard {
	card := models.CandidateCard{
		ID:     pc.ID,
		Name:   pc.Name,
		Number: optional(pc.Number),
		Rarity: optional(pc.Rarity),
		Prices: map[string]*float64{},
	}
	if pc.Set != nil {
		card.Set = optional(pc.Set.Name)
	}
	if pc.Images != nil {
		card.Image = optional(pc.Images.Small)
	}
	if pc.Cardmarket != nil {
		for name, raw := range pc.Cardmarket.Prices {
			card.Prices[name] = priceValue(raw)
		}
	}
	return card
}

// priceValue decodes one price entry. Null and non-numeric values are absent.
func priceValue(raw json.RawMessage) *float64 {
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
