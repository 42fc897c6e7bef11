package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/feiramap/feiramap/internal/config"
	domain "github.com/feiramap/feiramap/pkg/types"
)

// HTTPSource pulls offers from a remote catalog API. Requests are rate
// limited so a tight refresh schedule cannot hammer the upstream.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = c
	}
}

// NewHTTPSource creates a rate-limited HTTP catalog source.
func NewHTTPSource(cfg config.HTTPCatalogConfig, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch requests GET {base_url}/offers and decodes the offer list.
func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.Offer, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for catalog rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/offers", nil)
	if err != nil {
		return nil, fmt.Errorf("creating catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog offers: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var offers []domain.Offer
	if err := json.NewDecoder(resp.Body).Decode(&offers); err != nil {
		return nil, fmt.Errorf("decoding catalog response: %w", err)
	}
	return offers, nil
}

// Name identifies the source in logs.
func (s *HTTPSource) Name() string {
	return "http:" + s.baseURL
}
