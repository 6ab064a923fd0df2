// Package polymarket provides the REST client for the Polymarket Gamma
// API, which supplies market discovery and pricing for the analysis loop.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// GammaClient fetches active markets from the Gamma API and converts them
// to domain snapshots. It implements domain.SnapshotProvider.
type GammaClient struct {
	baseURL    string
	fetchLimit int
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

var _ domain.SnapshotProvider = (*GammaClient)(nil)

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
// fetchLimit caps how many markets a single Snapshots call requests.
func NewGammaClient(baseURL string, fetchLimit int, timeout time.Duration, logger *slog.Logger) *GammaClient {
	if fetchLimit <= 0 {
		fetchLimit = 500
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GammaClient{
		baseURL:    baseURL,
		fetchLimit: fetchLimit,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "gamma")),
		now:        time.Now,
	}
}

// Snapshots fetches active, open markets and converts them to snapshots.
// Markets that fail to parse are skipped individually; a malformed entry
// in the feed must not sink the whole batch.
func (g *GammaClient) Snapshots(ctx context.Context) ([]domain.MarketSnapshot, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(g.fetchLimit))
	params.Set("active", "true")
	params.Set("closed", "false")

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: get markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	now := g.now().UTC()
	snapshots := make([]domain.MarketSnapshot, 0, len(apiMarkets))
	for i := range apiMarkets {
		snap, err := apiMarkets[i].ToSnapshot(now)
		if err != nil {
			g.logger.DebugContext(ctx, "skipping market",
				slog.String("market_id", apiMarkets[i].ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		snapshots = append(snapshots, snap)
	}

	g.logger.InfoContext(ctx, "markets fetched",
		slog.Int("received", len(apiMarkets)),
		slog.Int("usable", len(snapshots)),
	)

	return snapshots, nil
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
