// Package recsys provides the HTTP adapter to the external recommendation
// service. The ranking itself is opaque: the adapter sends the generation
// request and returns the ordered content IDs it gets back.
package recsys

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/reelworks/feedcache/pkg/cache"
)

// generateRequest is the wire request for one batch generation.
type generateRequest struct {
	OwnerID    string   `json:"owner_id,omitempty"`
	Limit      int      `json:"limit"`
	ExcludeIDs []string `json:"exclude_ids,omitempty"`
	Language   string   `json:"language"`
	Category   string   `json:"category,omitempty"`
}

// generateResponse is the wire response.
type generateResponse struct {
	ContentIDs []string `json:"content_ids"`
}

// Client calls the recommendation service over HTTP.
// It implements feed.RecommendationEngine.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// NewClient creates a recommendation service client.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("recommendation service URL is required")
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
		logger:  log.With().Str("component", "recsys-client").Logger(),
	}, nil
}

// Generate requests up to limit ranked content IDs for the owner. The
// response is ordered and may be shorter than limit; anything the service
// returns beyond limit is truncated.
func (c *Client) Generate(ctx context.Context, owner cache.Owner, limit int, excludeIDs []string, language, category string) ([]string, error) {
	reqBody := generateRequest{
		Limit:      limit,
		ExcludeIDs: excludeIDs,
		Language:   language,
		Category:   category,
	}
	if id, ok := owner.UserID(); ok {
		reqBody.OwnerID = id.String()
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/recommendations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommendation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("owner", owner.String()).
			Msg("Recommendation service error")
		return nil, fmt.Errorf("recommendation service status %d: %s", resp.StatusCode, body)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode generation response: %w", err)
	}

	ids := out.ContentIDs
	if len(ids) > limit {
		ids = ids[:limit]
	}

	c.logger.Debug().
		Str("owner", owner.String()).
		Int("requested", limit).
		Int("returned", len(ids)).
		Dur("duration", time.Since(start)).
		Msg("Generated recommendations")

	return ids, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
