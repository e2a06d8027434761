package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"audiostreamly-edge/internal/models"
)

// ErrNotFound signals that the queried document does not exist in the store.
var ErrNotFound = errors.New("store: not found")

// Client queries the metadata store's document functions over HTTP. The
// store exposes named query functions behind a single POST endpoint; this
// client only consumes the two the edge needs.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a client for the store reachable at the given base endpoint.
func New(endpoint string) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type queryRequest struct {
	Path   string      `json:"path"`
	Args   interface{} `json:"args"`
	Format string      `json:"format"`
}

type queryResponse struct {
	Status       string          `json:"status"`
	Value        json.RawMessage `json:"value"`
	ErrorMessage string          `json:"errorMessage"`
}

// PodcastBySlug resolves a podcast view by its public slug. The slug is
// passed through opaquely; the store decides what counts as malformed.
func (c *Client) PodcastBySlug(ctx context.Context, slug string) (models.Podcast, error) {
	value, err := c.query(ctx, "podcasts:getBySlug", map[string]string{"slug": slug})
	if err != nil {
		return models.Podcast{}, err
	}
	if isNull(value) {
		return models.Podcast{}, ErrNotFound
	}

	var podcast models.Podcast
	if err := json.Unmarshal(value, &podcast); err != nil {
		return models.Podcast{}, fmt.Errorf("decode podcast: %w", err)
	}
	return podcast, nil
}

// PublishedEpisodes returns the published episode views for a podcast. The
// store serves them most-recent first, but callers must not rely on any
// particular order.
func (c *Client) PublishedEpisodes(ctx context.Context, podcastID string) ([]models.Episode, error) {
	value, err := c.query(ctx, "episodes:getPublished", map[string]string{"podcastId": podcastID})
	if err != nil {
		return nil, err
	}
	if isNull(value) {
		return nil, nil
	}

	var episodes []models.Episode
	if err := json.Unmarshal(value, &episodes); err != nil {
		return nil, fmt.Errorf("decode episodes: %w", err)
	}
	return episodes, nil
}

func (c *Client) query(ctx context.Context, path string, args interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(queryRequest{Path: path, Args: args, Format: "json"})
	if err != nil {
		return nil, fmt.Errorf("encode query %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/query", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build query %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query %s: unexpected status %d", path, resp.StatusCode)
	}

	var envelope queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode query %s response: %w", path, err)
	}
	if envelope.Status != "success" {
		return nil, fmt.Errorf("query %s failed: %s", path, envelope.ErrorMessage)
	}
	return envelope.Value, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
