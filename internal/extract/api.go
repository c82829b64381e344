package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/salesinsight/dwhetl/internal/logging"
)

const apiRequestTimeout = 30 * time.Second

// APIClient holds the shared settings for REST source extraction.
type APIClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAPIClient creates an API client for the given base URL. The key is
// sent as the X-API-Key header when non-empty.
func NewAPIClient(baseURL, apiKey string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: apiRequestTimeout},
	}
}

func (c *APIClient) get(ctx context.Context, endpoint string, out any) error {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	logging.Debug().Str("url", url).Msg("Extracting from API")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api request failed for %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("api returned %d for %s: %s", resp.StatusCode, url, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode api response from %s: %w", url, err)
	}
	return nil
}

// APIExtractor reads one entity kind from a REST endpoint returning a JSON
// array.
type APIExtractor[T any] struct {
	client *APIClient
}

// NewAPIExtractor returns an extractor for entity type T using the shared
// client.
func NewAPIExtractor[T any](client *APIClient) APIExtractor[T] {
	return APIExtractor[T]{client: client}
}

// Extract fetches all records from the endpoint at source.
func (e APIExtractor[T]) Extract(ctx context.Context, source string) ([]T, error) {
	var out []T
	if err := e.client.get(ctx, source, &out); err != nil {
		return nil, err
	}

	logging.Info().
		Str("endpoint", source).
		Int("records", len(out)).
		Msg("API extraction complete")

	return out, nil
}
