package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Payphone-Digital/midas/pkg/circuit"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.unsplash.com"

// Photo is the part of an Unsplash search result that is exposed to clients.
type Photo struct {
	ID             string            `json:"id"`
	URLs           map[string]string `json:"urls"`
	AltDescription *string           `json:"alt_description"`
	Description    *string           `json:"description"`
}

type searchResponse struct {
	Total   int     `json:"total"`
	Results []Photo `json:"results"`
}

type errorResponse struct {
	Errors []string `json:"errors"`
}

// Client searches photos through the Unsplash REST API. Failed calls are
// not retried.
type Client struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *zap.Logger
}

// NewClient builds a search client. A nil httpClient uses a plain
// http.Client.
func NewClient(baseURL, accessKey string, httpClient *http.Client, breaker *circuit.Breaker, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if breaker == nil {
		breaker = circuit.NewBreaker("unsplash", circuit.DefaultConfig(), logger)
	}
	return &Client{
		baseURL:    baseURL,
		accessKey:  accessKey,
		httpClient: httpClient,
		breaker:    breaker,
		logger:     logger.With(zap.String("operation", "unsplash_search")),
	}
}

// SearchPhotos returns the first page of relevant photos for query, with
// count results per page.
func (c *Client) SearchPhotos(ctx context.Context, query string, count int) ([]Photo, error) {
	var photos []Photo
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		photos, err = c.search(ctx, query, count)
		return err
	})
	if err != nil {
		c.logger.Error("Photo search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	return photos, nil
}

func (c *Client) search(ctx context.Context, query string, count int) ([]Photo, error) {
	u, err := url.Parse(c.baseURL + "/search/photos")
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("per_page", strconv.Itoa(count))
	q.Set("page", "1")
	q.Set("order_by", "relevant")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("Unsplash response",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && len(apiErr.Errors) > 0 {
			return nil, fmt.Errorf("unsplash responded %d: %s", resp.StatusCode, apiErr.Errors[0])
		}
		return nil, fmt.Errorf("unsplash responded %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Results == nil {
		result.Results = []Photo{}
	}
	return result.Results, nil
}
