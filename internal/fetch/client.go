package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/ikkim/retail-etl/internal/errors"
	"github.com/ikkim/retail-etl/pkg/logger"
)

// Client fetches cart and user collections from the order API.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new order API client with the given configuration.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// GetCarts fetches the carts collection.
func (c *Client) GetCarts(ctx context.Context) (*CartsPayload, error) {
	body, err := c.doRequest(ctx, "carts")
	if err != nil {
		return nil, err
	}

	var payload CartsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal carts response: %w", err)
	}

	return &payload, nil
}

// GetUsers fetches the users collection.
func (c *Client) GetUsers(ctx context.Context) (*UsersPayload, error) {
	body, err := c.doRequest(ctx, "users")
	if err != nil {
		return nil, err
	}

	var payload UsersPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal users response: %w", err)
	}

	return &payload, nil
}

// doRequest performs a GET against one collection endpoint.
func (c *Client) doRequest(ctx context.Context, collection string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s?limit=%d&skip=%d", c.config.BaseURL, collection, c.config.Limit, c.config.Skip)

	logger.Debug("Fetching collection from order API", map[string]interface{}{
		"url": url,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", apperrors.ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d for %s", apperrors.ErrTransport, resp.StatusCode, collection)
	}

	return body, nil
}
