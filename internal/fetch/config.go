package fetch

import (
	"errors"
	"time"
)

// Config holds the order API client configuration.
type Config struct {
	BaseURL string
	Limit   int
	Skip    int
	Timeout time.Duration
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL is required")
	}
	if c.Limit < 0 || c.Skip < 0 {
		return errors.New("limit and skip must be non-negative")
	}
	return nil
}
