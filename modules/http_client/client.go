// Package http_client owns the pooled HTTP client used by the remote
// operations and registers fetch_image, which reads an image over HTTP.
package http_client

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds a request whose node sets no timeout of its own.
const DefaultTimeout = 30 * time.Second

// Client is shared by every remote operation so connections are reused
// across nodes and runs.
var Client = NewClient(DefaultTimeout)

// NewClient returns a client with a pooled transport.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// ParseTimeout parses an optional duration parameter. Empty means zero.
func ParseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", s)
	}
	return d, nil
}
