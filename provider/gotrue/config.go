package gotrue

import (
	"context"
	"net/http"
	"strings"
	"time"

	portalauth "github.com/lexvia/go-portal-auth"
)

// TokenSource yields the bearer token the transport layer associates with the
// current visitor (a cookie, typically). CurrentSession uses it to ask the
// backend for its view of the session independent of the credential store.
type TokenSource func(ctx context.Context) (string, bool)

// Config holds the backend connection settings.
type Config struct {
	// BaseURL is the identity API root (e.g. "https://id.example.com/auth/v1").
	BaseURL string

	// APIKey is the public API key sent with every request.
	APIKey string

	// Timeout bounds each backend call. Calls that outlive it resolve to a
	// failure outcome instead of hanging a guard in checking.
	// Default: 10 seconds.
	Timeout time.Duration

	// HTTPClient overrides the transport (optional).
	HTTPClient *http.Client

	// TokenSource provides the visitor's bearer token for CurrentSession
	// (optional). Without one, CurrentSession reports no session.
	TokenSource TokenSource

	// Logger overrides the default logger (optional).
	Logger portalauth.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(baseURL, apiKey string) Config {
	return Config{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIKey:  apiKey,
		Timeout: 10 * time.Second,
	}
}

func (c Config) baseURL() string {
	return strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 10 * time.Second
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.timeout()}
}
