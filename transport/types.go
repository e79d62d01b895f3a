package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Barikoi v2 API root.
	DefaultBaseURL = "https://barikoi.xyz/v2/api"
	DefaultTimeout = 60 * time.Second
)

// Endpoint describes one remote operation.
type Endpoint struct {
	// Name is a stable label for logs and metrics, e.g. "route.overview".
	Name string
	// Path is appended to the base URL, keeping the base path.
	Path string
	// Host optionally replaces the client's base URL for this endpoint only.
	Host string
}

// Cache stores successful GET bodies.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// Observer is notified once per round trip. status is 0 when the request
// never produced a response.
type Observer interface {
	ObserveRequest(endpoint, method string, status int, duration time.Duration)
}

type ClientOptions struct {
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
	// Limiter, when set, is waited on before every request.
	Limiter   *rate.Limiter
	Cache     Cache
	CacheTTL  time.Duration
	Observer  Observer
	UserAgent string
}

func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:   DefaultTimeout,
		CacheTTL:  24 * time.Hour,
		UserAgent: "barikoi-go",
	}
}

// keyPlacement is where the API key travels for a given call shape.
type keyPlacement int

const (
	keyInQuery keyPlacement = iota
	keyInForm
	keyInJSONQuery
	keyInJSONBody
)

type request struct {
	method    string
	endpoint  Endpoint
	query     Params
	form      Params
	json      any
	key       keyPlacement
	cacheable bool
}
