// Package transport is the single chokepoint for every call to the Barikoi
// API: it attaches the API key, encodes parameters, sends the request and
// turns the reply into a normalized Result or a categorized error.
package transport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 32 << 20

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
	cache      Cache
	cacheTTL   time.Duration
	observer   Observer
	userAgent  string
}

// NewClient builds a client bound to one set of credentials. An empty
// baseURL falls back to DefaultBaseURL.
func NewClient(apiKey, baseURL string, options ...ClientOptions) *Client {
	opts := DefaultClientOptions()
	if len(options) > 0 {
		opts = options[0]
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		logger:     opts.Logger,
		limiter:    opts.Limiter,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		observer:   opts.Observer,
		userAgent:  opts.UserAgent,
	}
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// APIKey returns the key attached to every request.
func (c *Client) APIKey() string { return c.apiKey }

// Get issues a GET with the API key in the query string.
func (c *Client) Get(ctx context.Context, ep Endpoint, params Params) (*Result, error) {
	return c.do(ctx, request{method: http.MethodGet, endpoint: ep, query: params, key: keyInQuery})
}

// GetCached is Get backed by the configured Cache. Without a cache it
// behaves exactly like Get.
func (c *Client) GetCached(ctx context.Context, ep Endpoint, params Params) (*Result, error) {
	return c.do(ctx, request{method: http.MethodGet, endpoint: ep, query: params, key: keyInQuery, cacheable: true})
}

// Post sends a form-encoded body that carries the API key.
func (c *Client) Post(ctx context.Context, ep Endpoint, data Params) (*Result, error) {
	return c.do(ctx, request{method: http.MethodPost, endpoint: ep, form: data, key: keyInForm})
}

// PostJSON sends a JSON body with the API key in the query string as "key".
func (c *Client) PostJSON(ctx context.Context, ep Endpoint, query Params, body any) (*Result, error) {
	return c.do(ctx, request{method: http.MethodPost, endpoint: ep, query: query, json: body, key: keyInJSONQuery})
}

// PostJSONWithKeyInBody sends a JSON body with an "api_key" field added.
func (c *Client) PostJSONWithKeyInBody(ctx context.Context, ep Endpoint, body map[string]any) (*Result, error) {
	data := make(map[string]any, len(body)+1)
	for k, v := range body {
		data[k] = v
	}
	return c.do(ctx, request{method: http.MethodPost, endpoint: ep, json: data, key: keyInJSONBody})
}

// Delete issues a DELETE with the API key in the query string.
func (c *Client) Delete(ctx context.Context, ep Endpoint, params Params) (*Result, error) {
	return c.do(ctx, request{method: http.MethodDelete, endpoint: ep, query: params, key: keyInQuery})
}

func (c *Client) do(ctx context.Context, r request) (*Result, error) {
	query := r.query.clone()
	form := r.form.clone()
	switch r.key {
	case keyInQuery:
		query["api_key"] = c.apiKey
	case keyInForm:
		form["api_key"] = c.apiKey
	case keyInJSONQuery:
		query["key"] = c.apiKey
	case keyInJSONBody:
		if body, ok := r.json.(map[string]any); ok {
			body["api_key"] = c.apiKey
		}
	}

	base := c.baseURL
	if r.endpoint.Host != "" {
		base = r.endpoint.Host
	}
	reqURL, err := joinURL(base, r.endpoint.Path, query)
	if err != nil {
		return nil, err
	}

	var cacheKey string
	if r.cacheable && c.cache != nil {
		cacheKey = responseCacheKey(r.method, reqURL)
		body, ok, err := c.cache.Get(ctx, cacheKey)
		if err != nil {
			c.logger.Warn("barikoi cache read failed", "endpoint", r.endpoint.Name, "error", err)
		} else if ok {
			c.logger.Debug("barikoi cache hit", "endpoint", r.endpoint.Name)
			return NewResult(http.StatusOK, body), nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}

	req, err := c.buildRequest(ctx, r, reqURL, form)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.Debug("barikoi request",
		"endpoint", r.endpoint.Name,
		"method", r.method,
		"url", RedactKey(reqURL),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(r, 0, time.Since(start))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	duration := time.Since(start)
	c.observe(r, resp.StatusCode, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("barikoi response",
		"endpoint", r.endpoint.Name,
		"method", r.method,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classify(resp.StatusCode, decodeObject(body))
	}

	if cacheKey != "" {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			c.logger.Warn("barikoi cache write failed", "endpoint", r.endpoint.Name, "error", err)
		}
	}
	return NewResult(resp.StatusCode, body), nil
}

func (c *Client) buildRequest(ctx context.Context, r request, reqURL string, form Params) (*http.Request, error) {
	var body io.Reader
	contentType := ""
	switch {
	case r.key == keyInForm:
		body = strings.NewReader(formValues(form).Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.json != nil:
		raw, err := json.Marshal(r.json)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func (c *Client) observe(r request, status int, d time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveRequest(r.endpoint.Name, r.method, status, d)
}

func decodeObject(body []byte) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(body), &obj); err != nil {
		return nil
	}
	return obj
}

func responseCacheKey(method, reqURL string) string {
	sum := sha256.Sum256([]byte(method + " " + reqURL))
	return hex.EncodeToString(sum[:])
}
