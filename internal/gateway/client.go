// Package gateway is the client of the municipal complaint REST backend.
//
// Every call carries the caller's bearer token and returns a Result instead
// of an error: a failed call yields an empty-shaped default so dashboards keep
// rendering the sections that did load.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 10 << 20
	maxErrorBody   = 512
)

var (
	emptyObject = json.RawMessage(`{}`)
	emptyList   = json.RawMessage(`[]`)
)

// Config of the backend client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	UserAgent  string
}

// Client calls the complaint backend. It is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// NewHTTPClient returns a client with a pooled keep-alive transport.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gateway: parsing base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("gateway: unsupported scheme %q", base.Scheme)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = NewHTTPClient(timeout)
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "viksitkanpur-dashboard/1.0"
	}

	return &Client{baseURL: base, http: httpClient, userAgent: ua}, nil
}

func (c *Client) endpointURL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// get performs an authenticated GET and returns the unwrapped payload.
// fallback is the empty shape returned on failure.
func (c *Client) get(ctx context.Context, token, path string, query url.Values, fallback json.RawMessage) Result[json.RawMessage] {
	if token == "" {
		return Fail(newFetchError(path, KindNoSession, 0, "", ErrNoSession), fallback)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(path, query), nil)
	if err != nil {
		return Fail(newFetchError(path, KindTransport, 0, "building request", err), fallback)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Fail(newFetchError(path, KindCanceled, 0, "", ctx.Err()), fallback)
		}
		return Fail(newFetchError(path, KindTransport, 0, "", err), fallback)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Fail(newFetchError(path, KindTransport, resp.StatusCode, "reading body", err), fallback)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Fail(newFetchError(path, KindUnauthorized, resp.StatusCode, snippet(body), nil), fallback)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Fail(newFetchError(path, KindStatus, resp.StatusCode, snippet(body), nil), fallback)
	}

	payload, err := unwrap(body)
	if err != nil {
		var failure *backendFailure
		if errors.As(err, &failure) {
			return Fail(newFetchError(path, KindStatus, resp.StatusCode, failure.message, nil), fallback)
		}
		return Fail(newFetchError(path, KindDecode, resp.StatusCode, "", err), fallback)
	}
	return Ok(payload)
}

// backendFailure is a 2xx response whose envelope says success=false.
type backendFailure struct {
	message string
}

func (f *backendFailure) Error() string {
	return f.message
}

// unwrap validates the body and strips a {"success": ..., "data": ...}
// envelope when present.
func unwrap(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("body is not JSON")
	}
	if body[0] != '{' {
		return json.RawMessage(body), nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	data, hasData := env["data"]
	successRaw, hasSuccess := env["success"]
	if !hasSuccess {
		return json.RawMessage(body), nil
	}

	var success bool
	if err := json.Unmarshal(successRaw, &success); err == nil && !success {
		var msg string
		_ = json.Unmarshal(env["message"], &msg)
		if msg == "" {
			msg = "backend reported failure"
		}
		return nil, &backendFailure{message: msg}
	}
	if !hasData {
		return json.RawMessage(`null`), nil
	}
	return data, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
