// package spotify is the authenticated request executor and typed API surface
// for the Spotify Web API. All response classification happens here: callers
// above this boundary branch on [ErrorKind], never on status codes or
// provider message text.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vuciv/true-random-shuffle/internal/fetch"
	"github.com/vuciv/true-random-shuffle/internal/shared"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// TokenSource supplies bearer tokens and performs reactive refresh.
// Satisfied by [auth.Manager].
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) error
}

// Client executes authenticated requests against the Spotify Web API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	logger     *log.Logger
	fetching   fetch.Options
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(base, "/") }
}

// WithFetchTuning sets the pagination window parameters used by bulk reads.
// Zero values fall back to the provider-measured defaults.
func WithFetchTuning(pageSize, windowSize int, windowDelay time.Duration) Option {
	return func(c *Client) {
		c.fetching.PageSize = pageSize
		c.fetching.WindowSize = windowSize
		c.fetching.WindowDelay = windowDelay
	}
}

// NewClient creates a Client backed by the given token source.
func NewClient(tokens TokenSource, logger *log.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		tokens:     tokens,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wireError is the provider's error envelope.
type wireError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// do executes one authenticated request and classifies the response.
//
// The request body, if any, is marshalled once up front so the identical
// request can be replayed after a 401-triggered refresh. Exactly one
// refresh-and-retry is attempted; a second 401 surfaces as AuthRefreshFailed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return &Error{Kind: RequestFailed, URL: path, Message: "encode request body", cause: err}
		}
	}

	resp, err := c.send(ctx, method, path, query, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		c.logger.Debug("401 response, refreshing token once", "path", path)
		if err := c.tokens.Refresh(ctx); err != nil {
			return &Error{Kind: AuthRefreshFailed, Status: resp.StatusCode, URL: path, cause: err}
		}
		if resp, err = c.send(ctx, method, path, query, payload); err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			return &Error{Kind: AuthRefreshFailed, Status: resp.StatusCode, URL: path,
				Message: "request unauthorized after token refresh"}
		}
	}

	return c.classify(resp, path, result)
}

// send performs a single HTTP exchange with a fresh bearer token.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte) (*http.Response, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, &Error{Kind: Unauthenticated, URL: path, cause: err}
	}

	apiURL := c.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return nil, &Error{Kind: RequestFailed, URL: path, Message: "build request", cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &Error{Kind: Cancelled, URL: path, cause: ctx.Err()}
		}
		return nil, &Error{Kind: RequestFailed, URL: path, cause: err}
	}
	return resp, nil
}

// classify maps a non-401 response onto the error taxonomy, decoding the body
// into result for successful JSON responses.
func (c *Client) classify(resp *http.Response, path string, result any) error {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if result == nil || !isJSON(resp) {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return &Error{Kind: RequestFailed, Status: resp.StatusCode, URL: path,
				Message: "decode response body", cause: err}
		}
		return nil

	case resp.StatusCode == http.StatusForbidden:
		msg := readErrorMessage(resp.Body)
		kind := Forbidden
		// The provider signals missing OAuth scopes only through message
		// text. This is the single place that text is inspected.
		if strings.Contains(strings.ToLower(msg), "insufficient") && strings.Contains(strings.ToLower(msg), "scope") {
			kind = InsufficientScope
		}
		return &Error{Kind: kind, Status: resp.StatusCode, URL: path, Message: msg}

	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		drain(resp)
		c.logger.Warn("rate limited", "path", path, "retry_after", retryAfter)
		return &Error{Kind: RateLimited, Status: resp.StatusCode, URL: path, RetryAfter: retryAfter}

	default:
		msg := readErrorMessage(resp.Body)
		return &Error{Kind: RequestFailed, Status: resp.StatusCode, URL: path, Message: msg,
			cause: fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)}
	}
}

func isJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "application/json")
}

// readErrorMessage extracts the provider error message, tolerating non-JSON
// and empty bodies.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var envelope wireError
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
