package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/satonic/satonic-admin/internal/casing"
	"github.com/satonic/satonic-admin/internal/logging"
)

// DefaultTimeout bounds every backend request made with the default HTTP client
const DefaultTimeout = 30 * time.Second

// HTTPDoer sends HTTP requests
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer token of the current session
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token implements TokenSource
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken returns a TokenSource that always yields token
func StaticToken(token string) TokenSource {
	return TokenSourceFunc(func(context.Context) (string, error) { return token, nil })
}

// Client talks to the backend REST API and normalizes its responses
type Client struct {
	baseURL   *url.URL
	http      HTTPDoer
	tokens    TokenSource
	logger    logging.Logger
	formatter TimestampFormatter

	onUnauthorized func()
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http = &http.Client{Timeout: timeout}
		}
	}
}

// WithTokenSource sets where bearer tokens come from
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) { c.tokens = tokens }
}

// WithLogger sets the client logger
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimestampFormatter sets how list timestamps are displayed
func WithTimestampFormatter(f TimestampFormatter) Option {
	return func(c *Client) { c.formatter = f }
}

// WithUnauthorizedHook registers a function run whenever the backend rejects
// the session, before the per-call OnUnauthorized callback.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// NewClient creates a new Client for the backend at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}

	c := &Client{
		baseURL:   parsed,
		http:      &http.Client{Timeout: DefaultTimeout},
		logger:    logging.NoOp(),
		formatter: DefaultTimestampFormatter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) unauthorized() {
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// request describes one backend call
type request struct {
	method      string
	path        string
	query       Query
	body        any
	renames     RenameTable
	rawBody     io.Reader
	contentType string
}

// send performs req and returns the raw response. Non-2xx responses are
// converted to *Error and their body is consumed.
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	endpoint := c.baseURL.String() + req.path + req.query.Encode()

	var body io.Reader
	contentType := req.contentType
	switch {
	case req.rawBody != nil:
		body = req.rawBody
	case req.body != nil:
		encoded, err := encodeBody(req.body, req.renames)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.New().String())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, &Error{
				Status:  http.StatusUnauthorized,
				Message: "session expired",
				Fields:  map[string]any{"message": "session expired"},
				Err:     err,
			}
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("backend request failed", "method", req.method, "path", req.path, "error", err)
		return nil, err
	}

	c.logger.Debug("backend request",
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"duration", time.Since(started),
		"request_id", httpReq.Header.Get("X-Request-Id"),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

// encodeBody marshals v and rewrites its keys to the backend convention.
// renames maps console names back to the names the generic conversion
// expects, undoing the resource's response corrections.
func encodeBody(v any, renames RenameTable) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	generic, err := decodeGeneric(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(casing.KeysToBackend(renames.Apply(generic)))
}

func decodeGeneric(raw []byte) (any, error) {
	var generic any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return nil, err
	}
	return generic, nil
}

// decodeError builds an *Error from a failed response
func decodeError(resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	apiErr := &Error{Status: resp.StatusCode}
	if generic, err := decodeGeneric(raw); err == nil {
		if fields, ok := casing.KeysToInternal(generic).(map[string]any); ok {
			apiErr.Fields = fields
			apiErr.Message = messageFrom(fields, resp.StatusCode)
			return apiErr
		}
	}

	apiErr.Message = messageFrom(nil, resp.StatusCode)
	apiErr.Fields = map[string]any{"message": apiErr.Message}
	return apiErr
}

// decodeInto reads a JSON response, converts it to the console convention,
// applies the resource rules and decodes it into T.
func decodeInto[T any](c *Client, resp *http.Response, res Resource, list bool) (T, error) {
	var out T
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("failed to read %s response: %w", res.Name, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}

	generic, err := decodeGeneric(raw)
	if err != nil {
		return out, fmt.Errorf("failed to decode %s response: %w", res.Name, err)
	}

	normalized := res.Renames.Apply(casing.KeysToInternal(generic))
	if list {
		normalized = c.formatter.formatResultTimestamps(normalized, res.Timestamps)
	}

	encoded, err := json.Marshal(normalized)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s response: %w", res.Name, err)
	}
	return out, nil
}

// getJSON issues a GET and decodes a single object
func getJSON[T any](ctx context.Context, c *Client, res Resource, path string, q Query) (T, error) {
	resp, err := c.send(ctx, request{method: http.MethodGet, path: path, query: q})
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeInto[T](c, resp, res, false)
}

// listJSON issues a GET against a list endpoint
func listJSON[T any](ctx context.Context, c *Client, res Resource, path string, q Query) (T, error) {
	resp, err := c.send(ctx, request{method: http.MethodGet, path: path, query: q})
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeInto[T](c, resp, res, true)
}

// sendJSON issues a request with a JSON body and decodes the reply
func sendJSON[T any](ctx context.Context, c *Client, res Resource, method, path string, body any) (T, error) {
	resp, err := c.send(ctx, request{method: method, path: path, body: body, renames: res.Renames.Reverse()})
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeInto[T](c, resp, res, false)
}

// discard issues a request whose response body is not needed
func discard(ctx context.Context, c *Client, method, path string) (Empty, error) {
	resp, err := c.send(ctx, request{method: method, path: path})
	if err != nil {
		return Empty{}, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return Empty{}, nil
}
