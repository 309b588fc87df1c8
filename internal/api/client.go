package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// string means the request goes out unauthenticated and the backend is
// free to reject it with 401.
type TokenSource interface {
	Token() string
}

// Client is the shared HTTP client every resource module is built on.
// It injects the bearer token, tags each request with a ULID request id,
// and turns every failure mode into an *APIError.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

func New(baseURL string, tokens TokenSource, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, query url.Values, result interface{}) error {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs an HTTP PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Patch performs an HTTP PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	fullURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Status: 0, Data: ErrorBody{Error: "marshaling request body: " + err.Error()}}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return &APIError{Status: 0, Data: ErrorBody{Error: "creating request: " + err.Error()}}
	}

	requestID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return &APIError{Status: 0, Data: ErrorBody{Error: err.Error()}}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: resp.StatusCode, Data: ErrorBody{Error: "reading response body: " + err.Error()}}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, raw)
	}

	if result == nil {
		return nil
	}

	// A 2xx body that carries an explicit success=false is still a
	// rejection; endpoints that never adopted the envelope simply omit
	// the field and are treated as successful.
	var envelope struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil &&
		envelope.Success != nil && !*envelope.Success {
		return &APIError{Status: resp.StatusCode, Data: ErrorBody{
			Success: envelope.Success,
			Message: envelope.Message,
			Error:   envelope.Error,
		}}
	}

	if err := json.Unmarshal(raw, result); err != nil {
		c.logger.Warn("malformed response body",
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return &APIError{Status: resp.StatusCode, Data: ErrorBody{Error: "malformed response: " + err.Error()}}
	}
	return nil
}

func errorFromResponse(status int, raw []byte) *APIError {
	var body ErrorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		body = ErrorBody{Error: strings.TrimSpace(string(raw))}
	}
	return &APIError{Status: status, Data: body}
}

// StaticToken adapts a fixed token string into a TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }
