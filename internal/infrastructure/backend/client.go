// Package backend adapts the remote business API (a Django REST service)
// to the POS gateway ports.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from the backend (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Config holds the backend connection settings
type Config struct {
	BaseURL string
	Timeout time.Duration
	// DefaultPageSize is sent when listing reference data
	DefaultPageSize int
}

// Client talks to the remote business API. It implements every POS gateway port.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	pageSize   int
	logger     *zap.Logger
}

var (
	_ pos.CatalogGateway    = (*Client)(nil)
	_ pos.DrawerGateway     = (*Client)(nil)
	_ pos.SalesGateway      = (*Client)(nil)
	_ pos.ClientGateway     = (*Client)(nil)
	_ pos.MasterDataGateway = (*Client)(nil)
)

// NewClient creates a backend client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("backend: invalid base URL: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	pageSize := cfg.DefaultPageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		pageSize:   pageSize,
		logger:     logger,
	}, nil
}

type credentialKey struct{}

// WithBearerToken returns a context carrying the cashier's bearer credential
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

// BearerToken returns the credential carried by ctx
func BearerToken(ctx context.Context) string {
	token, _ := ctx.Value(credentialKey{}).(string)
	return token
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a JSON request and returns the raw response body of a 2xx answer
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("backend: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), reader)
	if err != nil {
		return nil, fmt.Errorf("backend: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := BearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Error(err),
		)
		return nil, shared.NewRemoteError("The business service is unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, shared.NewRemoteError("Failed to read the business service response")
	}

	c.logger.Debug("backend request",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// doJSON sends r and decodes a 2xx body into out
func (c *Client) doJSON(ctx context.Context, r request, out any) error {
	body, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Warn("backend returned an unexpected body",
			zap.String("path", r.path),
			zap.Error(err),
		)
		return shared.NewRemoteError("Unexpected response from the business service")
	}
	return nil
}

func statusError(status int, body []byte) error {
	message := extractMessage(body)
	switch status {
	case http.StatusUnauthorized:
		if message == "" {
			message = shared.ErrUnauthorized.Message
		}
		return shared.NewDomainError(shared.CodeUnauthorized, message)
	case http.StatusNotFound:
		if message == "" {
			message = shared.ErrNotFound.Message
		}
		return shared.NewDomainError(shared.CodeNotFound, message)
	}
	if message == "" {
		message = fmt.Sprintf("The business service rejected the request (HTTP %d)", status)
	}
	return shared.NewRemoteError(message)
}

// extractMessage pulls a user-facing message out of an error body:
// message, error, detail, non_field_errors, then the first field error.
func extractMessage(body []byte) string {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 || strings.HasPrefix(text, "<") {
			return ""
		}
		return text
	}
	return messageFrom(raw)
}

func messageFrom(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if msg := messageFrom(item); msg != "" {
				return msg
			}
		}
	case map[string]any:
		for _, key := range []string{"message", "error", "detail", "non_field_errors"} {
			if msg := messageFrom(t[key]); msg != "" {
				return msg
			}
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if msg := messageFrom(t[k]); msg != "" {
				return k + ": " + msg
			}
		}
	}
	return ""
}
