// client/gateway.client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/graph"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/cache"
)

// TokenSource hands out the bearer token for the next request. An empty
// token means no session.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// UnauthenticatedHandler runs once per response carrying UNAUTHENTICATED,
// before the failing call returns.
type UnauthenticatedHandler func(ctx context.Context)

// Options configures a Client. Zero values get defaults.
type Options struct {
	HTTPClient        *http.Client
	Timeout           time.Duration
	Tokens            TokenSource
	Cache             *cache.Cache
	Logger            *slog.Logger
	OnUnauthenticated UnauthenticatedHandler
}

// Client is the one configured GraphQL gateway of the console.
type Client struct {
	endpoint string
	http     *http.Client
	tokens   TokenSource
	cache    *cache.Cache
	logger   *slog.Logger
	onUnauth UnauthenticatedHandler
	// concurrent identical reads share one request
	flight singleflight.Group
}

// NewClient validates every operation document against the schema mirror
// and returns a client for endpoint.
func NewClient(endpoint string, opts Options) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("gateway endpoint is required")
	}
	if err := graph.ValidateAll(); err != nil {
		return nil, fmt.Errorf("invalid operation documents: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}

	return &Client{
		endpoint: endpoint,
		http:     httpClient,
		tokens:   tokens,
		cache:    opts.Cache,
		logger:   logger,
		onUnauth: opts.OnUnauthenticated,
	}, nil
}

// Cache returns the response cache, or nil when caching is off.
func (c *Client) Cache() *cache.Cache {
	return c.cache
}

// shared runs fetch once for concurrent callers of the same read under the
// same token. Callers share the first caller's context.
func (c *Client) shared(op graph.Operation, fetch func() (interface{}, error)) (interface{}, error) {
	v, err, _ := c.flight.Do(op.Name+"|"+c.tokens.Token(), fetch)
	return v, err
}

// Do sends op with vars and decodes the response data into out. GraphQL
// errors are logged, classified and returned as *Error; an UNAUTHENTICATED
// error first runs the unauthenticated handler.
func (c *Client) Do(ctx context.Context, op graph.Operation, vars map[string]interface{}, out interface{}) error {
	if vars == nil {
		vars = map[string]interface{}{}
	}
	body, err := json.Marshal(graphql.RawParams{
		Query:         op.Document,
		OperationName: op.Name,
		Variables:     vars,
		Extensions:    map[string]interface{}{},
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op.Name, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/graphql-response+json, application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("network error", "op", op.Name, "request_id", requestID, "err", err)
		return newNetworkError(op.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("network error", "op", op.Name, "request_id", requestID, "err", err)
		return newNetworkError(op.Name, err)
	}

	var gqlResp graphql.Response
	if err := json.Unmarshal(raw, &gqlResp); err != nil {
		cause := fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
		c.logger.Error("network error", "op", op.Name, "request_id", requestID, "err", cause)
		return newNetworkError(op.Name, cause)
	}

	if len(gqlResp.Errors) > 0 {
		for _, e := range gqlResp.Errors {
			c.logger.Error("graphql error",
				"op", op.Name,
				"request_id", requestID,
				"message", e.Message,
				"path", e.Path.String(),
				"locations", e.Locations,
				"code", extensionCode(e),
			)
		}
		gqlErr := newGraphQLError(op.Name, gqlResp.Errors)
		if hasUnauthenticated(gqlResp.Errors) && c.onUnauth != nil {
			c.onUnauth(ctx)
		}
		return gqlErr
	}

	if resp.StatusCode >= http.StatusBadRequest {
		cause := fmt.Errorf("unexpected status %d", resp.StatusCode)
		c.logger.Error("network error", "op", op.Name, "request_id", requestID, "err", cause)
		return newNetworkError(op.Name, cause)
	}

	if out == nil || len(gqlResp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op.Name, err)
	}
	return nil
}
