package grid

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"shopify-product-grid/structs"
)

const defaultTimeout = 30 * time.Second

// Source yields the product list for a collection handle.
type Source interface {
	Products(ctx context.Context, handle string) ([]structs.Product, error)
}

// StatusError is returned when the proxy answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("proxy returned HTTP %d", e.Code)
	}
	return fmt.Sprintf("proxy returned HTTP %d: %s", e.Code, e.Body)
}

// statusTransport turns non-2xx responses into a *StatusError so that error
// pages from the proxy never reach the JSON decoder.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	return resp, nil
}

// Client talks to the GraphQL proxy endpoint.
type Client struct {
	gql      *graphql.Client
	endpoint string
	limit    int
	headers  map[string]string
	logger   *zap.Logger
}

type ClientOption func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	limit      int
	headers    map[string]string
	logger     *zap.Logger
}

// WithHTTPClient sets the base HTTP client. Its transport is wrapped, the
// client itself is not modified.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithTimeout bounds each request. Zero or negative keeps the 30s default.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.timeout = d }
}

// WithLimit sets how many products a fetch asks for.
func WithLimit(n int) ClientOption {
	return func(o *clientOptions) { o.limit = n }
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *clientOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithClientLogger sets the logger used for request logs.
func WithClientLogger(l *zap.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = l }
}

// NewClient returns a Client for the proxy at endpoint.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("grid: proxy endpoint is required")
	}

	o := clientOptions{
		timeout: defaultTimeout,
		limit:   DefaultLimit,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = defaultTimeout
	}
	if o.limit <= 0 {
		o.limit = DefaultLimit
	}

	base := http.DefaultTransport
	if o.httpClient != nil && o.httpClient.Transport != nil {
		base = o.httpClient.Transport
	}
	hc := &http.Client{
		Transport: statusTransport{base: base},
		Timeout:   o.timeout,
	}

	gql := graphql.NewClient(endpoint, graphql.WithHTTPClient(hc))
	logger := o.logger.With(zap.String("endpoint", endpoint))
	gql.Log = func(s string) { logger.Debug(s) }

	return &Client{
		gql:      gql,
		endpoint: endpoint,
		limit:    o.limit,
		headers:  o.headers,
		logger:   logger,
	}, nil
}

// Limit returns how many products a fetch asks for.
func (c *Client) Limit() int {
	return c.limit
}

// Fetch runs the collection query for handle and returns the response data.
func (c *Client) Fetch(ctx context.Context, handle string) (*structs.CollectionData, error) {
	req := NewCollectionRequest(handle, c.limit)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	var data structs.CollectionData
	if err := c.gql.Run(ctx, req, &data); err != nil {
		c.logger.Warn("collection fetch failed",
			zap.String("handle", handle),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, errors.Wrapf(err, "grid: fetch collection %q", handle)
	}

	c.logger.Debug("collection fetched",
		zap.String("handle", handle),
		zap.String("request_id", requestID),
		zap.Duration("took", time.Since(start)),
	)
	return &data, nil
}

// Products fetches handle and maps the response into the product list.
func (c *Client) Products(ctx context.Context, handle string) ([]structs.Product, error) {
	data, err := c.Fetch(ctx, handle)
	if err != nil {
		return nil, err
	}

	products, err := MapProducts(data, c.limit)
	if err != nil {
		return nil, errors.Wrapf(err, "handle %q", handle)
	}
	return products, nil
}
