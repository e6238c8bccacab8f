// Package shopify pulls orders from the Shopify Admin API, over REST or
// GraphQL, and normalizes them into order patches.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Supported API flavours
const (
	APIREST    = "rest"
	APIGraphQL = "graphql"
)

const maxErrorBody = 4 << 10

// Client performs authenticated Admin API calls
type Client struct {
	http     *http.Client
	baseURL  string
	token    string
	pageSize int
	maxPages int
	logger   *zap.Logger
	onPage   func(api string)
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithPageHook registers fn to be called after every fetched page
func WithPageHook(fn func(api string)) Option {
	return func(c *Client) { c.onPage = fn }
}

// NewClient creates a client for the configured store
func NewClient(cfg config.ShopifyConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		http:     &http.Client{Timeout: timeout},
		baseURL:  adminURL(cfg.StoreURL, cfg.APIVersion),
		token:    cfg.AccessToken,
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
		logger:   zap.NewNop(),
		onPage:   func(string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pageSize <= 0 {
		c.pageSize = 100
	}
	return c
}

// adminURL builds https://{store}/admin/api/{version}, accepting store values
// with or without a scheme.
func adminURL(store, version string) string {
	store = strings.TrimRight(strings.TrimSpace(store), "/")
	if !strings.HasPrefix(store, "http://") && !strings.HasPrefix(store, "https://") {
		store = "https://" + store
	}
	return fmt.Sprintf("%s/admin/api/%s", store, version)
}

func (c *Client) checkPageLimit(page int) error {
	if c.maxPages > 0 && page > c.maxPages {
		return fmt.Errorf("%w: more than %d pages", ErrTooManyPages, c.maxPages)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, body any) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("shopify request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read shopify response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return resp, data, nil
}
