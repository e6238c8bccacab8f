package ekart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MerchantHeader is sent with its exact spelling; the carrier expects the
// underscore form.
const MerchantHeader = "HTTP_X_MERCHANT_CODE"

// Result is a created return shipment
type Result struct {
	TrackingID string
	Response   json.RawMessage
}

// Client creates return shipments
type Client struct {
	http         *http.Client
	createURL    string
	merchantCode string
	locationCode string
	tokens       TokenProvider
	logger       *zap.Logger
	now          func() time.Time
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

// WithClock overrides the time source used for fallback tracking ids
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a carrier client
func NewClient(cfg config.EkartConfig, tokens TokenProvider, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		http:         &http.Client{Timeout: timeout},
		createURL:    cfg.CreateURL,
		merchantCode: cfg.MerchantCode,
		locationCode: cfg.ReturnLocationCode,
		tokens:       tokens,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateReturn submits a return shipment for a validated request
func (c *Client) CreateReturn(ctx context.Context, req ReturnRequest) (*Result, error) {
	now := c.now()
	payload := BuildPayload(req, c.merchantCode, c.locationCode, now)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode ekart payload: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("ekart token: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.createURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header[MerchantHeader] = []string{c.merchantCode}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: ekart request: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read ekart response: %v", shared.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Ekart rejected return shipment",
			zap.String("order_id", req.OrderID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: data}
	}

	result := &Result{TrackingID: FallbackTrackingID(now), Response: rawJSON(data)}
	var parsed struct {
		TrackingID string `json:"tracking_id"`
	}
	if json.Unmarshal(data, &parsed) == nil && parsed.TrackingID != "" {
		result.TrackingID = parsed.TrackingID
	}

	c.logger.Info("Ekart return shipment created",
		zap.String("order_id", req.OrderID),
		zap.String("tracking_id", result.TrackingID),
	)
	return result, nil
}

// rawJSON keeps valid JSON as is and quotes anything else so it can be stored
// in a JSON column.
func rawJSON(data []byte) json.RawMessage {
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(data) {
		return json.RawMessage(data)
	}
	quoted, _ := json.Marshal(string(data))
	return quoted
}
