package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"go.uber.org/zap"
)

var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextPageURL extracts the rel="next" target of a Link header
func nextPageURL(link string) string {
	m := linkNextPattern.FindStringSubmatch(link)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// RESTSource walks orders.json following Link headers
type RESTSource struct {
	client     *Client
	normalizer RESTNormalizer
}

// NewRESTSource creates a REST order source
func NewRESTSource(c *Client) *RESTSource {
	return &RESTSource{client: c}
}

// FetchOrders reads every page first and only then normalizes, so a failure
// on any page returns no orders.
func (s *RESTSource) FetchOrders(ctx context.Context) ([]order.Patch, error) {
	raw, err := s.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return order.NormalizeAll[RESTOrder](s.normalizer, raw), nil
}

// FetchAll returns the raw orders of every page
func (s *RESTSource) FetchAll(ctx context.Context) ([]RESTOrder, error) {
	c := s.client
	q := url.Values{}
	q.Set("status", "any")
	q.Set("limit", strconv.Itoa(c.pageSize))
	next := c.baseURL + "/orders.json?" + q.Encode()

	var all []RESTOrder
	for page := 1; next != ""; page++ {
		if err := c.checkPageLimit(page); err != nil {
			return nil, err
		}

		resp, body, err := c.do(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch orders page %d: %w", page, err)
		}

		var p restPage
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrMalformedPage, page, err)
		}
		all = append(all, p.Orders...)
		c.onPage(APIREST)

		next = nextPageURL(resp.Header.Get("Link"))
		c.logger.Debug("Fetched Shopify REST page",
			zap.Int("page", page),
			zap.Int("orders", len(p.Orders)),
			zap.Bool("has_next", next != ""),
		)
	}
	return all, nil
}
