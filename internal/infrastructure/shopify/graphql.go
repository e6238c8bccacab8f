package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ikkasa/orderhub/internal/domain/order"
	"go.uber.org/zap"
)

const ordersQuery = `query Orders($first: Int!, $after: String) {
  orders(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        name
        createdAt
        email
        phone
        displayFinancialStatus
        displayFulfillmentStatus
        paymentGatewayNames
        cancelledAt
        cancelReason
        tags
        note
        currencyCode
        customer { firstName lastName email phone }
        shippingAddress { firstName lastName name address1 address2 city province zip country phone }
        billingAddress { firstName lastName name address1 address2 city province zip country phone }
        lineItems(first: 100) {
          edges {
            node {
              name
              title
              quantity
              originalUnitPriceSet { shopMoney { amount } }
              sku
              vendor
            }
          }
        }
        currentTotalPriceSet { shopMoney { amount } }
        currentSubtotalPriceSet { shopMoney { amount } }
        currentTotalTaxSet { shopMoney { amount } }
        currentTotalDiscountsSet { shopMoney { amount } }
        currentShippingPriceSet { shopMoney { amount } }
        transactions(first: 10) { gateway status }
      }
    }
  }
}`

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// GraphQLSource walks the orders connection by cursor
type GraphQLSource struct {
	client     *Client
	normalizer GraphQLNormalizer
}

// NewGraphQLSource creates a GraphQL order source
func NewGraphQLSource(c *Client) *GraphQLSource {
	return &GraphQLSource{client: c}
}

// FetchOrders reads every page first and only then normalizes.
func (s *GraphQLSource) FetchOrders(ctx context.Context) ([]order.Patch, error) {
	raw, err := s.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return order.NormalizeAll[GraphQLOrder](s.normalizer, raw), nil
}

// FetchAll returns the raw order nodes of every page
func (s *GraphQLSource) FetchAll(ctx context.Context) ([]GraphQLOrder, error) {
	c := s.client
	endpoint := c.baseURL + "/graphql.json"

	var (
		all    []GraphQLOrder
		cursor string
	)
	for page := 1; ; page++ {
		if err := c.checkPageLimit(page); err != nil {
			return nil, err
		}

		vars := map[string]any{"first": c.pageSize}
		if cursor != "" {
			vars["after"] = cursor
		}
		_, body, err := c.do(ctx, http.MethodPost, endpoint, gqlRequest{Query: ordersQuery, Variables: vars})
		if err != nil {
			return nil, fmt.Errorf("fetch orders page %d: %w", page, err)
		}

		var resp gqlResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrMalformedPage, page, err)
		}
		if len(resp.Errors) > 0 && string(resp.Errors) != "null" {
			return nil, fmt.Errorf("%w: page %d: %s", ErrMalformedPage, page, resp.Errors)
		}
		if resp.Data == nil || resp.Data.Orders == nil {
			return nil, fmt.Errorf("%w: page %d: missing orders connection", ErrMalformedPage, page)
		}

		conn := resp.Data.Orders
		for _, edge := range conn.Edges {
			all = append(all, edge.Node)
		}
		c.onPage(APIGraphQL)
		c.logger.Debug("Fetched Shopify GraphQL page",
			zap.Int("page", page),
			zap.Int("orders", len(conn.Edges)),
			zap.Bool("has_next", conn.PageInfo.HasNextPage),
		)

		if !conn.PageInfo.HasNextPage {
			return all, nil
		}
		if conn.PageInfo.EndCursor == "" {
			return nil, fmt.Errorf("%w: page %d: hasNextPage without endCursor", ErrMalformedPage, page)
		}
		cursor = conn.PageInfo.EndCursor
	}
}
