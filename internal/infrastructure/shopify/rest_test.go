package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(storeURL string) config.ShopifyConfig {
	return config.ShopifyConfig{
		StoreURL:    storeURL,
		APIVersion:  "2024-04",
		AccessToken: "shpat_test",
		PageSize:    2,
		MaxPages:    10,
		Timeout:     5 * time.Second,
	}
}

// restServer serves pages numbered 1..pages, each with two orders, linking
// to the next page until the last. failPage > 0 answers that page with 502.
func restServer(t *testing.T, pages, failPage int, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		assert.Equal(t, "/admin/api/2024-04/orders.json", r.URL.Path)

		page := 1
		if pi := r.URL.Query().Get("page_info"); pi != "" {
			page, _ = strconv.Atoi(pi)
		} else {
			assert.Equal(t, "any", r.URL.Query().Get("status"))
			assert.Equal(t, "2", r.URL.Query().Get("limit"))
		}
		if page == failPage {
			http.Error(w, `{"errors":"bad gateway"}`, http.StatusBadGateway)
			return
		}
		if page < pages {
			next := fmt.Sprintf("%s/admin/api/2024-04/orders.json?limit=2&page_info=%d", srv.URL, page+1)
			prev := fmt.Sprintf("%s/admin/api/2024-04/orders.json?limit=2&page_info=%d", srv.URL, page-1)
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="previous", <%s>; rel="next"`, prev, next))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"orders":[{"id":%d,"order_number":%d,"total_price":"10.00"},{"id":%d,"order_number":%d,"total_price":20}]}`,
			page*100+1, page*10+1, page*100+2, page*10+2)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRESTSource_WalksAllPages(t *testing.T) {
	var hits atomic.Int32
	srv := restServer(t, 3, 0, &hits)

	var observed int
	c := NewClient(testConfig(srv.URL), WithPageHook(func(api string) {
		assert.Equal(t, APIREST, api)
		observed++
	}))

	patches, err := NewRESTSource(c).FetchOrders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(3), hits.Load(), "exactly one request per page")
	assert.Equal(t, 3, observed)
	require.Len(t, patches, 6)
	assert.Equal(t, "101", patches[0].ShopifyID.OrElse(""))
	assert.Equal(t, "11", patches[0].OrderID.OrElse(""))
	assert.Equal(t, "302", patches[5].ShopifyID.OrElse(""))
	assert.InDelta(t, 20.0, patches[5].Amount.OrElse(0), 1e-9)
}

func TestRESTSource_SinglePage(t *testing.T) {
	var hits atomic.Int32
	srv := restServer(t, 1, 0, &hits)

	patches, err := NewRESTSource(NewClient(testConfig(srv.URL))).FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Len(t, patches, 2)
}

func TestRESTSource_MidWalkFailureAborts(t *testing.T) {
	var hits atomic.Int32
	srv := restServer(t, 4, 2, &hits)

	patches, err := NewRESTSource(NewClient(testConfig(srv.URL))).FetchOrders(context.Background())
	require.Error(t, err)
	assert.Nil(t, patches)
	assert.Equal(t, int32(2), hits.Load(), "walk stops at the failing page")

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.ErrorIs(t, err, shared.ErrUpstream)
}

func TestRESTSource_PageLimit(t *testing.T) {
	var hits atomic.Int32
	srv := restServer(t, 5, 0, &hits)

	cfg := testConfig(srv.URL)
	cfg.MaxPages = 3
	_, err := NewRESTSource(NewClient(cfg)).FetchOrders(context.Background())
	assert.ErrorIs(t, err, ErrTooManyPages)
	assert.Equal(t, int32(3), hits.Load())
}

func TestRESTSource_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"orders": [`))
	}))
	defer srv.Close()

	_, err := NewRESTSource(NewClient(testConfig(srv.URL))).FetchOrders(context.Background())
	assert.ErrorIs(t, err, ErrMalformedPage)
}

func TestRESTSource_ContextCancelled(t *testing.T) {
	var hits atomic.Int32
	srv := restServer(t, 2, 0, &hits)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRESTSource(NewClient(testConfig(srv.URL))).FetchOrders(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{"empty", "", ""},
		{"next only", `<https://s.myshopify.com/a?page_info=x>; rel="next"`, "https://s.myshopify.com/a?page_info=x"},
		{"previous and next", `<https://s/a?p=1>; rel="previous", <https://s/a?p=3>; rel="next"`, "https://s/a?p=3"},
		{"previous only", `<https://s/a?p=1>; rel="previous"`, ""},
		{"no space", `<https://s/a?p=2>;rel="next"`, "https://s/a?p=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextPageURL(tt.link))
		})
	}
}

func TestAdminURL(t *testing.T) {
	assert.Equal(t, "https://shop.myshopify.com/admin/api/2024-04", adminURL("shop.myshopify.com", "2024-04"))
	assert.Equal(t, "http://127.0.0.1:8080/admin/api/v", adminURL("http://127.0.0.1:8080/", "v"))
}
