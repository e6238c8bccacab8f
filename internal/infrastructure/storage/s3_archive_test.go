package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3Archive_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3Archive(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3Archive(&config.StorageConfig{AccessKey: "k", SecretKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		_, err := NewS3Archive(&config.StorageConfig{Bucket: "b", SecretKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		_, err := NewS3Archive(&config.StorageConfig{Bucket: "b", AccessKey: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("defaults", func(t *testing.T) {
		a, err := NewS3Archive(&config.StorageConfig{Bucket: "b", AccessKey: "k", SecretKey: "s", Endpoint: "minio:9000"})
		require.NoError(t, err)
		assert.Equal(t, "b", a.Bucket())
		assert.Equal(t, "uploads", a.prefix)
	})
}

type recordedRequest struct {
	method string
	path   string
	ctype  string
}

func fakeS3(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{method: r.Method, path: r.URL.Path, ctype: r.Header.Get("Content-Type")})
		mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestS3Archive_Archive(t *testing.T) {
	srv, recorded := fakeS3(t)
	at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	a, err := NewS3Archive(&config.StorageConfig{
		Bucket:       "orderhub",
		AccessKey:    "k",
		SecretKey:    "s",
		Endpoint:     srv.URL,
		UsePathStyle: true,
	}, WithLogger(zaptest.NewLogger(t)), WithClock(func() time.Time { return at }))
	require.NoError(t, err)

	key, err := a.Archive(context.Background(), "orders.csv", strings.NewReader("Order no\nA1\n"), "text/csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "uploads/2026/10/14/"))
	assert.True(t, strings.HasSuffix(key, "-orders.csv"))

	reqs := recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/orderhub/"+key, reqs[0].path)
	assert.Equal(t, "text/csv", reqs[0].ctype)
}

func TestS3Archive_EnsureBucketExists(t *testing.T) {
	srv, recorded := fakeS3(t)
	a, err := NewS3Archive(&config.StorageConfig{
		Bucket: "orderhub", AccessKey: "k", SecretKey: "s", Endpoint: srv.URL, UsePathStyle: true,
	})
	require.NoError(t, err)

	require.NoError(t, a.EnsureBucket(context.Background()))
	reqs := recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodHead, reqs[0].method)
}
