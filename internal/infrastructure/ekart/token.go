package ekart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"go.uber.org/zap"
)

// tokenSafetyMargin is subtracted from expires_in before caching.
const tokenSafetyMargin = 60 * time.Second

// ErrEmptyToken is returned when the auth endpoint answers without a token
var ErrEmptyToken = errors.New("ekart auth returned no access token")

// TokenProvider supplies the bearer token for carrier calls
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Token is an issued access token
type Token struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// TokenFetcher obtains a fresh token from the issuer
type TokenFetcher interface {
	Fetch(ctx context.Context) (Token, error)
}

// TokenCache stores tokens between requests
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// StaticTokenProvider always returns the configured token
type StaticTokenProvider string

// Token implements TokenProvider
func (s StaticTokenProvider) Token(context.Context) (string, error) {
	return string(s), nil
}

// AuthTokenProvider exchanges client credentials for a token on every call
type AuthTokenProvider struct {
	http         *http.Client
	url          string
	clientID     string
	clientSecret string
}

// NewAuthTokenProvider creates a credentials-based provider
func NewAuthTokenProvider(hc *http.Client, url, clientID, clientSecret string) *AuthTokenProvider {
	return &AuthTokenProvider{http: hc, url: url, clientID: clientID, clientSecret: clientSecret}
}

// Fetch implements TokenFetcher
func (p *AuthTokenProvider) Fetch(ctx context.Context) (Token, error) {
	body, err := json.Marshal(map[string]string{
		"client_id":     p.clientID,
		"client_secret": p.clientSecret,
	})
	if err != nil {
		return Token{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return Token{}, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("%w: ekart auth: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("%w: read ekart auth response: %v", shared.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Token{}, &UpstreamError{StatusCode: resp.StatusCode, Body: data}
	}

	var out struct {
		AccessToken string  `json:"access_token"`
		ExpiresIn   float64 `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Token{}, fmt.Errorf("%w: decode ekart auth response: %v", shared.ErrUpstream, err)
	}
	if out.AccessToken == "" {
		return Token{}, fmt.Errorf("%w: %w", shared.ErrUpstream, ErrEmptyToken)
	}
	return Token{
		AccessToken: out.AccessToken,
		ExpiresIn:   time.Duration(out.ExpiresIn * float64(time.Second)),
	}, nil
}

// Token implements TokenProvider
func (p *AuthTokenProvider) Token(ctx context.Context) (string, error) {
	t, err := p.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return t.AccessToken, nil
}

// CachingTokenProvider serves tokens from a cache and refreshes them through
// the fetcher when missing. Cache failures fall through to the fetcher.
type CachingTokenProvider struct {
	fetcher TokenFetcher
	cache   TokenCache
	key     string
	logger  *zap.Logger

	mu sync.Mutex
}

// NewCachingTokenProvider wraps fetcher with cache
func NewCachingTokenProvider(fetcher TokenFetcher, cache TokenCache, key string, logger *zap.Logger) *CachingTokenProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingTokenProvider{fetcher: fetcher, cache: cache, key: key, logger: logger}
}

// Token implements TokenProvider
func (p *CachingTokenProvider) Token(ctx context.Context) (string, error) {
	if tok, ok := p.cached(ctx); ok {
		return tok, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// another caller may have refreshed while we waited
	if tok, ok := p.cached(ctx); ok {
		return tok, nil
	}

	t, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return "", err
	}
	if ttl := t.ExpiresIn - tokenSafetyMargin; ttl > 0 {
		if err := p.cache.Set(ctx, p.key, t.AccessToken, ttl); err != nil {
			p.logger.Warn("Failed to cache ekart token", zap.Error(err))
		}
	}
	return t.AccessToken, nil
}

func (p *CachingTokenProvider) cached(ctx context.Context) (string, bool) {
	tok, ok, err := p.cache.Get(ctx, p.key)
	if err != nil {
		p.logger.Warn("Failed to read cached ekart token", zap.Error(err))
		return "", false
	}
	return tok, ok && tok != ""
}

// NewTokenProvider picks the provider for cfg. A static token is used when no
// auth URL is configured; cache may be nil.
func NewTokenProvider(cfg config.EkartConfig, cache TokenCache, logger *zap.Logger) TokenProvider {
	if cfg.AuthURL == "" {
		return StaticTokenProvider(cfg.Token)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	auth := NewAuthTokenProvider(&http.Client{Timeout: timeout}, cfg.AuthURL, cfg.ClientID, cfg.ClientSecret)
	if cache == nil {
		return auth
	}
	return NewCachingTokenProvider(auth, cache, cfg.TokenCacheKey, logger)
}
