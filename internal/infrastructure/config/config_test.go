package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "orderhub", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "5000", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 8, cfg.Import.Workers)
		assert.Equal(t, "merge", cfg.Import.DefaultMode)
		assert.Equal(t, "rest", cfg.Shopify.API)
		assert.Equal(t, "overwrite", cfg.Shopify.SyncMode)
		assert.Equal(t, 30*time.Second, cfg.Shopify.Timeout)
		assert.Equal(t, "IKK", cfg.Ekart.MerchantCode)
		assert.Equal(t, "IKK_BLR_06", cfg.Ekart.ReturnLocationCode)
		assert.Equal(t, 30*time.Second, cfg.Ekart.Timeout)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("prefixed env vars override defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("ORDERHUB_APP_PORT", "9090")
		t.Setenv("ORDERHUB_SHOPIFY_API", "graphql")
		t.Setenv("ORDERHUB_IMPORT_WORKERS", "3")
		t.Setenv("ORDERHUB_EKART_TIMEOUT", "5s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "graphql", cfg.Shopify.API)
		assert.Equal(t, 3, cfg.Import.Workers)
		assert.Equal(t, 5*time.Second, cfg.Ekart.Timeout)
	})

	t.Run("legacy env names are honoured", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("SHOPIFY_STORE_URL", "https://demo.myshopify.com")
		t.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_test")
		t.Setenv("MERCHANT_CODE", "ACME")
		t.Setenv("EKART_CREATE_URL", "https://ekart.example/create")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://demo.myshopify.com", cfg.Shopify.StoreURL)
		assert.Equal(t, "shpat_test", cfg.Shopify.AccessToken)
		assert.Equal(t, "ACME", cfg.Ekart.MerchantCode)
		assert.Equal(t, "https://ekart.example/create", cfg.Ekart.CreateURL)
	})

	t.Run("invalid sync mode is rejected", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("ORDERHUB_SHOPIFY_SYNC_MODE", "sometimes")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shopify.sync_mode")
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("auth requires a long secret", func(t *testing.T) {
		cfg := base()
		cfg.Auth.Enabled = true
		cfg.Auth.Secret = "short"
		assert.Error(t, cfg.validate())

		cfg.Auth.Secret = "0123456789abcdef0123456789abcdef"
		assert.NoError(t, cfg.validate())
	})

	t.Run("storage requires a bucket", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Enabled = true
		assert.Error(t, cfg.validate())
	})

	t.Run("production rejects wildcard CORS", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.validate())
	})

	t.Run("page size bounded by the Admin API limit", func(t *testing.T) {
		cfg := base()
		cfg.Shopify.PageSize = 251
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss word", DBName: "orders", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/orders?sslmode=disable", d.DSN())

	d.URL = "postgres://override/db"
	assert.Equal(t, "postgres://override/db", d.DSN())
}
