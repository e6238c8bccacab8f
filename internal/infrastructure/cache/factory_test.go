package cache

import (
	"errors"
	"testing"

	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachable(config.RedisConfig) (TokenCache, error) {
	return nil, errors.New("connection refused")
}

func TestFactory_Disabled(t *testing.T) {
	c, err := NewFactory(config.RedisConfig{Enabled: false}).Create()
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestFactory_FallsBackToMemory(t *testing.T) {
	f := NewFactory(config.RedisConfig{Enabled: true, Host: "localhost", Port: 1})
	f.connect = unreachable

	c, err := f.Create()
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &InMemoryTokenCache{}, c)
}

func TestFactory_NoFallback(t *testing.T) {
	f := NewFactory(config.RedisConfig{Enabled: true}, WithInMemoryFallback(false))
	f.connect = unreachable

	c, err := f.Create()
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestFactory_UsesRedis(t *testing.T) {
	want := NewInMemoryTokenCache()
	defer want.Close()

	f := NewFactory(config.RedisConfig{Enabled: true})
	f.connect = func(config.RedisConfig) (TokenCache, error) { return want, nil }

	c, err := f.Create()
	require.NoError(t, err)
	assert.Same(t, want, c)
}
