package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMigrateLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := migrateLogger{logger: zap.New(core), verbose: true}

	l.Printf("Read and execute %s\n", "000001_create_orders.up.sql")

	assert.True(t, l.Verbose())
	if assert.Equal(t, 1, logs.Len()) {
		assert.Equal(t, "Read and execute 000001_create_orders.up.sql", logs.All()[0].Message)
	}
}

func TestSettingsOptions(t *testing.T) {
	s := settings{table: "schema_migrations"}
	for _, opt := range []Option{FromDir("/srv/migrations"), WithTable("orderhub_schema"), WithLogger(zap.NewNop(), true)} {
		opt(&s)
	}

	assert.Equal(t, "/srv/migrations", s.dir)
	assert.Equal(t, "orderhub_schema", s.table)
	assert.True(t, s.verbose)
	assert.NotNil(t, s.logger)
}
