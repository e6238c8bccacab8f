// Package migration applies the SQL schema migrations with golang-migrate.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/ikkasa/orderhub/migrations"
	"go.uber.org/zap"
)

// ErrDirty is returned when a previous run failed halfway. Clear it with Force.
var ErrDirty = errors.New("schema is dirty")

// Status is the applied schema version
type Status struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

type settings struct {
	fsys    fs.FS
	dir     string
	table   string
	logger  *zap.Logger
	verbose bool
}

// Option configures a Migrator
type Option func(*settings)

// FromDir reads migrations from a directory instead of the embedded set
func FromDir(dir string) Option {
	return func(s *settings) { s.dir = dir }
}

// FromFS reads migrations from fsys instead of the embedded set
func FromFS(fsys fs.FS) Option {
	return func(s *settings) { s.fsys = fsys }
}

// WithTable overrides the version table name
func WithTable(name string) Option {
	return func(s *settings) { s.table = name }
}

// WithLogger sets the logger; verbose also forwards golang-migrate's per-file log
func WithLogger(l *zap.Logger, verbose bool) Option {
	return func(s *settings) {
		s.logger = l
		s.verbose = verbose
	}
}

// Migrator runs the order store schema migrations
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// New creates a Migrator over db. Without FromDir or FromFS it uses the
// migrations embedded in the binary.
func New(db *sql.DB, opts ...Option) (*Migrator, error) {
	s := settings{fsys: migrations.FS, table: "schema_migrations", logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: s.table})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	var m *migrate.Migrate
	if s.dir != "" {
		m, err = migrate.NewWithDatabaseInstance("file://"+s.dir, "postgres", driver)
	} else {
		source, serr := iofs.New(s.fsys, ".")
		if serr != nil {
			return nil, fmt.Errorf("failed to open migration source: %w", serr)
		}
		m, err = migrate.NewWithInstance("iofs", source, "postgres", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{logger: s.logger.Named("migrate"), verbose: s.verbose}
	return &Migrator{m: m, logger: s.logger}, nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	return mg.apply("up", mg.m.Up)
}

// Down rolls back every applied migration
func (mg *Migrator) Down() error {
	return mg.apply("down", mg.m.Down)
}

// Steps applies n migrations, up when positive and down when negative
func (mg *Migrator) Steps(n int) error {
	if n == 0 {
		return errors.New("step count must not be zero")
	}
	return mg.apply(fmt.Sprintf("steps %+d", n), func() error { return mg.m.Steps(n) })
}

// Status reports the applied version, zero when the schema is empty
func (mg *Migrator) Status() (Status, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return Status{Version: version, Dirty: dirty}, nil
}

// Force records version as applied and clears the dirty flag without running
// any migration
func (mg *Migrator) Force(version int) error {
	mg.logger.Warn("Forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database handles
func (mg *Migrator) Close() error {
	sourceErr, dbErr := mg.m.Close()
	return errors.Join(sourceErr, dbErr)
}

func (mg *Migrator) apply(name string, run func() error) error {
	before, err := mg.Status()
	if err != nil {
		return err
	}
	if before.Dirty {
		return fmt.Errorf("%w at version %d", ErrDirty, before.Version)
	}

	err = run()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.logger.Info("Schema already current", zap.String("command", name), zap.Uint("version", before.Version))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", name, err)
	}

	after, err := mg.Status()
	if err != nil {
		return err
	}
	mg.logger.Info("Schema migrated",
		zap.String("command", name),
		zap.Uint("from", before.Version),
		zap.Uint("to", after.Version),
	)
	return nil
}

// migrateLogger adapts zap to migrate.Logger
type migrateLogger struct {
	logger  *zap.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return l.verbose }
