// Command migrate applies the orderhub schema migrations.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"github.com/ikkasa/orderhub/internal/infrastructure/logger"
	"github.com/ikkasa/orderhub/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type command struct {
	usage string
	help  string
	args  int
	run   func(m *migration.Migrator, log *zap.Logger, args []string) error
}

var commands = map[string]command{
	"up": {
		usage: "up",
		help:  "Apply all pending migrations",
		run:   func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Up() },
	},
	"down": {
		usage: "down",
		help:  "Roll back all migrations",
		run:   func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Down() },
	},
	"steps": {
		usage: "steps <n>",
		help:  "Apply n migrations, negative n rolls back",
		args:  1,
		run: func(m *migration.Migrator, _ *zap.Logger, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		},
	},
	"version": {
		usage: "version",
		help:  "Show the applied schema version",
		run: func(m *migration.Migrator, log *zap.Logger, _ []string) error {
			status, err := m.Status()
			if err != nil {
				return err
			}
			log.Info("Schema version", zap.Uint("version", status.Version), zap.Bool("dirty", status.Dirty))
			return nil
		},
	},
	"force": {
		usage: "force <version>",
		help:  "Record a version as applied and clear the dirty flag",
		args:  1,
		run: func(m *migration.Migrator, _ *zap.Logger, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(v)
		},
	},
}

var commandOrder = []string{"up", "down", "steps", "version", "force"}

func main() {
	dir := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      *level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	err = run(log, *dir, *level == "debug", flag.Args())
	logger.Sync(log)
	if errors.Is(err, errUsage) {
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("Migration failed", zap.Error(err))
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func run(log *zap.Logger, dir string, verbose bool, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok || len(args)-1 < cmd.args {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	opts := []migration.Option{migration.WithLogger(log, verbose)}
	if dir != "" {
		opts = append(opts, migration.FromDir(dir))
	}
	m, err := migration.New(db, opts...)
	if err != nil {
		_ = db.Close()
		return err
	}
	// Close also closes db.
	defer func() {
		if cerr := m.Close(); cerr != nil {
			log.Warn("Failed to close migrator", zap.Error(cerr))
		}
	}()

	return cmd.run(m, log, args[1:])
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "orderhub database migration tool")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:\n  migrate [flags] <command> [arguments]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, name := range commandOrder {
		c := commands[name]
		fmt.Fprintf(out, "  %-17s %s\n", c.usage, c.help)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "The database is read from the [database] config section, DATABASE_URL or ORDERHUB_DATABASE_URL.")
}
