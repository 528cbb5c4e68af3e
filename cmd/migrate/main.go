// cmd/migrate/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/ammerola/flowershop-pos/internal/adapters/db"
	"github.com/ammerola/flowershop-pos/internal/pkg/config"
	"github.com/ammerola/flowershop-pos/internal/pkg/logger"
)

const usage = `usage: migrate [flags] <command> [arg]

commands:
  up              apply all pending migrations
  down            roll back the last migration
  steps <n>       apply n migrations, or roll back when n is negative
  goto <version>  migrate up or down to version
  down-to <version>
                  roll back to version
  force <version> set the version without running migrations
  version         print the current version
  status          print applied and pending migrations as JSON
  drop            drop everything in the schema
`

func main() {
	var (
		source   = flag.String("path", "", "Migration directory (defaults to the embedded migrations)")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		yes      = flag.Bool("yes", false, "Confirm destructive commands")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	slogger := logger.SetupLogger(*logLevel, "text").Logger

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	path := *source
	if path == "" {
		path = cfg.Database.MigrationPath
	}

	migrator, err := db.NewMigratorWithHooks(&db.MigrationConfig{
		DatabaseURL: db.ConfigFrom(cfg.Database).URL(),
		SourcePath:  path,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}, slogger, hooks(slogger, *yes))
	if err != nil {
		slogger.Error("failed to create migrator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = run(context.Background(), migrator, flag.Args(), *yes)
	if closeErr := migrator.Close(); closeErr != nil {
		slogger.Warn("failed to close migrator", slog.String("error", closeErr.Error()))
	}
	if err != nil {
		slogger.Error("migration command failed",
			slog.String("command", flag.Arg(0)),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// hooks refuse unconfirmed rollbacks, which drop ledger tables, and log
// every schema change
func hooks(log *slog.Logger, confirmed bool) db.MigrationHooks {
	record := func(ctx context.Context, version uint, direction string) error {
		log.InfoContext(ctx, "schema changed",
			slog.String("direction", direction),
			slog.Uint64("version", uint64(version)))
		return nil
	}

	return db.MigrationHooks{
		AfterUp: record,
		BeforeDown: func(ctx context.Context, version uint, _ string) error {
			if !confirmed {
				return fmt.Errorf("rolling back version %d may drop sales data; rerun with -yes", version)
			}
			return nil
		},
		AfterDown: record,
	}
}

func run(ctx context.Context, m *db.MigratorWithHooks, args []string, confirmed bool) error {
	switch args[0] {
	case "up":
		return m.Up(ctx)
	case "down":
		return m.Down(ctx)
	case "steps":
		if len(args) < 2 {
			return fmt.Errorf("steps needs a count")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n == 0 {
			return fmt.Errorf("invalid step count %q", args[1])
		}
		if n < 0 && !confirmed {
			return fmt.Errorf("rolling back %d steps may drop sales data; rerun with -yes", -n)
		}
		return m.Steps(ctx, n)
	case "goto":
		v, err := versionArg(args)
		if err != nil {
			return err
		}
		if current, _, err := m.Version(ctx); err == nil && uint(v) < current && !confirmed {
			return fmt.Errorf("goto %d rolls back from %d and may drop sales data; rerun with -yes", v, current)
		}
		return m.Migrate(ctx, uint(v))
	case "down-to":
		if !confirmed {
			return fmt.Errorf("down-to may drop sales data; rerun with -yes")
		}
		v, err := versionArg(args)
		if err != nil {
			return err
		}
		return m.DownTo(ctx, uint(v))
	case "force":
		v, err := versionArg(args)
		if err != nil {
			return err
		}
		return m.Force(ctx, v)
	case "version":
		version, dirty, err := m.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	case "status":
		status, err := m.Status(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "drop":
		if !confirmed {
			return fmt.Errorf("drop removes all data; rerun with -yes")
		}
		return m.Drop(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func versionArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s needs a version", args[0])
	}
	v, err := strconv.Atoi(args[1])
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version %q", args[1])
	}
	return v, nil
}
