// Command import-checkins loads check-ins exported from the browser app's
// local storage into a MindBalance database for one account.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/soaringjerry/MindBalance/internal/api"
	"github.com/soaringjerry/MindBalance/internal/config"
	dbstore "github.com/soaringjerry/MindBalance/internal/db"
	"github.com/soaringjerry/MindBalance/internal/services"
	"github.com/soaringjerry/MindBalance/internal/utils"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	for _, msg := range res.Errors {
		fmt.Fprintln(os.Stderr, "skipped "+msg)
	}
	fmt.Fprintf(os.Stdout, "imported=%d duplicates=%d skipped=%d\n", res.Imported, res.Duplicates, res.Skipped)
}

func run(ctx context.Context, cfg Config) (*services.ImportResult, error) {
	raw, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	rows, err := decodeCheckIns(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", cfg.InputPath, err)
	}

	dsn := cfg.DatabaseURL
	if cfg.Store == dbstore.DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.ToSlash(cfg.SQLitePath))
	}
	store, err := dbstore.Open(ctx, cfg.Store, dsn, cfg.MigrationsDir)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return importInto(ctx, store, cfg, rows)
}

// importInto resolves the target account, creating it when a password is
// given, and imports rows for it.
func importInto(ctx context.Context, store api.Store, cfg Config, rows []services.LegacyCheckIn) (*services.ImportResult, error) {
	auth, assessments := api.NewServices(store, api.Options{})
	u, err := store.FindUserByEmail(ctx, cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	owner := ""
	switch {
	case u != nil:
		owner = u.ID
	case cfg.Password != "":
		name := cfg.Name
		if name == "" {
			name = strings.SplitN(cfg.Email, "@", 2)[0]
		}
		created, err := auth.Register(ctx, name, cfg.Email, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		owner = created.User.ID
	default:
		return nil, fmt.Errorf("no account for %s (pass -password to create one)", cfg.Email)
	}
	return assessments.ImportLegacy(ctx, owner, rows)
}

// decodeCheckIns accepts a bare array, {"check_ins": [...]}, or a local
// storage dump where mindBalanceCheckIns holds the array as a JSON string.
func decodeCheckIns(raw []byte) ([]services.LegacyCheckIn, error) {
	var rows []services.LegacyCheckIn
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows, nil
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	for _, key := range []string{"check_ins", "mindBalanceCheckIns"} {
		field, ok := wrapped[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(field, &text); err == nil {
			field = json.RawMessage(text)
		}
		if err := json.Unmarshal(field, &rows); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return rows, nil
	}
	return nil, errors.New("no check-ins found (want an array or a check_ins field)")
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	cfg.Store = dbstore.Dialect(utils.SafeEnv("MINDBALANCE_STORE", string(cfg.Store)))
	cfg.SQLitePath = utils.SafeEnv("MINDBALANCE_SQLITE_PATH", cfg.SQLitePath)
	cfg.DatabaseURL = utils.SafeEnv("MINDBALANCE_DATABASE_URL", os.Getenv("DATABASE_URL"))
	cfg.MigrationsDir = utils.SafeEnv("MINDBALANCE_MIGRATIONS_DIR", "")

	fs.SetOutput(os.Stderr)

	var store string
	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Path to the exported mindBalanceCheckIns JSON")
	fs.StringVar(&cfg.Email, "email", "", "Email of the account that owns the check-ins")
	fs.StringVar(&cfg.Name, "name", "", "Display name when the account is created")
	fs.StringVar(&cfg.Password, "password", "", "Create the account with this password when it does not exist")
	fs.StringVar(&store, "store", string(cfg.Store), "Database backend: sqlite or postgres")
	fs.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "SQLite database file")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection URL")
	fs.StringVar(&cfg.MigrationsDir, "migrations", cfg.MigrationsDir, "Directory overriding the embedded migrations")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/import-checkins -in checkins.json -email me@example.com")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/import-checkins -store postgres -database-url postgres://... -email me@example.com -password s3cret")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Store = dbstore.Dialect(strings.ToLower(strings.TrimSpace(store)))
	cfg.InputPath = filepath.Clean(cfg.InputPath)
	cfg.Email = strings.TrimSpace(cfg.Email)
	return cfg, nil
}
