package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/soaringjerry/MindBalance/internal/api"
	"github.com/soaringjerry/MindBalance/internal/config"
	dbstore "github.com/soaringjerry/MindBalance/internal/db"
)

// storeOpener is replaced in tests.
var storeOpener = openStore

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore selects the backend named by cfg.Store, running migrations for
// the SQL backends. The returned closer releases the database handle.
func openStore(ctx context.Context, cfg config.Config) (api.Store, io.Closer, error) {
	switch cfg.Store {
	case config.StoreMemory:
		log.Printf("store: memory (data is lost on restart)")
		return api.NewMemoryStore(), nopCloser{}, nil
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.ToSlash(cfg.SQLitePath))
		st, err := dbstore.Open(ctx, dbstore.DialectSQLite, dsn, cfg.MigrationsDir)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("store: sqlite at %s", cfg.SQLitePath)
		return st, st, nil
	case config.StorePostgres:
		st, err := dbstore.Open(ctx, dbstore.DialectPostgres, cfg.DatabaseURL, cfg.MigrationsDir)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("store: postgres")
		return st, st, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}
