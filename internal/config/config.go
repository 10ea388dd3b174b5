// Package config reads server settings from the environment, after loading an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/soaringjerry/MindBalance/internal/utils"
)

type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
)

type Config struct {
	Addr           string
	Store          StoreKind
	SQLitePath     string
	DatabaseURL    string
	MigrationsDir  string
	StaticDir      string
	DevFrontendURL string
	CORSOrigins    []string
	Commit         string
	BuildTime      string
	TrendDays      int
}

// LoadDotEnv loads the given files (".env" when none) into the process
// environment. Variables already set win. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load %s: %w", strings.Join(present, ","), err)
	}
	log.Printf("config: loaded %s", strings.Join(present, ","))
	return nil
}

// Load reads .env (if present) and then the MINDBALANCE_* variables.
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

// FromEnv reads the MINDBALANCE_* variables without touching .env files.
func FromEnv() (Config, error) {
	trendDays, err := utils.SafeEnvInt("MINDBALANCE_TREND_DAYS", 7)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Addr:           utils.SafeEnv("MINDBALANCE_ADDR", ":8080"),
		Store:          StoreKind(strings.ToLower(utils.SafeEnv("MINDBALANCE_STORE", string(StoreSQLite)))),
		SQLitePath:     utils.SafeEnv("MINDBALANCE_SQLITE_PATH", "data/mindbalance.db"),
		DatabaseURL:    utils.SafeEnv("MINDBALANCE_DATABASE_URL", os.Getenv("DATABASE_URL")),
		MigrationsDir:  utils.SafeEnv("MINDBALANCE_MIGRATIONS_DIR", ""),
		StaticDir:      utils.SafeEnv("MINDBALANCE_STATIC_DIR", ""),
		DevFrontendURL: utils.SafeEnv("MINDBALANCE_DEV_FRONTEND_URL", ""),
		CORSOrigins:    utils.SafeEnvList("MINDBALANCE_CORS_ORIGINS"),
		Commit:         utils.SafeEnv("MINDBALANCE_COMMIT", ""),
		BuildTime:      utils.SafeEnv("MINDBALANCE_BUILD_TIME", ""),
		TrendDays:      trendDays,
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("MINDBALANCE_ADDR must not be empty")
	}
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("MINDBALANCE_SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("MINDBALANCE_DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown MINDBALANCE_STORE %q (want memory, sqlite or postgres)", c.Store)
	}
	if c.TrendDays < 0 {
		return errors.New("MINDBALANCE_TREND_DAYS must be >= 0")
	}
	return nil
}
