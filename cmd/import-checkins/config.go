package main

import (
	"fmt"
	"path/filepath"
	"strings"

	dbstore "github.com/soaringjerry/MindBalance/internal/db"
)

type Config struct {
	InputPath     string
	Email         string
	Name          string
	Password      string
	Store         dbstore.Dialect
	SQLitePath    string
	DatabaseURL   string
	MigrationsDir string
}

func (c Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("missing -in")
	}
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("missing -email")
	}
	switch c.Store {
	case dbstore.DialectSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("missing -sqlite")
		}
	case dbstore.DialectPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing -database-url")
		}
	default:
		return fmt.Errorf("unsupported -store %q (want sqlite or postgres)", c.Store)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InputPath:  filepath.FromSlash("mindBalanceCheckIns.json"),
		Store:      dbstore.DialectSQLite,
		SQLitePath: filepath.FromSlash("data/mindbalance.db"),
	}
}
