// Package ingest implements the report ingest CLI entry point.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pocbeacon/internal/ingest"
	"pocbeacon/internal/store"
	"pocbeacon/pkg/config"
	"pocbeacon/pkg/logger"
)

// Run starts the report ingest listener.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.Init(cfg.Ingest.LogLevel)

	if cfg.Ingest.SharedSecret == "" || cfg.Ingest.SharedSecret == "CHANGE_ME" {
		return fmt.Errorf("shared_secret must be set in config (not 'CHANGE_ME')")
	}

	dbDir := filepath.Dir(cfg.Ingest.DBPath)
	if err := os.MkdirAll(dbDir, 0700); err != nil {
		return fmt.Errorf("creating database directory %s: %w", dbDir, err)
	}

	db, err := store.New(cfg.Ingest.DBPath, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	maxAge, err := cfg.Ingest.ParseMaxAge()
	if err != nil {
		return fmt.Errorf("parsing max age: %w", err)
	}
	db.RunExpiry(time.Hour, maxAge)

	return ingest.StartListener(
		cfg.Ingest.Interface,
		cfg.Ingest.MulticastGroup,
		cfg.Ingest.Port,
		cfg.Ingest.SharedSecret,
		db,
		log,
	)
}
