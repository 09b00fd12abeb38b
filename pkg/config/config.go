// Package config provides TOML configuration loading for pocbeacon.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration structure.
type Config struct {
	Beaconer BeaconerConfig `toml:"beaconer"`
	Ingest   IngestConfig   `toml:"ingest"`
}

// BeaconerConfig holds settings for the beacon derivation and submission loop.
type BeaconerConfig struct {
	EntropyURL     string   `toml:"entropy_url"`
	Region         string   `toml:"region"`
	Channels       []uint64 `toml:"channels"`
	Interval       string   `toml:"interval"`
	FetchTimeout   string   `toml:"fetch_timeout"`
	Interface      string   `toml:"interface"`
	IngestAddress  string   `toml:"ingest_address"`
	MulticastGroup string   `toml:"multicast_group"`
	Port           int      `toml:"port"`
	SharedSecret   string   `toml:"shared_secret"`
	DBPath         string   `toml:"db_path"`
	RPCSocket      string   `toml:"rpc_socket"`
	MaxAge         string   `toml:"max_age"`
	LogLevel       string   `toml:"log_level"`
}

// IngestConfig holds settings for the report ingest listener.
type IngestConfig struct {
	Interface      string `toml:"interface"`
	MulticastGroup string `toml:"multicast_group"`
	Port           int    `toml:"port"`
	SharedSecret   string `toml:"shared_secret"`
	DBPath         string `toml:"db_path"`
	MaxAge         string `toml:"max_age"`
	LogLevel       string `toml:"log_level"`
}

// ParseInterval parses the beacon interval string to a time.Duration.
func (b *BeaconerConfig) ParseInterval() (time.Duration, error) {
	if b.Interval == "" {
		return 6 * time.Hour, nil
	}
	return time.ParseDuration(b.Interval)
}

// ParseFetchTimeout parses the entropy fetch timeout string.
func (b *BeaconerConfig) ParseFetchTimeout() (time.Duration, error) {
	if b.FetchTimeout == "" {
		return 10 * time.Second, nil
	}
	return time.ParseDuration(b.FetchTimeout)
}

// ParseMaxAge parses the beaconer record retention string.
func (b *BeaconerConfig) ParseMaxAge() (time.Duration, error) {
	if b.MaxAge == "" {
		return 168 * time.Hour, nil
	}
	return time.ParseDuration(b.MaxAge)
}

// ParseMaxAge parses the ingest record retention string.
func (i *IngestConfig) ParseMaxAge() (time.Duration, error) {
	if i.MaxAge == "" {
		return 168 * time.Hour, nil
	}
	return time.ParseDuration(i.MaxAge)
}

// Load reads and parses a TOML config file, applying defaults for unset values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(cfg)
	cfg.expandPaths()
	return cfg, nil
}

func (cfg *Config) expandPaths() {
	cfg.Beaconer.DBPath = ExpandPath(cfg.Beaconer.DBPath)
	cfg.Ingest.DBPath = ExpandPath(cfg.Ingest.DBPath)
}

// ExpandPath expands tilde (~) to the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	usr, err := user.Current()
	if err != nil {
		return path
	}
	if path == "~" {
		return usr.HomeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(usr.HomeDir, path[2:])
	}
	return path
}

func applyDefaults(cfg *Config) {

	// Beaconer defaults
	if cfg.Beaconer.Region == "" {
		cfg.Beaconer.Region = "US915"
	}
	if cfg.Beaconer.Interval == "" {
		cfg.Beaconer.Interval = "6h"
	}
	if cfg.Beaconer.FetchTimeout == "" {
		cfg.Beaconer.FetchTimeout = "10s"
	}
	if cfg.Beaconer.MulticastGroup == "" {
		cfg.Beaconer.MulticastGroup = "239.255.70.70"
	}
	if cfg.Beaconer.Port == 0 {
		cfg.Beaconer.Port = 5870
	}
	if cfg.Beaconer.DBPath == "" {
		cfg.Beaconer.DBPath = "/var/lib/pocbeacon/reports.db"
	}
	if cfg.Beaconer.RPCSocket == "" {
		cfg.Beaconer.RPCSocket = "/run/pocbeacon/beaconer.sock"
	}
	if cfg.Beaconer.MaxAge == "" {
		cfg.Beaconer.MaxAge = "168h"
	}
	if cfg.Beaconer.LogLevel == "" {
		cfg.Beaconer.LogLevel = "info"
	}

	// Ingest defaults
	if cfg.Ingest.MulticastGroup == "" {
		cfg.Ingest.MulticastGroup = cfg.Beaconer.MulticastGroup
	}
	if cfg.Ingest.Port == 0 {
		cfg.Ingest.Port = cfg.Beaconer.Port
	}
	if cfg.Ingest.SharedSecret == "" {
		cfg.Ingest.SharedSecret = cfg.Beaconer.SharedSecret
	}
	if cfg.Ingest.DBPath == "" {
		cfg.Ingest.DBPath = "/var/lib/pocbeacon/ingest.db"
	}
	if cfg.Ingest.MaxAge == "" {
		cfg.Ingest.MaxAge = "168h"
	}
	if cfg.Ingest.LogLevel == "" {
		cfg.Ingest.LogLevel = cfg.Beaconer.LogLevel
	}
}
