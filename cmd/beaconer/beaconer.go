// Package beaconer implements the beacon derivation and submission loop.
package beaconer

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pocbeacon/internal/beacon"
	"pocbeacon/internal/entropy"
	"pocbeacon/internal/region"
	"pocbeacon/internal/report"
	"pocbeacon/internal/rpc"
	"pocbeacon/internal/store"
	"pocbeacon/pkg/config"
	"pocbeacon/pkg/logger"
)

// Run starts the beaconer.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.Init(cfg.Beaconer.LogLevel)

	if cfg.Beaconer.SharedSecret == "" || cfg.Beaconer.SharedSecret == "CHANGE_ME" {
		return fmt.Errorf("shared_secret must be set in config (not 'CHANGE_ME')")
	}
	if cfg.Beaconer.EntropyURL == "" {
		return fmt.Errorf("entropy_url must be set in config")
	}

	// Channel plan: explicit channel list wins over the named region.
	var params []beacon.RegionParameter
	if len(cfg.Beaconer.Channels) > 0 {
		params = region.FromFrequencies(cfg.Beaconer.Channels)
	} else {
		params, err = region.Plan(cfg.Beaconer.Region)
		if err != nil {
			return fmt.Errorf("resolving region: %w", err)
		}
	}

	// Ensure database directory exists
	dbDir := filepath.Dir(cfg.Beaconer.DBPath)
	if err := os.MkdirAll(dbDir, 0700); err != nil {
		return fmt.Errorf("creating database directory %s: %w", dbDir, err)
	}

	// Ensure RPC socket directory exists
	sockDir := filepath.Dir(cfg.Beaconer.RPCSocket)
	if err := os.MkdirAll(sockDir, 0700); err != nil {
		return fmt.Errorf("creating socket directory %s: %w", sockDir, err)
	}

	db, err := store.New(cfg.Beaconer.DBPath, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	maxAge, err := cfg.Beaconer.ParseMaxAge()
	if err != nil {
		return fmt.Errorf("parsing max age: %w", err)
	}
	db.RunExpiry(time.Hour, maxAge)

	// RPC server for 'pocbeacon list' to query this beaconer
	if err := rpc.StartServer(cfg.Beaconer.RPCSocket, db, log); err != nil {
		return fmt.Errorf("starting RPC server: %w", err)
	}

	fetchTimeout, err := cfg.Beaconer.ParseFetchTimeout()
	if err != nil {
		return fmt.Errorf("parsing fetch timeout: %w", err)
	}
	entropyClient := entropy.NewClient(cfg.Beaconer.EntropyURL, fetchTimeout, log)

	submitter, err := report.NewSubmitter(
		cfg.Beaconer.Interface,
		cfg.Beaconer.IngestAddress,
		cfg.Beaconer.MulticastGroup,
		cfg.Beaconer.Port,
		cfg.Beaconer.SharedSecret,
		log,
	)
	if err != nil {
		return fmt.Errorf("creating submitter: %w", err)
	}
	defer submitter.Close()

	interval, err := cfg.Beaconer.ParseInterval()
	if err != nil {
		return fmt.Errorf("parsing interval: %w", err)
	}

	log.Info().
		Str("entropy_url", cfg.Beaconer.EntropyURL).
		Str("region", cfg.Beaconer.Region).
		Int("channels", len(params)).
		Dur("interval", interval).
		Msg("Beaconer started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	beaconOnce(entropyClient, params, submitter, db, fetchTimeout, log)
	for {
		select {
		case <-ticker.C:
			beaconOnce(entropyClient, params, submitter, db, fetchTimeout, log)
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("Shutting down")
			return nil
		}
	}
}

// beaconOnce runs a single derive-and-report attempt. Failures abort the
// attempt, never the loop.
func beaconOnce(client *entropy.Client, params []beacon.RegionParameter, submitter *report.Submitter, db *store.Store, fetchTimeout time.Duration, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	remote, err := client.Fetch(ctx)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch remote entropy")
		return
	}

	local, err := entropy.Local()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate local entropy")
		return
	}

	b, err := beacon.Derive(remote, local, params)
	if err != nil {
		log.Error().Err(err).Msg("Beacon derivation failed")
		return
	}

	seen, err := db.Seen(b.ID())
	if err != nil {
		log.Error().Err(err).Msg("Failed to check beacon history")
		return
	}
	if seen {
		log.Warn().Str("beacon_id", b.ID()).Msg("Beacon already submitted, skipping")
		return
	}

	rep, err := report.Build(b, time.Now)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build report")
		return
	}

	if err := submitter.Submit(rep); err != nil {
		log.Error().Err(err).Msg("Failed to submit report")
		return
	}

	if _, err := db.Save(rep, ""); err != nil {
		log.Error().Err(err).Msg("Failed to record report")
	}

	log.Info().
		Str("beacon_id", b.ID()).
		Uint64("frequency", b.Frequency).
		Str("datarate", b.DataRate.String()).
		Int("payload_bytes", len(b.Data)).
		Msg("Beacon reported")
}
