// Package list implements the report history CLI.
package list

import (
	"fmt"
	"sort"
	"time"

	"pocbeacon/internal/beacon"
	"pocbeacon/internal/rpc"
	"pocbeacon/internal/store"
	"pocbeacon/pkg/config"
	"pocbeacon/pkg/logger"
)

// Run prints the recorded beacon reports. A running beaconer is queried over
// its RPC socket; if none is running, the database is opened directly.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	records, err := fetchRecords(cfg)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No beacon reports recorded.")
		return nil
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].LastSeen.After(records[j].LastSeen)
	})

	fmt.Printf("\n  Beacon Reports (%d recorded)\n\n", len(records))
	fmt.Printf("  %-16s %-12s %-10s %-6s %-6s %-20s %s\n",
		"BEACON ID", "FREQ (HZ)", "DATARATE", "BYTES", "COUNT", "LAST SEEN", "SOURCE")
	for _, r := range records {
		source := r.Source
		if source == "" {
			source = "local"
		}
		fmt.Printf("  %-16s %-12d %-10s %-6d %-6d %-20s %s\n",
			r.BeaconID,
			r.Report.Frequency,
			beacon.DataRate(r.Report.DataRate),
			len(r.Report.Data),
			r.Count,
			r.LastSeen.Format(time.RFC3339),
			source,
		)
	}
	fmt.Println()
	return nil
}

func fetchRecords(cfg *config.Config) ([]store.ReportRecord, error) {
	if client, err := rpc.NewClient(cfg.Beaconer.RPCSocket); err == nil {
		defer client.Close()
		return client.ListReports()
	}

	// No beaconer running; read the database directly.
	db, err := store.New(cfg.Beaconer.DBPath, logger.Init("error"))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()
	return db.All()
}
