// Package derive implements the one-shot offline derivation CLI, used to
// cross-check beacon reproduction against other implementations.
package derive

import (
	"encoding/hex"
	"flag"
	"fmt"

	"pocbeacon/internal/beacon"
	"pocbeacon/internal/region"
)

// Run derives and prints a beacon from entropy supplied on the command line.
func Run(args []string) error {
	fs := flag.NewFlagSet("derive", flag.ContinueOnError)
	remoteHex := fs.String("remote", "", "remote entropy data (hex)")
	remoteTS := fs.Int64("remote-ts", 0, "remote entropy timestamp (epoch seconds)")
	localHex := fs.String("local", "", "local entropy data (hex)")
	localTS := fs.Int64("local-ts", 0, "local entropy timestamp (epoch seconds)")
	version := fs.Uint("entropy-version", 0, "entropy scheme version")
	regionName := fs.String("region", "US915", "region channel plan")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *remoteHex == "" || *localHex == "" {
		fs.Usage()
		return fmt.Errorf("both --remote and --local entropy are required")
	}

	remoteData, err := hex.DecodeString(*remoteHex)
	if err != nil {
		return fmt.Errorf("decoding remote entropy: %w", err)
	}
	localData, err := hex.DecodeString(*localHex)
	if err != nil {
		return fmt.Errorf("decoding local entropy: %w", err)
	}

	params, err := region.Plan(*regionName)
	if err != nil {
		return err
	}

	remote := beacon.Entropy{Version: uint32(*version), Data: remoteData, Timestamp: *remoteTS}
	local := beacon.Entropy{Version: uint32(*version), Data: localData, Timestamp: *localTS}

	b, err := beacon.Derive(remote, local, params)
	if err != nil {
		return fmt.Errorf("deriving beacon: %w", err)
	}

	fmt.Printf("Beacon ID:  %s\n", b.ID())
	fmt.Printf("Frequency:  %d Hz\n", b.Frequency)
	fmt.Printf("Datarate:   %s\n", b.DataRate)
	fmt.Printf("Payload:    %x (%d bytes)\n", b.Data, len(b.Data))
	return nil
}
