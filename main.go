// pocbeacon — Proof-of-Coverage Beacon Toolkit
//
// Usage:
//
//	pocbeacon beaconer — derive and submit beacons on an interval
//	pocbeacon ingest   — capture beacon reports and store them
//	pocbeacon derive   — one-shot offline derivation from given entropy
//	pocbeacon list     — print the recorded beacon reports
package main

import (
	"fmt"
	"os"

	"pocbeacon/cmd/beaconer"
	"pocbeacon/cmd/derive"
	"pocbeacon/cmd/ingest"
	"pocbeacon/cmd/list"
)

const (
	defaultSystemPath = "/etc/pocbeacon/config.toml"
	defaultLocalPath  = "config.toml"
	version           = "0.3.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	configPath := ""

	// Parse --config flag if present
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" && i+1 < len(args) {
			configPath = args[i+1]
			args = append(args[:i], args[i+2:]...)
			i--
			continue
		}
		if len(arg) > 9 && arg[:9] == "--config=" {
			configPath = arg[9:]
			args = append(args[:i], args[i+1:]...)
			i--
			continue
		}
	}

	// Auto-discover config if not specified
	if configPath == "" {
		if _, err := os.Stat(defaultLocalPath); err == nil {
			configPath = defaultLocalPath
		} else {
			configPath = defaultSystemPath
		}
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	subcommand := args[0]
	var err error

	switch subcommand {
	case "beaconer":
		err = beaconer.Run(configPath)
	case "ingest":
		err = ingest.Run(configPath)
	case "derive":
		err = derive.Run(args[1:])
	case "list":
		err = list.Run(configPath)
	case "edit":
		err = beaconer.EditConfig(configPath)
	case "version":
		fmt.Printf("pocbeacon v%s\n", version)
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`pocbeacon v%s — Proof-of-Coverage Beacon Toolkit

Usage:
  pocbeacon <command> [--config <path>]

Commands:
  beaconer Start the beacon derivation and submission loop
  ingest   Start the report ingest listener
  derive   Derive a beacon offline from entropy given on the command line
  list     Print the recorded beacon reports
  edit     Edit the configuration file in your system editor
  version  Print version information
  help     Show this help message

Options:
  --config <path>  Path to config file (default: looks for ./config.toml, then %s)

Examples:
  pocbeacon beaconer                    # Start beaconing with default config
  pocbeacon edit                        # Edit configuration
  pocbeacon derive --remote 00ff --local a1b2 --region US915
  pocbeacon list                        # Show report history

`, version, defaultSystemPath)
}
