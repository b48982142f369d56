// remo-dump is a CLI tool for streaming device-registry documents into
// typed records, with optional snapshot persistence.
package main

import (
	"fmt"
	"os"

	"github.com/ciniml/remo-api/cmd/remo-dump/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "devices":
		exitCode = commands.RunDevices(args, os.Stdout, os.Stderr)
	case "appliances":
		exitCode = commands.RunAppliances(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Println("remo-dump version 0.1.0")
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`remo-dump - stream device-registry JSON into typed records

Usage:
  remo-dump <command> [options] <file>

Commands:
  devices     Decode a devices document
  appliances  Decode an appliances document

Options:
  -h, --help     Show this help message
  -v, --version  Show version information

Examples:
  remo-dump devices devices.json
  remo-dump devices --format json devices.json
  remo-dump appliances --snapshot state.cbor appliances.json
  curl -s https://api.nature.global/1/devices | remo-dump devices -

For command-specific help, run:
  remo-dump <command> --help`)
}
