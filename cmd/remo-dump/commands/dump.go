// Package commands implements the remo-dump subcommands.
package commands

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ciniml/remo-api/pkg/decode"
	"github.com/ciniml/remo-api/pkg/log"
	"github.com/ciniml/remo-api/pkg/model"
	"github.com/ciniml/remo-api/pkg/snapshot"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitDecode       = 2
)

// DumpOptions configures the devices and appliances commands.
type DumpOptions struct {
	Format   string // text, json
	Config   string // YAML limits file
	Snapshot string // snapshot output path
	Truncate bool
	ReadSize int
	Verbose  bool
	File     string // input path, "-" for stdin
}

func parseDumpArgs(name string, args []string) (DumpOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	opts := DumpOptions{}

	fs.StringVar(&opts.Format, "format", "text", "Output format (text, json)")
	fs.StringVar(&opts.Format, "f", "text", "Output format (shorthand)")
	fs.StringVar(&opts.Config, "config", "", "YAML file overriding field-length limits")
	fs.StringVar(&opts.Snapshot, "snapshot", "", "Write decoded state to this CBOR snapshot file")
	fs.BoolVar(&opts.Truncate, "truncate", false, "Shorten over-long string fields instead of failing")
	fs.IntVar(&opts.ReadSize, "read-size", 0, "Transport read chunk size in bytes")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Log decode progress to stderr")

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		opts.File = fs.Arg(0)
	}
	return opts, nil
}

// loadLimits reads a YAML limits file over the defaults. Absent keys keep
// their default values.
func loadLimits(path string) (model.Limits, error) {
	limits := model.DefaultLimits()
	if path == "" {
		return limits, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return limits, err
	}
	if err := yaml.Unmarshal(data, &limits); err != nil {
		return limits, fmt.Errorf("parsing %s: %w", path, err)
	}
	return limits, nil
}

// openInput opens the input document. "-" means stdin, with an unknown
// total length; regular files report their size so decoding works against
// readers that never signal EOF.
func openInput(path string) (io.ReadCloser, int64, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// decodeOptions assembles the decode configuration from CLI options.
func decodeOptions(opts DumpOptions, stderr io.Writer) (*decode.Options, error) {
	limits, err := loadLimits(opts.Config)
	if err != nil {
		return nil, err
	}
	o := &decode.Options{
		Limits:              &limits,
		TruncateLongStrings: opts.Truncate,
		ReadSize:            opts.ReadSize,
	}
	if opts.Verbose {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		o.Logger = log.NewSlogAdapter(slog.New(handler))
	}
	return o, nil
}

// saveSnapshot writes the collected registry when a snapshot path was
// given.
func saveSnapshot(opts DumpOptions, col *snapshot.Collector) error {
	if opts.Snapshot == "" {
		return nil
	}
	return snapshot.NewStore(opts.Snapshot).Save(col.Registry())
}
