// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Command settle executes one settlement run, or a read-only validation,
// and prints the result as JSON on stdout.
//
//	settle                          # yesterday, store-local
//	settle -date 2024-03-02
//	settle -from 2024-03-01 -to 2024-03-07
//	settle -validate -from 2024-03-01 -to 2024-03-07
//	settle -config /etc/playledger/config.yaml -date 2024-03-02
//
// The exit status is 0 on success, 1 when the run failed or validation found
// mismatches, and 2 for usage errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/tomtom215/playledger/internal/app"
	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/models"
	"github.com/tomtom215/playledger/internal/orchestrator"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	programName = "settle"
)

// options are the parsed command line.
type options struct {
	configPath string
	from       string
	to         string
	validate   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		return exitUsage
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		return exitFailed
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    stderr,
	})

	pipeline, err := app.Build(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to build settlement pipeline")
		return exitFailed
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing pipeline")
		}
	}()

	if opts.validate {
		return validate(ctx, pipeline.Orchestrator, opts, stdout)
	}
	return settle(ctx, pipeline.Orchestrator, opts, stdout)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var (
		opts options
		date string
	)
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "config file (default: CONFIG_PATH or config.yaml search)")
	fs.StringVar(&date, "date", "", "settle a single store-local date (YYYY-MM-DD)")
	fs.StringVar(&opts.from, "from", "", "first store-local date of a range (YYYY-MM-DD)")
	fs.StringVar(&opts.to, "to", "", "last store-local date of a range, defaults to -from")
	fs.BoolVar(&opts.validate, "validate", false, "recompute and compare stored daily stats without writing")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if date != "" {
		if opts.from != "" || opts.to != "" {
			return opts, errors.New("-date cannot be combined with -from or -to")
		}
		opts.from, opts.to = date, date
	}
	if opts.to != "" && opts.from == "" {
		return opts, errors.New("-to requires -from")
	}
	return opts, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

// Settler is the subset of the orchestrator the command drives.
type Settler interface {
	Run(ctx context.Context, req orchestrator.Request) (*models.RunSummary, error)
	Validate(ctx context.Context, from, to string) (*models.ValidationReport, error)
}

func settle(ctx context.Context, s Settler, opts options, stdout io.Writer) int {
	summary, err := s.Run(ctx, orchestrator.Request{From: opts.from, To: opts.to, Trigger: models.TriggerCLI})
	if summary != nil {
		if werr := writeJSON(stdout, summary); werr != nil {
			logging.Error().Err(werr).Msg("Failed to write run summary")
			return exitFailed
		}
	}
	if err != nil {
		logging.Error().Err(err).Msg("Settlement run failed")
		return exitFailed
	}
	if !summary.Success {
		return exitFailed
	}
	return exitOK
}

func validate(ctx context.Context, s Settler, opts options, stdout io.Writer) int {
	report, err := s.Validate(ctx, opts.from, opts.to)
	if err != nil {
		logging.Error().Err(err).Msg("Validation failed")
		return exitFailed
	}
	if err := writeJSON(stdout, report); err != nil {
		logging.Error().Err(err).Msg("Failed to write validation report")
		return exitFailed
	}
	if len(report.Mismatches) > 0 {
		logging.Warn().Int("mismatches", len(report.Mismatches)).Msg("Stored daily stats differ from recomputation")
		return exitFailed
	}
	return exitOK
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
