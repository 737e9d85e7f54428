package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/inventory/internal/config"
	"github.com/JonMunkholm/inventory/internal/core"
	"github.com/JonMunkholm/inventory/internal/logging"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

// app carries what every command needs. It is filled in by the root
// command's PersistentPreRunE, so the logger is built exactly once per
// process.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// Global flag values; only applied when set on the command line.
	configPath string
	dataDir    string
	threshold  int
	logLevel   string

	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.shutdown()

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		fmt.Fprintln(stderr, "Interrupted.")
		return exitInterrupted
	default:
		if core.IsUserFacing(err) {
			fmt.Fprintf(stderr, "Error: %s\n", core.FormatUserError(err))
			fmt.Fprintf(stderr, "Detail: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitFailure
	}
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = os.Getenv(config.FileEnv)
	}
	cfg, err := config.Read(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.Data.Dir = a.dataDir
	}
	if flags.Changed("threshold") {
		cfg.Stock.Threshold = a.threshold
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		File:    cfg.Logging.LogFile(),
		Console: a.stderr,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.closeLog = closeLog

	logger.Debug("configuration loaded",
		"data_dir", cfg.Data.Dir,
		"threshold", cfg.Stock.Threshold,
		"workers", cfg.Ingest.Workers,
		"validate_rows", cfg.Ingest.ValidateRows,
	)
	return nil
}

func (a *app) shutdown() {
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil {
			fmt.Fprintf(a.stderr, "close log file: %v\n", err)
		}
		a.closeLog = nil
	}
}

// consolidate ingests the data directory into a fresh store.
func (a *app) consolidate(ctx context.Context) (*core.Store, *core.Dataset, error) {
	ingester := core.NewIngester(core.IngestOptions{
		Extension:   a.cfg.Data.Extension,
		Workers:     a.cfg.Ingest.Workers,
		MaxFileSize: a.cfg.Ingest.MaxFileSize,
		Lenient:     !a.cfg.Ingest.ValidateRows,
	}, a.logger)

	ds, err := ingester.Ingest(ctx, a.cfg.Data.Dir)
	if err != nil {
		return nil, nil, err
	}

	store := core.NewStore(a.logger)
	if err := store.SetThreshold(a.cfg.Stock.Threshold); err != nil {
		return nil, nil, err
	}
	if err := store.Load(ds); err != nil {
		return nil, nil, err
	}
	return store, ds, nil
}
