package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/inventory/internal/core"
	"github.com/JonMunkholm/inventory/internal/export"
	"github.com/JonMunkholm/inventory/internal/logging"
	"github.com/JonMunkholm/inventory/internal/render"
	"github.com/JonMunkholm/inventory/internal/scheduler"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "inventory",
		Short:         "Consolidate product inventory files",
		Long:          "Reads every inventory file in a directory, merges them into one deduplicated dataset and answers questions about it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file (default $INVENTORY_CONFIG)")
	flags.StringVarP(&a.dataDir, "data-dir", "d", "", "directory holding inventory files")
	flags.IntVar(&a.threshold, "threshold", 0, "low-stock alert threshold (inclusive)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newListCmd(a),
		newSearchCmd(a),
		newReportCmd(a),
		newAlertsCmd(a),
		newWatchCmd(a),
	)
	return root
}

func newListCmd(a *app) *cobra.Command {
	var (
		sortBy    string
		desc      bool
		showFiles bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the consolidated inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithRunID(cmd.Context())
			store, ds, err := a.consolidate(ctx)
			if err != nil {
				return err
			}
			snap, err := store.Snapshot()
			if err != nil {
				return err
			}

			records := snap.Records()
			if sortBy != "" {
				if records, err = core.SortRecords(records, strings.ToLower(sortBy), desc); err != nil {
					return err
				}
			}

			if showFiles {
				if err := render.Files(a.stdout, ds.Files); err != nil {
					return err
				}
			}
			return render.Records(a.stdout, "Inventory", records)
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort-by", "", "sort by: "+strings.Join(core.SortFields, ", "))
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&showFiles, "files", false, "also show per-file ingestion results")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		q        core.Query
		minPrice float64
		maxPrice float64
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find products by name, category, price or stock level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min-price") {
				q.MinPrice = core.Price(minPrice)
			}
			if cmd.Flags().Changed("max-price") {
				q.MaxPrice = core.Price(maxPrice)
			}

			ctx := logging.WithRunID(cmd.Context())
			store, _, err := a.consolidate(ctx)
			if err != nil {
				return err
			}
			found, err := store.Search(q)
			if err != nil {
				return err
			}
			logging.FromContext(ctx, a.logger).Debug("search completed", "matches", len(found))
			return render.Records(a.stdout, "Search results", found)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&q.Name, "name", "n", "", "name contains (case-insensitive)")
	f.StringVarP(&q.Category, "category", "c", "", "exact category")
	f.Float64Var(&minPrice, "min-price", 0, "minimum unit price (inclusive)")
	f.Float64Var(&maxPrice, "max-price", 0, "maximum unit price (inclusive)")
	f.BoolVar(&q.LowStock, "low-stock", false, fmt.Sprintf("only products with fewer than %d units", core.ReportLowStockLimit))
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the summary report, optionally displaying it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("output") {
				a.cfg.Report.Output = output
			}
			if cmd.Flags().Changed("format") {
				a.cfg.Report.Format = format
			}

			ctx := logging.WithRunID(cmd.Context())
			store, _, err := a.consolidate(ctx)
			if err != nil {
				return err
			}

			mode := strings.ToLower(a.cfg.Report.Format)
			if mode != "csv" && mode != "console" {
				return fmt.Errorf("unknown report format %q (want csv or console)", a.cfg.Report.Format)
			}

			rep, err := store.WriteReport(export.CSVWriter{}, a.cfg.Report.Output)
			if err != nil {
				return err
			}
			if mode == "csv" {
				fmt.Fprintf(a.stdout, "Report written to %s (%d rows)\n", a.cfg.Report.Output, rep.Len())
				return nil
			}

			// Console output is rendered from the file just written.
			saved, err := export.ReadReport(a.cfg.Report.Output)
			if err != nil {
				return err
			}
			return render.Report(a.stdout, saved)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "report file path (default from REPORT_OUTPUT)")
	cmd.Flags().StringVar(&format, "format", "", "csv or console (default from REPORT_FORMAT)")
	cmd.AddCommand(newReportShowCmd(a))
	return cmd
}

// newReportShowCmd renders a previously written report file without touching
// the data directory.
func newReportShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [PATH]",
		Short: "Display a saved report file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Report.Output
			if len(args) == 1 {
				path = args[0]
			}
			rep, err := export.ReadReport(path)
			if err != nil {
				return err
			}
			return render.Report(a.stdout, rep)
		},
	}
}

func newAlertsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "List products at or below the low-stock threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithRunID(cmd.Context())
			store, _, err := a.consolidate(ctx)
			if err != nil {
				return err
			}
			alerts, err := store.Alerts()
			if err != nil {
				return err
			}
			return render.Alerts(a.stdout, alerts)
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		cronSpec   string
		output     string
		watchFiles bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-consolidate on a schedule and write the report after each run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("cron") {
				a.cfg.Schedule.Cron = cronSpec
			}
			if f.Changed("output") {
				a.cfg.Report.Output = output
			}
			if f.Changed("watch-files") {
				a.cfg.Schedule.Watch = watchFiles
			}

			ctx := cmd.Context()
			s := scheduler.New(scheduler.Config{
				Cron:      a.cfg.Schedule.Cron,
				Watch:     a.cfg.Schedule.Watch,
				Dir:       a.cfg.Data.Dir,
				Extension: a.cfg.Data.Extension,
				Debounce:  a.cfg.Schedule.Debounce,
			}, a.refresh, a.logger)

			if err := s.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Watching %s (schedule %s). Press Ctrl+C to stop.\n", a.cfg.Data.Dir, a.cfg.Schedule.Cron)

			<-ctx.Done()
			s.Stop()
			return ctx.Err()
		},
	}

	f := cmd.Flags()
	f.StringVar(&cronSpec, "cron", "", "cron schedule, e.g. \"*/15 * * * *\" or \"@every 10m\"")
	f.StringVarP(&output, "output", "o", "", "report file path (default from REPORT_OUTPUT)")
	f.BoolVar(&watchFiles, "watch-files", false, "also run when files in the data directory change")
	return cmd
}

// refresh is one scheduled run: ingest, check alerts and rewrite the report.
func (a *app) refresh(ctx context.Context) error {
	store, ds, err := a.consolidate(ctx)
	if err != nil {
		return err
	}
	if _, err := store.Alerts(); err != nil {
		return err
	}
	if _, err := store.WriteReport(export.CSVWriter{}, a.cfg.Report.Output); err != nil {
		return err
	}
	if skipped := ds.SkippedFiles(); len(skipped) > 0 {
		if err := render.Files(a.stderr, skipped); err != nil {
			return err
		}
	}
	return nil
}
