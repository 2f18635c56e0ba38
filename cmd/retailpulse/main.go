// Package main provides the retailpulse binary entry point.
// RetailPulse loads retail transaction CSV files, segments customers,
// computes the analytical views and serves them to a local viewer.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"retailpulse/internal/app"
	"retailpulse/internal/config"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/services"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// overrides are command-line values applied on top of the loaded config.
type overrides struct {
	configPath string
	input      string
	outputDir  string
	catalog    string
	port       int
	watch      bool
}

func rootCmd() *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "retailpulse",
		Short: "Retail transaction analytics",
		Long: `RetailPulse analyses retail transaction exports.

It provides:
- Loading and normalising one or more transaction CSV files
- Customer segmentation and cross-sell recommendations
- Sales, customer, product, payment and temporal views
- CSV and workbook exports plus a local viewer with a live feed`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVarP(&o.input, "input", "i", "", "Input CSV file, directory or glob")
	cmd.PersistentFlags().StringVarP(&o.outputDir, "output-dir", "o", "", "Directory for exported files")
	cmd.PersistentFlags().StringVar(&o.catalog, "recommendations", "", "YAML file with up-sell and cross-sell tables")

	analyze := &cobra.Command{
		Use:   "analyze",
		Short: "Run the pipeline once and export the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), o, cmd.OutOrStdout())
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline and serve the viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), o, cmd.Flags().Changed("watch"))
		},
	}
	serve.Flags().IntVarP(&o.port, "port", "p", 0, "Port for the viewer (overrides config)")
	serve.Flags().BoolVarP(&o.watch, "watch", "w", false, "Re-run the pipeline when the input changes")

	cmd.AddCommand(analyze, serve, &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			build := app.BuildTime
			if build == "" {
				build = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", config.AppName, app.Version, build)
		},
	})

	return cmd
}

// loadConfig reads the config file and applies the command-line overrides.
func loadConfig(o overrides) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.input != "" {
		cfg.Paths.Input = o.input
	}
	if o.outputDir != "" {
		cfg.Paths.OutputDir = o.outputDir
	}
	if o.catalog != "" {
		cfg.Paths.RecommendationsFile = o.catalog
	}
	if o.port != 0 {
		cfg.Server.Port = o.port
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setup(o overrides) (*app.Application, func(), error) {
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, nil, err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		_ = infrastructure.CloseLogFile()
		return nil, nil, err
	}
	return a, func() { _ = infrastructure.CloseLogFile() }, nil
}

func runAnalyze(ctx context.Context, o overrides, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, cleanup, err := setup(o)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() {
		if err := a.OTelProviders.Shutdown(context.Background()); err != nil {
			a.Logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	snap, err := a.Analyze(ctx)
	if err != nil {
		return err
	}
	printSummary(out, snap)
	return nil
}

func runServe(ctx context.Context, o overrides, watchSet bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := setup(o)
	if err != nil {
		return err
	}
	defer cleanup()
	if watchSet {
		a.Config.Analytics.Watch = o.watch
	}

	ln, err := a.Listen()
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// printSummary writes the run outcome in a form meant for a terminal.
func printSummary(w io.Writer, snap *services.Snapshot) {
	fmt.Fprintf(w, "Run %s (%s)\n", snap.RunID, snap.Trigger)
	fmt.Fprintf(w, "  records:  %d from %d source(s)\n", snap.Records, len(snap.Sources))
	fmt.Fprintf(w, "  duration: %s\n", snap.Duration)
	for _, st := range snap.Stages {
		fmt.Fprintf(w, "    %-16s %s\n", st.Stage, st.Duration)
	}

	if len(snap.Exports) > 0 {
		fmt.Fprintln(w, "Exports:")
		for _, path := range snap.Exports {
			fmt.Fprintf(w, "  %s\n", path)
		}
	}

	if snap.Report != nil {
		printFailures(w, "Unavailable views:", snap.Report.Failures())
	}
	if snap.Quality != nil {
		printFailures(w, "Failed quality checks:", snap.Quality.CheckErrors)
	}
}

func printFailures(w io.Writer, heading string, failures map[string]string) {
	if len(failures) == 0 {
		return
	}
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, heading)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, failures[name])
	}
}
