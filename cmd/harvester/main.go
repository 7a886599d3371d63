// cmd/harvester/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/hscicharvest/internal/config"
	"github.com/valpere/hscicharvest/internal/errors"
	"github.com/valpere/hscicharvest/internal/monitoring"
	"github.com/valpere/hscicharvest/internal/pipeline"
	"github.com/valpere/hscicharvest/internal/scraper"
	"github.com/valpere/hscicharvest/internal/utils"
)

// Version information (set during build)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// metricsNamespace prefixes every exported metric
const metricsNamespace = "harvester"

// options holds the global flags
type options struct {
	configFile string
	verbose    bool
}

// runner builds one harvest run from configuration
type runner func(cfg *config.Config, fetcher scraper.Fetcher, logger utils.Logger, metrics *monitoring.Metrics) (harvest, error)

// harvest is a configured run ready to execute
type harvest interface {
	Run(ctx context.Context) (*pipeline.RunSummary, error)
}

func main() {
	opts := &options{}
	root := newRootCommand(opts, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()

	if err != nil {
		errorService := errors.NewService().WithVerbose(opts.verbose)
		fmt.Fprint(os.Stderr, errorService.FormatErrorForCLI(err))
		os.Exit(errorService.GetExitCode(err))
	}
}

// newRootCommand assembles the command tree writing to out
func newRootCommand(opts *options, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "harvester",
		Short:         "Harvest dataset and indicator metadata from the health catalogue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "configuration file (defaults are used when omitted)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging and technical error details")

	root.AddCommand(
		newRunCommand(opts, "datasets", "Harvest every dataset reachable through the catalogue taxonomies", pipeline.RunDatasets,
			func(cfg *config.Config, fetcher scraper.Fetcher, logger utils.Logger, metrics *monitoring.Metrics) (harvest, error) {
				return pipeline.NewDatasetRun(cfg, fetcher, logger, metrics)
			}),
		newRunCommand(opts, "indicators", "Harvest the configured range of indicator pages", pipeline.RunIndicators,
			func(cfg *config.Config, fetcher scraper.Fetcher, logger utils.Logger, metrics *monitoring.Metrics) (harvest, error) {
				return pipeline.NewIndicatorRun(cfg, fetcher, logger, metrics)
			}),
		newValidateCommand(opts),
		newTemplateCommand(),
		newVersionCommand(),
	)
	return root
}

func newRunCommand(opts *options, use, short, run string, build runner) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configFile)
			if err != nil {
				return err
			}

			logger, err := newRunLogger(cfg, run, opts.verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			metrics := monitoring.NewMetrics(metricsNamespace)
			client := scraper.NewHTTPClient(scraper.ClientConfig{
				Timeout:   cfg.RequestTimeout,
				UserAgent: cfg.UserAgent,
				Headers:   cfg.Headers,
			}, logger, metrics)
			defer client.Close()

			h, err := build(cfg, client, logger, metrics)
			if err != nil {
				return err
			}

			summary, runErr := h.Run(cmd.Context())

			if cfg.MetricsFile != "" {
				if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
					logger.Warnf("Could not write metrics: %v", err)
				}
			}
			if runErr != nil {
				logger.Errorf("%s run failed: %v", run, runErr)
				return runErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items, %d records written, %d skipped\n",
				run, summary.ItemsSeen, summary.RecordsWritten, summary.Failures)
			return nil
		},
	}
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config.yaml]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("configuration file required")
			}
			if _, err := config.LoadFromFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid\n", path)
			return nil
		},
	}
}

func newTemplateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Print a configuration file with every default filled in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.SaveToWriter(config.Default(), cmd.OutOrStdout())
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "harvester %s\n", version)
			fmt.Fprintf(out, "Build time: %s\n", buildTime)
			fmt.Fprintf(out, "Git commit: %s\n", gitCommit)
		},
	}
}

// loadConfig reads path, or returns the defaults when no file is given
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

// newRunLogger writes to the run's log file and tags every line with a fresh run id
func newRunLogger(cfg *config.Config, run string, verbose bool) (utils.Logger, error) {
	logFile := cfg.Datasets.LogFile
	if run == pipeline.RunIndicators {
		logFile = cfg.Indicators.LogFile
	}

	level := utils.ParseLogLevel(cfg.Log.Level)
	if verbose {
		level = utils.DebugLevel
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:   level,
		File:    logFile,
		Console: cfg.Log.Console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger.WithFields(map[string]interface{}{
		"run":    run,
		"run_id": uuid.NewString(),
	}), nil
}
