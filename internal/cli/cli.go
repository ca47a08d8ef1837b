package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pfrederiksen/conf-authors/internal/browser"
	"github.com/pfrederiksen/conf-authors/internal/config"
	"github.com/pfrederiksen/conf-authors/internal/logger"
	"github.com/pfrederiksen/conf-authors/internal/report"
	"github.com/pfrederiksen/conf-authors/internal/session"
	"github.com/pfrederiksen/conf-authors/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version is reported by --version
var Version = "dev"

type options struct {
	author      bool
	affiliation bool
	configPath  string
	envFile     string
	resultsDir  string
	format      string
	refresh     bool
	verbose     bool
	logLevel    string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "conf-authors",
		Short: "Cross-reference conference authors across years",
		Long: `A CLI tool that scrapes the accepted papers of a conference from the ACM
Digital Library, reports the authors shared between a target year and earlier
years, and counts the institutions those authors are affiliated with.

Scrape results are cached in the results directory and reused across runs.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	// Define flags
	cmd.Flags().BoolVar(&opts.author, "author", false, "Report authors shared between the target and baseline years")
	cmd.Flags().BoolVar(&opts.affiliation, "affiliation", false, "Report institution counts of the affiliation years")
	cmd.Flags().StringVar(&opts.configPath, "config", config.DefaultPath, "Configuration file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "Optional file of environment overrides")
	cmd.Flags().StringVar(&opts.resultsDir, "results-dir", "", "Results directory (overrides RESULTS_DIR)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Ignore cached results and scrape again")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	return cmd
}

// run is the main command logic
func run(cmd *cobra.Command, opts *options) error {
	if !opts.author && !opts.affiliation {
		return cmd.Help()
	}

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	log, err := newLogger(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if err := loadEnv(opts.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	resultsDir := cfg.ResultsDir
	if opts.resultsDir != "" {
		resultsDir = opts.resultsDir
	}
	store, err := storage.New(resultsDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	var sess *session.Session
	fetcher := browser.NewLazy(func() (browser.Fetcher, error) {
		return browser.New(cfg.Browser, sess.Log())
	})
	sess = session.New(cfg, store, fetcher, session.Options{Refresh: opts.refresh, Log: log})

	// Anything logging through the package default is tagged with the run too
	runLog := sess.Log()
	logger.SetDefault(runLog)

	defer func() {
		if err := sess.Close(); err != nil {
			runLog.Warn("Failed to release browser", logger.Fields{"error": err.Error()})
		}
		runLog.Debug("Run metrics", logger.Fields(logger.GetMetricsSnapshot()))
	}()

	runLog.Debug("Starting run", logger.Fields{
		"config":      opts.configPath,
		"results_dir": store.Dir(),
		"author":      opts.author,
		"affiliation": opts.affiliation,
	})

	ctx := cmd.Context()
	idx, err := sess.Authors(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// --author takes precedence when both flags are given
	if opts.author {
		cr := report.CrossReferenceAuthors(idx, cfg.Conference, cfg.Report.Target, cfg.Report.Baselines, cfg.ProfileURL)
		if err := report.WriteCrossReference(out, cr, format); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}

	rep, err := sess.Affiliations(ctx, idx)
	if err != nil {
		return err
	}
	if err := report.WriteAffiliations(out, rep, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func newLogger(opts *options, w io.Writer) (*logger.Logger, error) {
	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		level = logger.LevelDebug
	}
	return logger.New(level, w), nil
}

// loadEnv applies the variables in path to the process environment. A
// missing file is not an error; variables already set are kept.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
