// Package cmd implements CLI commands for statuswatch.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"statuswatch/internal/client/platform"
	"statuswatch/internal/config"
	"statuswatch/internal/engine"
	"statuswatch/internal/model"
	"statuswatch/internal/notify"
	"statuswatch/internal/report/excel"
	"statuswatch/internal/source"
	"statuswatch/internal/state"
)

// Command flags
var (
	dryRun           bool     // Log notifications instead of sending them
	checkFilter      []string // Run only the named checks
	vocabulariesPath string   // Path to status vocabularies file
	reportPath       string   // Write an Excel run report to this path
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured health checks once",
	Long: `Run all enabled health checks once: fetch observations from the
platform, classify them against the configured thresholds, compare the
outcome with the previous run's persisted state, and notify over the
enabled channels when the debounce rules say to.

The process exit code reflects the worst severity seen across all
checks: 0 OK, 1 WARNING, 2 HIGH, 3 CRITICAL.

Examples:
  # Run every enabled check
  statuswatch run -c config.yaml

  # Run only the jobs and agents checks
  statuswatch run -c config.yaml --check jobs --check agents

  # Evaluate without sending notifications
  statuswatch run -c config.yaml --dry-run

  # Also write an Excel report of the run
  statuswatch run -c config.yaml --report ./reports/statuswatch.xlsx`,
	Run: runChecks,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "evaluate checks but only log notifications")
	runCmd.Flags().StringSliceVar(&checkFilter, "check", nil, "run only the named checks (jobs, agents, audit, api)")
	runCmd.Flags().StringVar(&vocabulariesPath, "vocabularies", "", "status vocabularies file (default: built-in)")
	runCmd.Flags().StringVar(&reportPath, "report", "", "write an Excel run report to this path")
}

// runChecks executes the full monitoring workflow.
func runChecks(cmd *cobra.Command, args []string) {
	printBanner()

	// Step 1: Load configuration
	configPath := GetConfigFile()
	fmt.Printf("📋 Loading config: %s\n", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		// Use temporary console logger for config loading errors
		tmpLogger := setupLogger("error", "console")
		tmpLogger.Error().Err(err).Str("path", configPath).Msg("failed to load config")
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Step 2: Initialize logger with configuration
	// Command line --log-level overrides config file setting
	level := cfg.Logging.Level
	if GetLogLevel() != "info" { // If explicitly set via command line
		level = GetLogLevel()
	}
	logger := setupLogger(level, cfg.Logging.Format)
	logger.Debug().
		Str("config_path", configPath).
		Str("log_level", level).
		Str("log_format", cfg.Logging.Format).
		Msg("configuration loaded successfully")

	// Step 3: Load status vocabularies
	vocabs, err := config.LoadVocabularies(vocabulariesPath)
	if err != nil {
		logger.Error().Err(err).Str("path", vocabulariesPath).Msg("failed to load vocabularies")
		fmt.Fprintf(os.Stderr, "❌ Failed to load vocabularies: %v\n", err)
		os.Exit(1)
	}

	// Step 4: Create platform client and per-check sources
	fmt.Printf("🔗 Platform: %s\n", cfg.Platform.Host)
	client := platform.NewClient(&cfg.Platform, &cfg.HTTP.Retry, logger)

	checks := buildChecks(cfg, client, vocabs, logger)
	checks = filterChecks(checks, checkFilter)
	if len(checks) == 0 {
		fmt.Fprintf(os.Stderr, "❌ No checks to run (disabled in config or excluded by --check)\n")
		os.Exit(1)
	}

	names := make([]string, 0, len(checks))
	for _, c := range checks {
		names = append(names, c.Name)
	}
	logger.Info().Strs("checks", names).Bool("dry_run", dryRun).Msg("starting run")

	// Step 5: Wire state store, notification channels, and the runner
	store := state.NewFileStore(cfg.State.Dir, logger)
	dispatcher := notify.NewDispatcher(&cfg.Notifications, dryRun, logger)
	if chans := dispatcher.Channels(); len(chans) > 0 {
		fmt.Printf("📣 Channels: %v\n", chans)
	} else if !dryRun {
		fmt.Println("📣 Channels: none enabled")
	}
	runner := engine.NewRunner(cfg.Notifications.TopFindings, store, dispatcher, logger)

	// Step 6: Run the checks concurrently
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Platform.Timeout*time.Duration(len(checks)))
	defer cancel()

	results := make([]*model.RunResult, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			result, notified := runner.Run(gctx, check)
			results[i] = result
			logger.Info().
				Str("check", check.Name).
				Str("level", result.Level.String()).
				Bool("notified", notified).
				Msg("check completed")
			return nil
		})
	}
	_ = g.Wait() // Check failures surface as CRITICAL results, not errors

	// Step 7: Print the run summary
	printSummary(results)

	// Step 8: Write the Excel report if requested
	if path := resolveReportPath(cfg); path != "" {
		tz := loadTimezone(cfg.Report.Timezone, logger)
		writer := excel.NewWriter(tz)
		if err := writer.Write(results, path); err != nil {
			logger.Error().Err(err).Str("path", path).Msg("failed to write report")
			fmt.Fprintf(os.Stderr, "   ❌ Report failed: %v\n", err)
		} else {
			logger.Info().Str("path", path).Msg("report written")
			fmt.Printf("   ✅ %s\n", path)
		}
	}

	// Exit with the worst severity observed across all checks
	exitCode := 0
	for _, result := range results {
		if result != nil && result.Level.ExitCode() > exitCode {
			exitCode = result.Level.ExitCode()
		}
	}
	if exitCode > 0 {
		os.Exit(exitCode)
	}
}

// buildChecks assembles the enabled checks with their sources and rulesets.
func buildChecks(cfg *config.Config, client *platform.Client, vocabs []config.Vocabulary, logger zerolog.Logger) []engine.Check {
	var checks []engine.Check

	if cfg.Checks.Jobs.Enabled {
		vocab := config.FindVocabulary(vocabs, "job")
		checks = append(checks, engine.Check{
			Name:   "jobs",
			Source: source.NewJobsSource(client, logger),
			Rules:  source.JobsRules(cfg.Checks.Jobs, vocab),
		})
	}
	if cfg.Checks.Agents.Enabled {
		vocab := config.FindVocabulary(vocabs, "agent")
		checks = append(checks, engine.Check{
			Name:   "agents",
			Source: source.NewAgentsSource(client, logger),
			Rules:  source.AgentsRules(cfg.Checks.Agents, vocab),
		})
	}
	if cfg.Checks.Audit.Enabled {
		lookback := time.Duration(cfg.Checks.Audit.LookbackMinutes) * time.Minute
		checks = append(checks, engine.Check{
			Name:   "audit",
			Source: source.NewAuditSource(client, lookback, logger),
			Rules:  source.AuditRules(cfg.Checks.Audit),
		})
	}
	if cfg.Checks.API.Enabled {
		checks = append(checks, engine.Check{
			Name:   "api",
			Source: source.NewAPISource(client, cfg.Checks.API.HealthPath, logger),
			Rules:  source.APIRules(cfg.Checks.API),
		})
	}

	return checks
}

// filterChecks keeps only the checks named by --check. An empty filter keeps
// everything.
func filterChecks(checks []engine.Check, names []string) []engine.Check {
	if len(names) == 0 {
		return checks
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []engine.Check
	for _, c := range checks {
		if wanted[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

// resolveReportPath determines where to write the Excel report, if anywhere.
// The --report flag takes precedence over config.
func resolveReportPath(cfg *config.Config) string {
	if reportPath != "" {
		return reportPath
	}
	if cfg.Report.Enabled {
		name := fmt.Sprintf("statuswatch_%s.xlsx", time.Now().Format("2006-01-02_150405"))
		return filepath.Join(cfg.Report.OutputDir, name)
	}
	return ""
}

// loadTimezone resolves the configured report timezone, falling back to UTC.
func loadTimezone(name string, logger zerolog.Logger) *time.Location {
	if name == "" {
		return time.UTC
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", name).Msg("unknown timezone, using UTC")
		return time.UTC
	}
	return tz
}

// setupLogger creates a zerolog logger with the specified level and format.
func setupLogger(level string, format string) zerolog.Logger {
	// Set log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Select output format based on configuration
	var output io.Writer
	if format == "json" {
		// JSON format - structured logging for log aggregation systems
		output = os.Stderr
	} else {
		// Console format - human-readable output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// printBanner prints the application banner.
func printBanner() {
	fmt.Printf("🔍 statuswatch %s\n", Version)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

// printSummary prints the per-check outcome after a run.
func printSummary(results []*model.RunResult) {
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	for _, result := range results {
		if result == nil {
			continue
		}
		icon := "✅"
		switch result.Level {
		case model.SeverityWarning:
			icon = "⚠️"
		case model.SeverityHigh:
			icon = "🔶"
		case model.SeverityCritical:
			icon = "🔴"
		}
		fmt.Printf("   %s %-8s %s\n", icon, result.Check, result.Summary)
	}
	fmt.Println()
}
