// Package cmd implements CLI commands for the edge diagnostics tool.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/2easy4marcus/ssh-agent/internal/config"
	"github.com/2easy4marcus/ssh-agent/internal/inventory"
	"github.com/2easy4marcus/ssh-agent/internal/model"
	"github.com/2easy4marcus/ssh-agent/internal/notify"
	"github.com/2easy4marcus/ssh-agent/internal/report"
	"github.com/2easy4marcus/ssh-agent/internal/service"
)

// Command flags
var (
	inventoryPath string   // Path to the host inventory file
	hosts         []string // Host names to check (default: all)
	categories    []string // Check categories to run (default: all)
	outputDir     string   // Output directory for report bundles
	formats       []string // Fleet report formats (excel)
	concurrency   int      // Parallel host workers (0 = use config)
	verbose       bool     // Include informational results
	jsonOutput    bool     // Print JSON to stdout instead of console output
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run diagnostics against the inventory hosts",
	Long: `Run the complete diagnostic pass:
1. Load the tool configuration and the host inventory
2. Connect to each selected host over SSH (bounded concurrency)
3. Run the system, network, services and devices checks
4. Write a report bundle per host (reports/<host>/<timestamp>/)
5. Post a webhook alert for hosts that need attention (if enabled)

The process exit code reflects the worst host: 0 all healthy,
1 warnings only, 2 at least one problem or unreachable host.

Examples:
  # Check every host in the inventory
  edgediag run -i inventory.yaml

  # Check two specific hosts
  edgediag run --host gateway-01 --host kiosk-02

  # Only the service checks, with verbose device detail
  edgediag run --category services --verbose

  # Machine-readable output for scripting
  edgediag run --json

  # Custom output directory plus a fleet summary workbook
  edgediag run -o /var/lib/edgediag/reports -f excel`,
	Run: runDiagnostics,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Define command-specific flags
	runCmd.Flags().StringVarP(&inventoryPath, "inventory", "i", "inventory.yaml", "host inventory file path")
	runCmd.Flags().StringSliceVar(&hosts, "host", nil, "host to check, repeatable (default: all hosts)")
	runCmd.Flags().StringSliceVar(&categories, "category", nil, "check category to run (system, network, services, devices), repeatable")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for report bundles")
	runCmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "extra fleet report formats (excel)")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel host workers (default: from config)")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include informational detail, e.g. USB devices not in the inventory")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON instead of console output")
}

// runDiagnostics executes the complete diagnostic workflow.
func runDiagnostics(cmd *cobra.Command, args []string) {
	if !jsonOutput {
		printBanner()
	}

	// Step 1: Load configuration
	cfg, err := loadConfig()
	if err != nil {
		// Use temporary console logger for config loading errors
		tmpLogger := setupLogger("error", "console")
		tmpLogger.Error().Err(err).Str("path", GetConfigFile()).Msg("failed to load config")
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Step 2: Initialize logger with configuration
	// Command line --log-level overrides config file setting
	logLevel := cfg.Logging.Level
	if GetLogLevel() != "info" { // If explicitly set via command line
		logLevel = GetLogLevel()
	}
	logger := setupLogger(logLevel, cfg.Logging.Format)
	logger.Debug().
		Str("config_path", GetConfigFile()).
		Str("log_level", logLevel).
		Str("log_format", cfg.Logging.Format).
		Msg("configuration loaded")

	// Step 3: Load the host inventory and resolve the selection
	if !jsonOutput {
		fmt.Printf("📋 Loading inventory: %s", inventoryPath)
	}
	inv, err := inventory.Load(inventoryPath)
	if err != nil {
		logger.Error().Err(err).Str("path", inventoryPath).Msg("failed to load inventory")
		fmt.Fprintf(os.Stderr, "\n❌ Failed to load inventory: %v\n", err)
		os.Exit(1)
	}
	profiles, err := inv.Select(hosts)
	if err != nil {
		logger.Error().Err(err).Msg("host selection failed")
		fmt.Fprintf(os.Stderr, "\n❌ %v\n", err)
		os.Exit(1)
	}
	if !jsonOutput {
		fmt.Printf(" (%d of %d hosts)\n", len(profiles), len(inv.Hosts))
	}

	// Step 4: Resolve the category selection
	selected, err := parseCategories(categories)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	// Step 5: Ensure the output root exists
	outputPath := resolveOutputDir(cfg)
	if err := os.MkdirAll(outputPath, 0755); err != nil {
		logger.Error().Err(err).Str("path", outputPath).Msg("failed to create output directory")
		fmt.Fprintf(os.Stderr, "❌ Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	// Step 6: Wire the run components
	writer := report.NewWriter(outputPath, logger)
	notifier := notify.NewNotifier(cfg.Notify, logger)
	runner := service.NewRunner(cfg, service.Options{
		Categories:  selected,
		Concurrency: concurrency,
		Verbose:     verbose,
		Version:     Version,
	}, writer, notifier, logger)

	// Step 7: Execute the run
	if !jsonOutput {
		fmt.Printf("⏳ Checking %d hosts...\n", len(profiles))
	}
	result := runner.Run(context.Background(), profiles)

	// Step 8: Render the results
	if jsonOutput {
		printJSON(result)
	} else {
		for _, outcome := range result.Outcomes {
			printOutcome(outcome)
		}
		printRunSummary(result)
		fmt.Printf("\n⏱️  Total time %.1fs\n", result.Duration.Seconds())
	}

	// Step 9: Render fleet-level reports on top of the per-host bundles
	outputFormats := resolveFormats(cfg)
	if len(outputFormats) > 0 {
		if !jsonOutput {
			fmt.Println("\n📄 Fleet reports:")
		}
		registry := report.NewRegistry(logger)
		filenameBase := "fleet_summary_" + result.StartedAt.Format("2006-01-02")
		for _, format := range outputFormats {
			fleetWriter, err := registry.Get(format)
			if err != nil {
				logger.Error().Str("format", format).Msg("unsupported format")
				fmt.Fprintf(os.Stderr, "   ❌ %v\n", err)
				continue
			}

			ext := "." + format
			if format == "excel" {
				ext = ".xlsx"
			}
			reportPath := filepath.Join(outputPath, filenameBase+ext)
			if err := fleetWriter.Write(result, reportPath); err != nil {
				logger.Error().Err(err).Str("format", format).Str("path", reportPath).Msg("failed to generate fleet report")
				fmt.Fprintf(os.Stderr, "   ❌ %s report failed: %v\n", format, err)
				continue
			}

			logger.Info().Str("format", format).Str("path", reportPath).Msg("fleet report generated")
			if !jsonOutput {
				fmt.Printf("   ✅ %s\n", reportPath)
			}
		}
	}

	// Exit code mirrors the worst host status: 0 ok, 1 warn, 2 fail
	if code := result.ExitCode(); code > 0 {
		os.Exit(code)
	}
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
	fmt.Printf("🔍 Edge diagnostics %s\n", Version)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

// printOutcome prints one host's results in console form.
func printOutcome(outcome *model.HostOutcome) {
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%s %s (%s)\n", statusIcon(outcome.Overall), outcome.Host, outcome.Address)

	if outcome.ConnectionFailed {
		fmt.Printf("   ❌ %s\n", outcome.Error)
		for _, hint := range outcome.Hints {
			fmt.Printf("   💡 %s\n", hint)
		}
		return
	}

	for _, r := range outcome.Results {
		fmt.Printf("   %s %s\n", statusIcon(r.Status), r.Message)
		if r.Hint != "" && r.Status != model.StatusOK {
			fmt.Printf("      💡 %s\n", r.Hint)
		}
	}
}

// printRunSummary prints the aggregated run statistics.
func printRunSummary(result *model.RunResult) {
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if result.Summary != nil {
		fmt.Printf("   Hosts checked: %d\n", result.Summary.TotalHosts)
		fmt.Printf("   Healthy: %d\n", result.Summary.HealthyHosts)
		fmt.Printf("   With warnings: %d\n", result.Summary.WarnHosts)
		fmt.Printf("   With problems: %d\n", result.Summary.FailedHosts)
		fmt.Println()
		fmt.Printf("   Checks run: %d\n", result.Summary.TotalChecks)
		fmt.Printf("   Check warnings: %d\n", result.Summary.WarnChecks)
		fmt.Printf("   Check problems: %d\n", result.Summary.FailedChecks)
	}
}

// printJSON writes the machine-readable outcome array to stdout.
func printJSON(result *model.RunResult) {
	data, err := json.MarshalIndent(result.Outcomes, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to encode results: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// statusIcon maps a status to its console marker.
func statusIcon(s model.Status) string {
	switch s {
	case model.StatusFail:
		return "❌"
	case model.StatusWarn:
		return "⚠️"
	default:
		return "✅"
	}
}

// parseCategories resolves the --category flags against the known categories.
// An empty selection means every category runs.
func parseCategories(names []string) ([]model.Category, error) {
	parsed := make([]model.Category, 0, len(names))
	for _, name := range names {
		c, err := model.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, c)
	}
	return parsed, nil
}

// resolveFormats determines the fleet report formats to render.
// Command line flags take precedence over config file.
func resolveFormats(cfg *config.Config) []string {
	if len(formats) > 0 {
		return formats
	}
	return cfg.Report.Formats
}

// resolveOutputDir determines the output directory to use.
// Command line flags take precedence over config file.
func resolveOutputDir(cfg *config.Config) string {
	if outputDir != "" {
		return outputDir
	}
	if cfg.Report.OutputDir != "" {
		return cfg.Report.OutputDir
	}
	return "./reports" // default
}
