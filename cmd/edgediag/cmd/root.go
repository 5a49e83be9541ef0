// Package cmd provides CLI commands for the edge diagnostics tool.
package cmd

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/2easy4marcus/ssh-agent/internal/config"
)

// Version information, injected at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Global flags
var (
	cfgFile  string // Config file path
	logLevel string // Log level
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "edgediag",
	Short: "Edge host diagnostics - inventory-driven health checks over SSH",
	Long: `edgediag connects to the edge hosts declared in an inventory file,
runs a fixed set of health checks over SSH, and writes a plain-language
report bundle for each host that a non-expert can act on.

Data flow: inventory.yaml → SSH sessions → checks → reports/<host>/<timestamp>/

What it checks:
  - System basics (hostname, uptime, CPU load, memory, root disk)
  - Network state (VPN reachability, interface link state)
  - Services (Docker daemon, compose containers, systemd units)
  - USB devices declared in the inventory`,
	Version: Version,
	// Run displays help when called without any subcommands
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// init initializes the root command and its flags.
func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Customize version template
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// GetConfigFile returns the config file path from command line flag.
func GetConfigFile() string {
	return cfgFile
}

// GetLogLevel returns the log level from command line flag.
func GetLogLevel() string {
	return logLevel
}

// loadConfig loads the tool configuration. A path given explicitly via
// --config must exist; the default path falls back to the built-in
// defaults when the file is absent.
func loadConfig() (*config.Config, error) {
	if rootCmd.PersistentFlags().Changed("config") {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefaults(cfgFile)
}

// GetVersionInfo returns formatted version information.
func GetVersionInfo() string {
	return Version + "\n" +
		"Build Time: " + BuildTime + "\n" +
		"Git Commit: " + GitCommit + "\n" +
		"Go Version: " + runtime.Version() + "\n" +
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH
}
