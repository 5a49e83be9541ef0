// Package cmd implements CLI commands for the edge diagnostics tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/2easy4marcus/ssh-agent/internal/inventory"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config and inventory files",
	Long: `Load the configuration and the host inventory, check required fields,
value ranges and device descriptors, and report every problem found.
No host is contacted.`,
	Run: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&inventoryPath, "inventory", "i", "inventory.yaml", "host inventory file path")
}

// runValidate executes the validate command logic.
func runValidate(cmd *cobra.Command, args []string) {
	configPath := GetConfigFile()

	// Load and validate configuration (loading internally validates)
	if _, err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Config validation failed: %v\n", err)
		os.Exit(1)
	}
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("✅ Config file is valid: %s\n", configPath)
	} else {
		fmt.Printf("✅ No config file at %s, built-in defaults apply\n", configPath)
	}

	// Load and validate the inventory, reporting every invalid field
	inv, err := inventory.Load(inventoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Inventory validation failed: %v\n", err)
		os.Exit(1)
	}
	if err := inv.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Inventory is valid: %s (%d hosts)\n", inventoryPath, len(inv.Hosts))
}
