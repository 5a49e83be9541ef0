// Package inventory loads and validates the host inventory file.
package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses the inventory YAML file at the given path.
// Parsing applies per-host defaults but does not validate profiles;
// call Validate or ValidateProfile before using a profile.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("inventory file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read inventory file: %w", err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("failed to parse inventory file: %w", err)
	}
	if len(inv.Hosts) == 0 {
		return nil, fmt.Errorf("inventory file %s declares no hosts", path)
	}
	return &inv, nil
}
