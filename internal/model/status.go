// Package model provides data models for the diagnostics tool.
package model

import "fmt"

// Status represents the health classification of a check or a host.
type Status string

const (
	StatusOK   Status = "ok"   // healthy
	StatusWarn Status = "warn" // degraded, worth a look
	StatusFail Status = "fail" // broken, needs intervention
)

// Severity returns the ordering weight of the status. Higher is worse.
func (s Status) Severity() int {
	switch s {
	case StatusFail:
		return 2
	case StatusWarn:
		return 1
	default:
		return 0
	}
}

// WorseThan returns true if s is more severe than other.
func (s Status) WorseThan(other Status) bool {
	return s.Severity() > other.Severity()
}

// ExitCode maps the status to the process exit code convention:
// 0 for ok, 1 for warn, 2 for fail.
func (s Status) ExitCode() int {
	return s.Severity()
}

// MaxStatus returns the most severe of the given statuses.
// An empty argument list yields StatusOK.
func MaxStatus(statuses ...Status) Status {
	worst := StatusOK
	for _, s := range statuses {
		if s.WorseThan(worst) {
			worst = s
		}
	}
	return worst
}

// Category groups checks by the subsystem they probe.
type Category string

const (
	CategorySystem   Category = "system"   // hostname, uptime, load, memory, disk
	CategoryNetwork  Category = "network"  // VPN reachability, link state
	CategoryServices Category = "services" // docker daemon, containers, systemd units
	CategoryDevices  Category = "devices"  // USB peripherals
)

// Categories returns all check categories in their canonical run order.
func Categories() []Category {
	return []Category{CategorySystem, CategoryNetwork, CategoryServices, CategoryDevices}
}

// ParseCategory converts a user-supplied category name to a Category.
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (available: system, network, services, devices)", name)
}
