//go:build ignore
// +build ignore

// This script generates a sample fleet workbook for manual verification.
// Run with: go run scripts/verify_excel.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/2easy4marcus/ssh-agent/internal/model"
	"github.com/2easy4marcus/ssh-agent/internal/report/excel"
)

func main() {
	// Create test data
	result := createSampleRun()

	// Create the fleet workbook writer
	writer := excel.NewWriter(zerolog.Nop())

	// Generate the workbook
	outputPath := filepath.Join(".", "sample_fleet_summary.xlsx")
	if err := writer.Write(result, outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating workbook: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Fleet workbook generated: %s\n", outputPath)
	fmt.Println("\nWorkbook contents:")
	fmt.Println("  - Overview: run statistics")
	fmt.Println("  - Checks: every check across all hosts")
	fmt.Println("  - Needs Attention: warn/fail rows, worst first")
	fmt.Println("\nPlease open the file to verify:")
	fmt.Println("  - Warn status cells have yellow background")
	fmt.Println("  - Fail status cells have red background")
	fmt.Println("  - Attention rows are sorted (fail first)")
	fmt.Println("  - The unreachable host shows up as a connection row")
}

func createSampleRun() *model.RunResult {
	result := model.NewRunResult(time.Now().Add(-75 * time.Second))
	result.Version = "1.0.0-dev"

	result.Outcomes = append(result.Outcomes,
		createHealthyHost("gateway-01", "192.168.1.20:22"),
		createWarningHost("kiosk-02", "192.168.1.21:22"),
		createFailingHost("display-03", "192.168.1.22:22"),
		createUnreachableHost("sensor-04", "192.168.1.23:22"),
	)

	result.Finalize(time.Now())
	return result
}

func createHealthyHost(name, address string) *model.HostOutcome {
	return &model.HostOutcome{
		Host:       name,
		Address:    address,
		Overall:    model.StatusOK,
		AuthMethod: "key",
		Results: []model.CheckResult{
			{Category: model.CategorySystem, Name: "hostname", Status: model.StatusOK, Message: fmt.Sprintf("Hostname is %q", name)},
			{Category: model.CategorySystem, Name: "uptime", Status: model.StatusOK, Message: "up 2 weeks, 3 days"},
			{Category: model.CategorySystem, Name: "cpu_load", Status: model.StatusOK, Message: "Load average 0.42 on 4 cores (normal)"},
			{Category: model.CategorySystem, Name: "memory", Status: model.StatusOK, Message: "Memory usage 45.2% (3.6 GiB of 8.0 GiB)"},
			{Category: model.CategorySystem, Name: "disk", Status: model.StatusOK, Message: "Disk usage 34% (13.3 GiB of 39.2 GiB)"},
			{Category: model.CategoryNetwork, Name: "interfaces", Status: model.StatusOK, Message: "2 interfaces up (eth0, wlan0)"},
		},
	}
}

func createWarningHost(name, address string) *model.HostOutcome {
	return &model.HostOutcome{
		Host:       name,
		Address:    address,
		Overall:    model.StatusWarn,
		AuthMethod: "key",
		Results: []model.CheckResult{
			{Category: model.CategorySystem, Name: "hostname", Status: model.StatusOK, Message: fmt.Sprintf("Hostname is %q", name)},
			{
				Category: model.CategorySystem,
				Name:     "memory",
				Status:   model.StatusWarn,
				Message:  "Memory usage 78.0% is getting high (6.2 GiB of 8.0 GiB)",
				Hint:     "Close or restart heavy services to free memory",
			},
			{
				Category: model.CategorySystem,
				Name:     "cpu_load",
				Status:   model.StatusWarn,
				Message:  "Load average 5.20 on 4 cores (busy)",
				Hint:     "Find heavy processes with top or htop",
			},
		},
	}
}

func createFailingHost(name, address string) *model.HostOutcome {
	return &model.HostOutcome{
		Host:       name,
		Address:    address,
		Overall:    model.StatusFail,
		AuthMethod: "password",
		Results: []model.CheckResult{
			{Category: model.CategoryServices, Name: "docker_daemon", Status: model.StatusOK, Message: "Docker daemon is running"},
			{
				Category: model.CategoryServices,
				Name:     "container:api",
				Status:   model.StatusFail,
				Message:  "Container api is crash-looping (Restarting (1) 12 seconds ago)",
				Hint:     "URGENT: api is restarting over and over; check its logs now",
			},
			{
				Category: model.CategorySystem,
				Name:     "disk",
				Status:   model.StatusFail,
				Message:  "Disk usage 91% is critically high (35.7 GiB of 39.2 GiB)",
				Hint:     "Free up space now; writes may start failing",
			},
		},
	}
}

func createUnreachableHost(name, address string) *model.HostOutcome {
	return &model.HostOutcome{
		Host:             name,
		Address:          address,
		Overall:          model.StatusFail,
		ConnectionFailed: true,
		Error:            fmt.Sprintf("cannot connect to %s: dial tcp: i/o timeout", name),
		Hints: []string{
			"Check that the host is powered on and reachable on the network",
			"Check the VPN connection on both ends",
		},
	}
}
