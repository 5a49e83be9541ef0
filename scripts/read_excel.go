//go:build ignore
// +build ignore

// This script reads and displays the contents of a fleet workbook for verification.
package main

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

func main() {
	f, err := excelize.OpenFile("sample_fleet_summary.xlsx")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer f.Close()

	fmt.Println("📊 Sheets:", f.GetSheetList())
	fmt.Println()

	// Overview sheet
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Overview")
	fmt.Println("═══════════════════════════════════════")
	for row := 1; row <= 14; row++ {
		a, _ := f.GetCellValue("Overview", fmt.Sprintf("A%d", row))
		b, _ := f.GetCellValue("Overview", fmt.Sprintf("B%d", row))
		if a != "" || b != "" {
			fmt.Printf("  %-22s %s\n", a, b)
		}
	}
	fmt.Println()

	// Checks sheet - headers
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Checks (headers)")
	fmt.Println("═══════════════════════════════════════")
	headers := []string{}
	for col := 1; col <= 10; col++ {
		cell := columnName(col) + "1"
		v, _ := f.GetCellValue("Checks", cell)
		if v == "" {
			break
		}
		headers = append(headers, v)
	}
	for i, h := range headers {
		fmt.Printf("  [%d] %s\n", i+1, h)
	}
	fmt.Println()

	// Checks sheet - data rows
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Checks (all hosts)")
	fmt.Println("═══════════════════════════════════════")
	for row := 2; row <= 20; row++ {
		host, _ := f.GetCellValue("Checks", fmt.Sprintf("A%d", row))
		category, _ := f.GetCellValue("Checks", fmt.Sprintf("B%d", row))
		check, _ := f.GetCellValue("Checks", fmt.Sprintf("C%d", row))
		status, _ := f.GetCellValue("Checks", fmt.Sprintf("D%d", row))
		message, _ := f.GetCellValue("Checks", fmt.Sprintf("E%d", row))
		if host != "" {
			fmt.Printf("  %-12s %-10s %-16s %-6s %s\n", host, category, check, status, message)
		}
	}
	fmt.Println()

	// Needs Attention sheet
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Needs Attention (worst first)")
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Host         | Status | Check            | Message")
	fmt.Println("  -------------+--------+------------------+--------")
	for row := 2; row <= 10; row++ {
		host, _ := f.GetCellValue("Needs Attention", fmt.Sprintf("A%d", row))
		status, _ := f.GetCellValue("Needs Attention", fmt.Sprintf("D%d", row))
		check, _ := f.GetCellValue("Needs Attention", fmt.Sprintf("C%d", row))
		message, _ := f.GetCellValue("Needs Attention", fmt.Sprintf("E%d", row))
		if host != "" {
			fmt.Printf("  %-12s | %-6s | %-16s | %s\n", host, status, check, message)
		}
	}
	fmt.Println()
	fmt.Println("✅ Fleet workbook check complete!")
	fmt.Println("   Open sample_fleet_summary.xlsx in Excel/LibreOffice to see the full styling")
}

func columnName(index int) string {
	result := ""
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}
