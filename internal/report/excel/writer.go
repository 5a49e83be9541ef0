// Package excel renders the fleet summary workbook for a diagnostic run.
// One workbook covers every host of the run: an overview block, the full
// check table, and the warn/fail subset that needs attention.
package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/2easy4marcus/ssh-agent/internal/model"
)

const (
	// Sheet names
	sheetOverview  = "Overview"
	sheetChecks    = "Checks"
	sheetAttention = "Needs Attention"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for conditional formatting (RGB without #)
	colorWarnBg   = "FFEB9C" // Yellow background for warn
	colorWarnFg   = "9C6500" // Dark yellow text for warn
	colorFailBg   = "FFC7CE" // Red background for fail
	colorFailFg   = "9C0006" // Dark red text for fail
	colorHeaderBg = "4472C4" // Blue background for header
	colorHeaderFg = "FFFFFF" // White text for header
	colorOKBg     = "C6EFCE" // Green background for ok
	colorOKFg     = "006100" // Dark green text for ok
)

// Writer renders run results as an .xlsx workbook.
type Writer struct {
	logger zerolog.Logger
}

// NewWriter creates a new fleet workbook writer.
func NewWriter(logger zerolog.Logger) *Writer {
	return &Writer{
		logger: logger.With().Str("component", "fleet-report").Logger(),
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "excel"
}

// Write renders the fleet summary workbook for a completed run.
func (w *Writer) Write(result *model.RunResult, outputPath string) error {
	if result == nil {
		return fmt.Errorf("run result is nil")
	}

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.createOverviewSheet(f, result); err != nil {
		return fmt.Errorf("failed to create overview sheet: %w", err)
	}

	if err := w.createChecksSheet(f, result); err != nil {
		return fmt.Errorf("failed to create checks sheet: %w", err)
	}

	if err := w.createAttentionSheet(f, result); err != nil {
		return fmt.Errorf("failed to create attention sheet: %w", err)
	}

	// Remove the default sheet created by excelize
	if err := f.DeleteSheet(defaultSheet); err != nil {
		w.logger.Debug().Err(err).Msg("could not remove default sheet")
	}

	// Open on the overview
	idx, _ := f.GetSheetIndex(sheetOverview)
	f.SetActiveSheet(idx)

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	w.logger.Debug().
		Str("path", outputPath).
		Int("hosts", len(result.Outcomes)).
		Msg("fleet workbook written")

	return nil
}

// createOverviewSheet creates the run overview worksheet.
func (w *Writer) createOverviewSheet(f *excelize.File, result *model.RunResult) error {
	idx, err := f.NewSheet(sheetOverview)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 18,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	valueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 12,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	// Set column widths
	f.SetColWidth(sheetOverview, "A", "A", 22)
	f.SetColWidth(sheetOverview, "B", "B", 30)

	// Title
	f.MergeCell(sheetOverview, "A1", "B1")
	f.SetCellValue(sheetOverview, "A1", "Edge Fleet Diagnostics")
	f.SetCellStyle(sheetOverview, "A1", "B1", titleStyle)
	f.SetRowHeight(sheetOverview, 1, 30)

	summary := result.Summary
	if summary == nil {
		summary = model.NewRunSummary(result.Outcomes)
	}

	// Summary data
	summaryData := []struct {
		label string
		value interface{}
	}{
		{"Run started", result.StartedAt.Format("2006-01-02 15:04:05")},
		{"Run duration", formatDuration(result.Duration)},
		{"Hosts checked", summary.TotalHosts},
		{"Healthy hosts", summary.HealthyHosts},
		{"Hosts with warnings", summary.WarnHosts},
		{"Hosts with problems", summary.FailedHosts},
		{"Checks run", summary.TotalChecks},
		{"Check warnings", summary.WarnChecks},
		{"Check problems", summary.FailedChecks},
	}

	if result.Version != "" {
		summaryData = append(summaryData, struct {
			label string
			value interface{}
		}{"Tool version", result.Version})
	}

	// Write summary data
	for i, item := range summaryData {
		row := i + 3 // Start from row 3
		f.SetCellValue(sheetOverview, fmt.Sprintf("A%d", row), item.label)
		f.SetCellValue(sheetOverview, fmt.Sprintf("B%d", row), item.value)
		f.SetCellStyle(sheetOverview, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), headerStyle)
		f.SetCellStyle(sheetOverview, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), valueStyle)
		f.SetRowHeight(sheetOverview, row, 22)
	}

	return nil
}

// createChecksSheet writes one row per executed check across all hosts.
func (w *Writer) createChecksSheet(f *excelize.File, result *model.RunResult) error {
	_, err := f.NewSheet(sheetChecks)
	if err != nil {
		return err
	}

	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}

	okStyle, err := w.createOKStyle(f)
	if err != nil {
		return err
	}

	warnStyle, err := w.createWarnStyle(f)
	if err != nil {
		return err
	}

	failStyle, err := w.createFailStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"Host", "Category", "Check", "Status", "Message"}
	colWidths := []float64{18, 12, 16, 10, 70}
	for i, width := range colWidths {
		col := columnName(i + 1)
		f.SetColWidth(sheetChecks, col, col, width)
	}

	// Write headers
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheetChecks, cell, header)
		f.SetCellStyle(sheetChecks, cell, cell, headerStyle)
	}
	f.SetRowHeight(sheetChecks, 1, 25)

	// Freeze header row
	f.SetPanes(sheetChecks, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for i, row := range collectRows(result) {
		rowStr := fmt.Sprintf("%d", i+2)

		f.SetCellValue(sheetChecks, "A"+rowStr, row.host)
		f.SetCellValue(sheetChecks, "B"+rowStr, row.category)
		f.SetCellValue(sheetChecks, "C"+rowStr, row.name)
		f.SetCellValue(sheetChecks, "D"+rowStr, statusText(row.status))
		f.SetCellValue(sheetChecks, "E"+rowStr, row.message)

		if style := statusStyle(row.status, okStyle, warnStyle, failStyle); style > 0 {
			f.SetCellStyle(sheetChecks, "D"+rowStr, "D"+rowStr, style)
		}
	}

	return nil
}

// createAttentionSheet writes the warn/fail rows, worst first.
func (w *Writer) createAttentionSheet(f *excelize.File, result *model.RunResult) error {
	_, err := f.NewSheet(sheetAttention)
	if err != nil {
		return err
	}

	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}

	warnStyle, err := w.createWarnStyle(f)
	if err != nil {
		return err
	}

	failStyle, err := w.createFailStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"Host", "Category", "Check", "Status", "Message", "What to do"}
	colWidths := []float64{18, 12, 16, 10, 60, 60}
	for i, width := range colWidths {
		col := columnName(i + 1)
		f.SetColWidth(sheetAttention, col, col, width)
	}

	// Write headers
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheetAttention, cell, header)
		f.SetCellStyle(sheetAttention, cell, cell, headerStyle)
	}
	f.SetRowHeight(sheetAttention, 1, 25)

	// Freeze header row
	f.SetPanes(sheetAttention, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for i, row := range attentionRows(result) {
		rowStr := fmt.Sprintf("%d", i+2)

		f.SetCellValue(sheetAttention, "A"+rowStr, row.host)
		f.SetCellValue(sheetAttention, "B"+rowStr, row.category)
		f.SetCellValue(sheetAttention, "C"+rowStr, row.name)
		f.SetCellValue(sheetAttention, "D"+rowStr, statusText(row.status))
		f.SetCellValue(sheetAttention, "E"+rowStr, row.message)
		f.SetCellValue(sheetAttention, "F"+rowStr, row.hint)

		if style := statusStyle(row.status, 0, warnStyle, failStyle); style > 0 {
			f.SetCellStyle(sheetAttention, "D"+rowStr, "D"+rowStr, style)
		}
	}

	return nil
}

// Helper functions

func (w *Writer) createHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: colorHeaderFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorHeaderBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createOKStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: colorOKFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorOKBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createWarnStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: colorWarnFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorWarnBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createFailStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: colorFailFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorFailBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

// checkRow is one data line of the Checks and Needs Attention sheets.
type checkRow struct {
	host     string
	category string
	name     string
	status   model.Status
	message  string
	hint     string
}

// collectRows flattens the run into per-check rows in host order. A host
// whose connection failed contributes a single synthetic row so that every
// host of the run shows up in the workbook.
func collectRows(result *model.RunResult) []checkRow {
	var rows []checkRow
	for _, outcome := range result.Outcomes {
		if outcome == nil {
			continue
		}
		if outcome.ConnectionFailed {
			hint := ""
			if len(outcome.Hints) > 0 {
				hint = outcome.Hints[0]
			}
			rows = append(rows, checkRow{
				host:     outcome.Host,
				category: "connection",
				name:     "ssh",
				status:   model.StatusFail,
				message:  outcome.Error,
				hint:     hint,
			})
			continue
		}
		for _, r := range outcome.Results {
			rows = append(rows, checkRow{
				host:     outcome.Host,
				category: string(r.Category),
				name:     r.Name,
				status:   r.Status,
				message:  r.Message,
				hint:     r.Hint,
			})
		}
	}
	return rows
}

// attentionRows returns the warn/fail rows sorted fail first. Host order
// is preserved within each band.
func attentionRows(result *model.RunResult) []checkRow {
	var rows []checkRow
	for _, row := range collectRows(result) {
		if row.status != model.StatusOK {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].status.WorseThan(rows[j].status)
	})
	return rows
}

// statusStyle picks the cell style for a status, 0 for none.
func statusStyle(s model.Status, okStyle, warnStyle, failStyle int) int {
	switch s {
	case model.StatusFail:
		return failStyle
	case model.StatusWarn:
		return warnStyle
	case model.StatusOK:
		return okStyle
	default:
		return 0
	}
}

// statusText renders a status for workbook cells.
func statusText(s model.Status) string {
	switch s {
	case model.StatusFail:
		return "FAIL"
	case model.StatusWarn:
		return "WARN"
	default:
		return "OK"
	}
}

// columnName converts a 1-based column index to Excel column name (A, B, ..., Z, AA, AB, ...).
func columnName(index int) string {
	result := ""
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
