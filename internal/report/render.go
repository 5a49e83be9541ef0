package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/2easy4marcus/ssh-agent/internal/model"
)

func statusHeadline(s model.Status) string {
	switch s {
	case model.StatusFail:
		return "PROBLEMS FOUND"
	case model.StatusWarn:
		return "MINOR WARNINGS"
	default:
		return "ALL GOOD"
	}
}

// renderReport produces report.txt. The layout is written for the person
// standing next to the device, not for the person who wrote the checks.
func renderReport(outcome *model.HostOutcome, generatedAt time.Time) string {
	var b strings.Builder
	banner := strings.Repeat("=", 50)
	fmt.Fprintf(&b, "%s\n", banner)
	fmt.Fprintf(&b, " DIAGNOSTIC REPORT: %s\n", outcome.Host)
	fmt.Fprintf(&b, " Generated: %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%s\n\n", banner)

	if outcome.ConnectionFailed {
		b.WriteString("OVERALL STATUS: DIAGNOSTICS COULD NOT RUN\n\n")
		fmt.Fprintf(&b, "Reason:\n  %s\n\n", outcome.Error)
		if len(outcome.Hints) > 0 {
			b.WriteString("WHAT TO DO\n")
			b.WriteString("----------\n")
			for _, hint := range outcome.Hints {
				fmt.Fprintf(&b, "  - %s\n", hint)
			}
		}
		return b.String()
	}

	fmt.Fprintf(&b, "OVERALL STATUS: %s\n\n", statusHeadline(outcome.Overall))

	var okCount, warnCount, failCount int
	for _, r := range outcome.Results {
		switch r.Status {
		case model.StatusOK:
			okCount++
		case model.StatusWarn:
			warnCount++
		case model.StatusFail:
			failCount++
		}
	}

	b.WriteString("QUICK SUMMARY\n")
	b.WriteString("-------------\n")
	if len(outcome.Results) == 0 {
		b.WriteString("  No checks were run.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  %d checks run: %d ok, %d warnings, %d problems\n\n",
		len(outcome.Results), okCount, warnCount, failCount)

	if failCount > 0 {
		b.WriteString("PROBLEMS (need fixing)\n")
		b.WriteString("----------------------\n")
		writeAttentionItems(&b, outcome.Results, model.StatusFail)
		b.WriteString("\n")
	}

	if warnCount > 0 {
		b.WriteString("WARNINGS (keep an eye on)\n")
		b.WriteString("-------------------------\n")
		writeAttentionItems(&b, outcome.Results, model.StatusWarn)
		b.WriteString("\n")
	}

	if okCount > 0 {
		b.WriteString("WHAT'S WORKING\n")
		b.WriteString("--------------\n")
		for _, r := range outcome.Results {
			if r.Status == model.StatusOK {
				fmt.Fprintf(&b, "  [%s] %s\n", r.Category, r.Message)
			}
		}
	}
	return b.String()
}

func writeAttentionItems(b *strings.Builder, results []model.CheckResult, status model.Status) {
	for _, r := range results {
		if r.Status != status {
			continue
		}
		fmt.Fprintf(b, "  [%s] %s\n", r.Category, r.Name)
		fmt.Fprintf(b, "      %s\n", r.Message)
		if r.Hint != "" {
			fmt.Fprintf(b, "      What to do: %s\n", r.Hint)
		}
	}
}

// renderSupportMessage produces support_message.txt, ready to paste into a
// ticket or an email.
func renderSupportMessage(outcome *model.HostOutcome, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("Hi Support Team,\n\n")
	when := generatedAt.Format("2006-01-02 15:04")

	switch {
	case outcome.ConnectionFailed:
		fmt.Fprintf(&b, "Our device %q could not be reached during an automated health check\non %s.\n\n", outcome.Host, when)
		fmt.Fprintf(&b, "Error reported:\n  %s\n", outcome.Error)
		if len(outcome.Hints) > 0 {
			b.WriteString("\nSteps we were advised to try:\n")
			for _, hint := range outcome.Hints {
				fmt.Fprintf(&b, "  - %s\n", hint)
			}
		}
	case outcome.Overall == model.StatusOK:
		fmt.Fprintf(&b, "Our device %q finished its automated health check on %s\nwith no problems. This message is informational; nothing needs fixing.\n", outcome.Host, when)
	default:
		fmt.Fprintf(&b, "Our device %q is reporting issues after an automated health check\non %s.\n\n", outcome.Host, when)
		b.WriteString("Summary of what is wrong:\n")
		for i, r := range outcome.NeedsAttention() {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, r.Message)
		}
		var warnCount, failCount int
		for _, r := range outcome.Results {
			switch r.Status {
			case model.StatusWarn:
				warnCount++
			case model.StatusFail:
				failCount++
			}
		}
		b.WriteString("\nDetails that might help:\n")
		fmt.Fprintf(&b, "  - Host address: %s\n", outcome.Address)
		fmt.Fprintf(&b, "  - Checks run: %d (%d problems, %d warnings)\n", len(outcome.Results), failCount, warnCount)
		if hasCollectedArtifacts(outcome) {
			b.WriteString("\nLog files from the failing services are attached alongside this message.\n")
		}
	}

	b.WriteString("\nThanks,\nAutomated edge diagnostics\n")
	return b.String()
}

func hasCollectedArtifacts(outcome *model.HostOutcome) bool {
	if outcome.Overall != model.StatusFail {
		return false
	}
	for _, r := range outcome.Results {
		if r.Status == model.StatusFail && r.HasArtifact() {
			return true
		}
	}
	return false
}
