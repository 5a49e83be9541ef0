package report

import (
	"strings"
	"testing"

	"github.com/2easy4marcus/ssh-agent/internal/model"
)

// ============================================================================
// Report rendering Tests
// ============================================================================

func TestRenderReport_FailingHost(t *testing.T) {
	text := renderReport(failingOutcome(), fixedTime(t, "2026-08-23 14:05:10"))

	for _, want := range []string{
		"DIAGNOSTIC REPORT: gateway-01",
		"Generated: 2026-08-23 14:05:10",
		"OVERALL STATUS: PROBLEMS FOUND",
		"3 checks run: 1 ok, 1 warnings, 1 problems",
		"PROBLEMS (need fixing)",
		"[services] container:api",
		"What to do: URGENT",
		"WARNINGS (keep an eye on)",
		"Disk usage 78%",
		"WHAT'S WORKING",
		`[system] Hostname is "gateway-01"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q\n%s", want, text)
		}
	}
}

func TestRenderReport_HealthyHost(t *testing.T) {
	text := renderReport(healthyOutcome(), fixedTime(t, "2026-08-23 14:05:10"))

	if !strings.Contains(text, "OVERALL STATUS: ALL GOOD") {
		t.Errorf("report should declare the host healthy\n%s", text)
	}
	if strings.Contains(text, "PROBLEMS (need fixing)") || strings.Contains(text, "WARNINGS (keep an eye on)") {
		t.Error("healthy report should not render attention sections")
	}
}

func TestRenderReport_ConnectionFailed(t *testing.T) {
	outcome := &model.HostOutcome{
		Host:             "gateway-01",
		Address:          "192.168.1.20:22",
		Overall:          model.StatusFail,
		ConnectionFailed: true,
		Error:            "cannot connect to gateway-01: dial tcp: connection refused",
		Hints: []string{
			"Verify the host is powered on and reachable (ping, VPN status)",
			"Try manually: ssh edge@192.168.1.20",
		},
	}

	text := renderReport(outcome, fixedTime(t, "2026-08-23 14:05:10"))
	if !strings.Contains(text, "DIAGNOSTICS COULD NOT RUN") {
		t.Errorf("report should state diagnostics never ran\n%s", text)
	}
	if !strings.Contains(text, "connection refused") {
		t.Error("report should include the connection error")
	}
	if !strings.Contains(text, "Try manually: ssh edge@192.168.1.20") {
		t.Error("report should include remediation hints")
	}
	if strings.Contains(text, "QUICK SUMMARY") {
		t.Error("no summary section when no checks ran")
	}
}

func TestRenderReport_NoChecks(t *testing.T) {
	outcome := &model.HostOutcome{Host: "gateway-01", Overall: model.StatusOK}

	text := renderReport(outcome, fixedTime(t, "2026-08-23 14:05:10"))
	if !strings.Contains(text, "No checks were run") {
		t.Errorf("empty outcome should say so\n%s", text)
	}
}

// ============================================================================
// Support message Tests
// ============================================================================

func TestRenderSupportMessage_FailingHost(t *testing.T) {
	text := renderSupportMessage(failingOutcome(), fixedTime(t, "2026-08-23 14:05:10"))

	if !strings.HasPrefix(text, "Hi Support Team,") {
		t.Errorf("message should open with the greeting\n%s", text)
	}
	// Needs-attention ordering puts the failing container before the disk
	// warning even though the disk check ran first.
	failIdx := strings.Index(text, "1. Container api is crash-looping")
	warnIdx := strings.Index(text, "2. Disk usage 78%")
	if failIdx == -1 || warnIdx == -1 || failIdx > warnIdx {
		t.Errorf("summary should list problems before warnings\n%s", text)
	}
	if !strings.Contains(text, "Host address: 192.168.1.20:22") {
		t.Error("message should include the host address")
	}
	if !strings.Contains(text, "attached alongside this message") {
		t.Error("message should mention the attached logs")
	}
}

func TestRenderSupportMessage_HealthyHost(t *testing.T) {
	text := renderSupportMessage(healthyOutcome(), fixedTime(t, "2026-08-23 14:05:10"))

	if !strings.Contains(text, "no problems") {
		t.Errorf("healthy message should be informational\n%s", text)
	}
	if strings.Contains(text, "Summary of what is wrong") {
		t.Error("healthy message should not list problems")
	}
}

func TestRenderSupportMessage_ConnectionFailed(t *testing.T) {
	outcome := &model.HostOutcome{
		Host:             "kiosk-02",
		ConnectionFailed: true,
		Overall:          model.StatusFail,
		Error:            "cannot connect to kiosk-02: ssh: unable to authenticate",
		Hints:            []string{"Check the username and password in the inventory file"},
	}

	text := renderSupportMessage(outcome, fixedTime(t, "2026-08-23 14:05:10"))
	if !strings.Contains(text, "could not be reached") {
		t.Errorf("message should explain the host was unreachable\n%s", text)
	}
	if !strings.Contains(text, "unable to authenticate") {
		t.Error("message should include the error detail")
	}
}
