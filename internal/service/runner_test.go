package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2easy4marcus/ssh-agent/internal/config"
	"github.com/2easy4marcus/ssh-agent/internal/inventory"
	"github.com/2easy4marcus/ssh-agent/internal/model"
	"github.com/2easy4marcus/ssh-agent/internal/report"
	"github.com/2easy4marcus/ssh-agent/internal/session"
)

// scriptedSession answers commands from a canned table and records that it
// was closed.
type scriptedSession struct {
	replies map[string]string
	auth    session.AuthMethod
	closed  bool
}

func (s *scriptedSession) Run(_ context.Context, command string) (session.ExecResult, error) {
	if out, ok := s.replies[command]; ok {
		return session.ExecResult{Stdout: out}, nil
	}
	return session.ExecResult{ExitCode: 127, Stderr: "not scripted: " + command}, nil
}

func (s *scriptedSession) AuthMethod() session.AuthMethod { return s.auth }

func (s *scriptedSession) Close() error {
	s.closed = true
	return nil
}

// systemScript covers every command the system category issues, all with
// healthy values.
func systemScript() map[string]string {
	return map[string]string{
		"hostname":          "gateway-01\n",
		"uptime -p":         "up 2 weeks, 3 days\n",
		"cat /proc/loadavg": "0.50 0.60 0.55 1/123 4567\n",
		"nproc":             "4\n",
		"free -b":           "              total        used        free\nMem:  100000000000  45000000000  55000000000\nSwap: 0 0 0\n",
		"df -P /":           "Filesystem 1024-blocks Used Available Capacity Mounted on\n/dev/root 41152832 13992963 27159869 34% /\n",
	}
}

func testCfg() *config.Config {
	return &config.Config{
		SSH: config.SSHConfig{
			ConnectTimeout: time.Second,
			CommandTimeout: 5 * time.Second,
		},
		Inspection: config.InspectionConfig{Concurrency: 4},
		Thresholds: config.ThresholdsConfig{
			Usage:       config.ThresholdPair{Warning: 70, Critical: 85},
			LoadPerCore: 1.0,
		},
	}
}

func runnerProfile(name string) *inventory.HostProfile {
	return &inventory.HostProfile{
		Name: name,
		Connection: inventory.ConnectionSpec{
			Hostname: "192.168.1.20",
			Port:     22,
			Username: "edge",
			Password: "secret",
		},
	}
}

type recordingWriter struct {
	mu      sync.Mutex
	hosts   []string
	failFor string
}

func (w *recordingWriter) Write(outcome *model.HostOutcome) (report.BundlePaths, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hosts = append(w.hosts, outcome.Host)
	if outcome.Host == w.failFor {
		return report.BundlePaths{}, &report.WriteError{Host: outcome.Host, Err: errors.New("disk full")}
	}
	return report.BundlePaths{Dir: "reports/" + outcome.Host}, nil
}

type recordingAlerter struct {
	mu    sync.Mutex
	hosts []string
}

func (a *recordingAlerter) NotifyHost(_ context.Context, outcome *model.HostOutcome) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hosts = append(a.hosts, outcome.Host)
	return nil
}

// ============================================================================
// Runner Tests
// ============================================================================

func TestRunner_Run_MixedOutcomes(t *testing.T) {
	good := runnerProfile("gateway-01")
	broken := runnerProfile("broken-01")
	broken.Connection.Hostname = ""
	unreachable := runnerProfile("kiosk-02")

	sessions := make(map[string]*scriptedSession)
	var mu sync.Mutex

	r := NewRunner(testCfg(), Options{Categories: []model.Category{model.CategorySystem}}, nil, nil, zerolog.Nop())
	r.open = func(_ context.Context, profile *inventory.HostProfile) (hostSession, error) {
		if profile.Name == "gateway-01" {
			sess := &scriptedSession{replies: systemScript(), auth: session.AuthKey}
			mu.Lock()
			sessions[profile.Name] = sess
			mu.Unlock()
			return sess, nil
		}
		return nil, &session.ConnectError{
			Host:  profile.Name,
			Err:   errors.New("dial tcp: connection refused"),
			Hints: []string{"Ensure SSH is enabled on the remote host"},
		}
	}

	result := r.Run(context.Background(), []*inventory.HostProfile{good, broken, unreachable})

	require.Len(t, result.Outcomes, 3)
	wantOrder := []string{"gateway-01", "broken-01", "kiosk-02"}
	for i, want := range wantOrder {
		assert.Equal(t, want, result.Outcomes[i].Host)
	}

	gateway := result.Outcomes[0]
	assert.Equal(t, model.StatusOK, gateway.Overall)
	assert.Len(t, gateway.Results, 5)
	assert.Equal(t, "key", gateway.AuthMethod)
	assert.True(t, sessions["gateway-01"].closed, "session must be closed when the worker finishes")

	brokenOutcome := result.Outcomes[1]
	assert.True(t, brokenOutcome.ConnectionFailed)
	assert.Equal(t, model.StatusFail, brokenOutcome.Overall)

	kiosk := result.Outcomes[2]
	assert.True(t, kiosk.ConnectionFailed)
	assert.NotEmpty(t, kiosk.Hints)

	summary := result.Summary
	assert.Equal(t, 3, summary.TotalHosts)
	assert.Equal(t, 1, summary.HealthyHosts)
	assert.Equal(t, 2, summary.FailedHosts)
	assert.Equal(t, 2, result.ExitCode())
}

func TestRunner_Run_PreservesInventoryOrder(t *testing.T) {
	names := []string{"zulu-03", "alpha-01", "mike-02"}
	profiles := make([]*inventory.HostProfile, 0, len(names))
	for _, name := range names {
		profiles = append(profiles, runnerProfile(name))
	}

	r := NewRunner(testCfg(), Options{Categories: []model.Category{model.CategorySystem}}, nil, nil, zerolog.Nop())
	r.open = func(_ context.Context, _ *inventory.HostProfile) (hostSession, error) {
		return &scriptedSession{replies: systemScript(), auth: session.AuthKey}, nil
	}

	result := r.Run(context.Background(), profiles)
	require.Len(t, result.Outcomes, len(names))
	for i, name := range names {
		assert.Equal(t, name, result.Outcomes[i].Host)
	}
}

func TestRunner_Run_LocalHostSkipsDial(t *testing.T) {
	local := runnerProfile("edge-local")
	local.Connection.Hostname = "localhost"

	r := NewRunner(testCfg(), Options{Categories: []model.Category{model.CategoryDevices}}, nil, nil, zerolog.Nop())
	r.open = func(_ context.Context, profile *inventory.HostProfile) (hostSession, error) {
		t.Errorf("dial attempted for local host %s", profile.Name)
		return nil, errors.New("unexpected dial")
	}

	result := r.Run(context.Background(), []*inventory.HostProfile{local})
	outcome := result.Outcomes[0]
	assert.Equal(t, "local", outcome.AuthMethod)
	// No devices are declared, so the devices category yields nothing and
	// the host is trivially healthy.
	assert.Equal(t, model.StatusOK, outcome.Overall)
	assert.Empty(t, outcome.Results)
}

func TestRunner_Run_PersistsAndAlerts(t *testing.T) {
	writer := &recordingWriter{failFor: "kiosk-02"}
	alerter := &recordingAlerter{}

	r := NewRunner(testCfg(), Options{
		Categories:  []model.Category{model.CategorySystem},
		Concurrency: 1,
	}, nil, nil, zerolog.Nop())
	r.writer = writer
	r.notifier = alerter
	r.open = func(_ context.Context, _ *inventory.HostProfile) (hostSession, error) {
		return &scriptedSession{replies: systemScript(), auth: session.AuthKey}, nil
	}

	profiles := []*inventory.HostProfile{runnerProfile("gateway-01"), runnerProfile("kiosk-02")}
	result := r.Run(context.Background(), profiles)

	assert.Len(t, writer.hosts, 2)
	assert.Len(t, alerter.hosts, 2)
	// The bundle write failure for kiosk-02 is a warning only; its computed
	// outcome must be untouched.
	kiosk := result.OutcomeFor("kiosk-02")
	require.NotNil(t, kiosk)
	assert.Equal(t, model.StatusOK, kiosk.Overall)
}
