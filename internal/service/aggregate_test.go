package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2easy4marcus/ssh-agent/internal/inventory"
	"github.com/2easy4marcus/ssh-agent/internal/model"
	"github.com/2easy4marcus/ssh-agent/internal/session"
)

func aggregateProfile() *inventory.HostProfile {
	return &inventory.HostProfile{
		Name: "gateway-01",
		Connection: inventory.ConnectionSpec{
			Hostname: "192.168.1.20",
			Port:     22,
			Username: "edge",
		},
	}
}

// ============================================================================
// Aggregate Tests
// ============================================================================

func TestAggregate_OverallIsWorstStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []model.Status
		expected model.Status
	}{
		{"empty", nil, model.StatusOK},
		{"all ok", []model.Status{model.StatusOK, model.StatusOK}, model.StatusOK},
		{"warn present", []model.Status{model.StatusOK, model.StatusWarn}, model.StatusWarn},
		{"fail beats warn", []model.Status{model.StatusWarn, model.StatusFail, model.StatusOK}, model.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]model.CheckResult, 0, len(tt.statuses))
			for _, s := range tt.statuses {
				results = append(results, model.CheckResult{
					Category: model.CategorySystem,
					Name:     "check",
					Status:   s,
					Message:  "message",
				})
			}

			outcome := Aggregate(aggregateProfile(), session.AuthKey, results, time.Now())
			assert.Equal(t, tt.expected, outcome.Overall)
		})
	}
}

func TestAggregate_CarriesIdentity(t *testing.T) {
	startedAt := time.Now().Add(-200 * time.Millisecond)
	outcome := Aggregate(aggregateProfile(), session.AuthPassword, nil, startedAt)

	assert.Equal(t, "gateway-01", outcome.Host)
	assert.Equal(t, "192.168.1.20:22", outcome.Address)
	assert.Equal(t, "password", outcome.AuthMethod)
	assert.False(t, outcome.ConnectionFailed)
	assert.True(t, outcome.Duration > 0)
}

// ============================================================================
// FailedOutcome Tests
// ============================================================================

func TestFailedOutcome_ConnectError(t *testing.T) {
	err := &session.ConnectError{
		Host:  "gateway-01",
		Err:   errors.New("dial tcp: connection refused"),
		Hints: []string{"Ensure SSH is enabled on the remote host"},
	}

	outcome := FailedOutcome(aggregateProfile(), time.Now(), err)
	assert.True(t, outcome.ConnectionFailed)
	assert.Equal(t, model.StatusFail, outcome.Overall)
	assert.Empty(t, outcome.Results)
	require.Len(t, outcome.Hints, 1)
	assert.Equal(t, "Ensure SSH is enabled on the remote host", outcome.Hints[0])
	assert.Contains(t, outcome.Error, "connection refused")
}

func TestFailedOutcome_ValidationError(t *testing.T) {
	err := errors.New("inventory validation failed: connection.hostname is required")

	outcome := FailedOutcome(aggregateProfile(), time.Now(), err)
	assert.True(t, outcome.ConnectionFailed)
	require.Len(t, outcome.Hints, 1)
	assert.Contains(t, outcome.Hints[0], "inventory entry")
}
