// Package service orchestrates diagnostic runs across the inventory.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/2easy4marcus/ssh-agent/internal/inventory"
	"github.com/2easy4marcus/ssh-agent/internal/model"
	"github.com/2easy4marcus/ssh-agent/internal/session"
)

// Aggregate combines one host's check results into its outcome. Overall
// status is the worst status among the results, ok when no checks ran.
func Aggregate(profile *inventory.HostProfile, auth session.AuthMethod, results []model.CheckResult, startedAt time.Time) *model.HostOutcome {
	statuses := make([]model.Status, 0, len(results))
	for _, r := range results {
		statuses = append(statuses, r.Status)
	}
	return &model.HostOutcome{
		Host:       profile.Name,
		Address:    profile.Connection.Address(),
		Overall:    model.MaxStatus(statuses...),
		Results:    results,
		AuthMethod: string(auth),
		StartedAt:  startedAt,
		Duration:   time.Since(startedAt),
	}
}

// FailedOutcome records a host whose diagnostics never ran, either because
// the profile failed validation or because no session could be opened.
func FailedOutcome(profile *inventory.HostProfile, startedAt time.Time, err error) *model.HostOutcome {
	outcome := &model.HostOutcome{
		Host:             profile.Name,
		Address:          profile.Connection.Address(),
		Overall:          model.StatusFail,
		ConnectionFailed: true,
		Error:            err.Error(),
		StartedAt:        startedAt,
		Duration:         time.Since(startedAt),
	}

	var connErr *session.ConnectError
	if errors.As(err, &connErr) {
		outcome.Hints = connErr.Hints
	} else {
		outcome.Hints = []string{
			fmt.Sprintf("Fix the inventory entry for %s and run the diagnostic again", profile.Name),
		}
	}
	return outcome
}
