// Package model provides data models for the diagnostics tool.
package model

import "time"

// HostOutcome represents the complete diagnostic outcome for a single host.
type HostOutcome struct {
	Host    string `json:"host"`    // inventory name
	Address string `json:"address"` // connection address

	Overall Status        `json:"overall"` // worst status across all checks
	Results []CheckResult `json:"results"` // results in execution order

	// Connection failure details. When ConnectionFailed is set no checks
	// were run and Overall is fail.
	ConnectionFailed bool     `json:"connection_failed,omitempty"` // bootstrap never reached ready
	Error            string   `json:"error,omitempty"`             // connection failure detail
	Hints            []string `json:"hints,omitempty"`             // remediation hints for the operator

	AuthMethod string        `json:"auth_method,omitempty"` // "key" or "password"
	StartedAt  time.Time     `json:"started_at"`            // when this host's worker started
	Duration   time.Duration `json:"duration"`              // wall time spent on this host
}

// NeedsAttention returns the warn and fail results, fail first. Within each
// status the original execution order is preserved.
func (o *HostOutcome) NeedsAttention() []CheckResult {
	var fails, warns []CheckResult
	for _, r := range o.Results {
		switch r.Status {
		case StatusFail:
			fails = append(fails, r)
		case StatusWarn:
			warns = append(warns, r)
		}
	}
	return append(fails, warns...)
}

// Healthy returns true if every check passed and the connection succeeded.
func (o *HostOutcome) Healthy() bool {
	return o.Overall == StatusOK
}

// RunSummary provides aggregated statistics for a diagnostic run.
type RunSummary struct {
	TotalHosts   int `json:"total_hosts"`   // hosts selected for the run
	HealthyHosts int `json:"healthy_hosts"` // hosts with overall ok
	WarnHosts    int `json:"warn_hosts"`    // hosts with overall warn
	FailedHosts  int `json:"failed_hosts"`  // hosts with overall fail
	TotalChecks  int `json:"total_checks"`  // checks executed across all hosts
	WarnChecks   int `json:"warn_checks"`   // checks classified warn
	FailedChecks int `json:"failed_checks"` // checks classified fail
}

// NewRunSummary creates a RunSummary from host outcomes.
func NewRunSummary(outcomes []*HostOutcome) *RunSummary {
	summary := &RunSummary{}
	for _, outcome := range outcomes {
		if outcome == nil {
			continue
		}
		summary.TotalHosts++
		switch outcome.Overall {
		case StatusOK:
			summary.HealthyHosts++
		case StatusWarn:
			summary.WarnHosts++
		case StatusFail:
			summary.FailedHosts++
		}
		for _, r := range outcome.Results {
			summary.TotalChecks++
			switch r.Status {
			case StatusWarn:
				summary.WarnChecks++
			case StatusFail:
				summary.FailedChecks++
			}
		}
	}
	return summary
}

// RunResult represents the complete result of a diagnostic run.
type RunResult struct {
	StartedAt time.Time     `json:"started_at"` // run start time
	Duration  time.Duration `json:"duration"`   // total run wall time

	Summary  *RunSummary    `json:"summary"`  // aggregated statistics
	Outcomes []*HostOutcome `json:"outcomes"` // per-host outcomes in inventory order

	Version string `json:"version,omitempty"` // tool version
}

// NewRunResult creates a RunResult with the given start time.
func NewRunResult(startedAt time.Time) *RunResult {
	return &RunResult{
		StartedAt: startedAt,
		Outcomes:  make([]*HostOutcome, 0),
	}
}

// Finalize computes the summary and duration after all outcomes are in.
func (r *RunResult) Finalize(endTime time.Time) {
	r.Duration = endTime.Sub(r.StartedAt)
	r.Summary = NewRunSummary(r.Outcomes)
}

// WorstStatus returns the most severe overall status across all hosts,
// StatusOK for an empty run.
func (r *RunResult) WorstStatus() Status {
	worst := StatusOK
	for _, outcome := range r.Outcomes {
		if outcome != nil && outcome.Overall.WorseThan(worst) {
			worst = outcome.Overall
		}
	}
	return worst
}

// ExitCode returns the process exit code for the run.
func (r *RunResult) ExitCode() int {
	return r.WorstStatus().ExitCode()
}

// OutcomeFor finds a host outcome by inventory name, nil if not present.
func (r *RunResult) OutcomeFor(host string) *HostOutcome {
	for _, outcome := range r.Outcomes {
		if outcome != nil && outcome.Host == host {
			return outcome
		}
	}
	return nil
}
