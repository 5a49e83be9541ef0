// Package model provides data models for the diagnostics tool.
package model

// CheckResult is the outcome of a single diagnostic check on one host.
// A result is immutable once produced by the check engine.
type CheckResult struct {
	Category Category `json:"category"`           // subsystem the check belongs to
	Name     string   `json:"name"`               // check identifier, e.g. "memory"
	Status   Status   `json:"status"`             // health classification
	Message  string   `json:"message"`            // human-readable finding
	Hint     string   `json:"hint,omitempty"`     // remediation suggestion
	Payload  string   `json:"payload,omitempty"`  // raw diagnostic output backing the finding
	Artifact string   `json:"artifact,omitempty"` // bundle file name for the payload
}

// NewCheckResult creates a CheckResult with the given classification.
func NewCheckResult(category Category, name string, status Status, message string) CheckResult {
	return CheckResult{
		Category: category,
		Name:     name,
		Status:   status,
		Message:  message,
	}
}

// NeedsAttention returns true if the result is warn or fail.
func (r CheckResult) NeedsAttention() bool {
	return r.Status != StatusOK
}

// HasArtifact returns true if the result carries a payload destined for the
// support bundle.
func (r CheckResult) HasArtifact() bool {
	return r.Artifact != "" && r.Payload != ""
}
