// Package check probes edge hosts over an established command channel and
// classifies what it finds into ok, warn and fail results.
package check

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/2easy4marcus/ssh-agent/internal/config"
	"github.com/2easy4marcus/ssh-agent/internal/inventory"
	"github.com/2easy4marcus/ssh-agent/internal/model"
	"github.com/2easy4marcus/ssh-agent/internal/session"
)

// Target carries everything the probes for one host need. Remote executes
// commands on the host under test; Local executes commands on the machine
// running the diagnostic (used for overlay-network reachability probes).
// For hosts addressed as localhost the two runners are the same.
type Target struct {
	Profile *inventory.HostProfile
	Remote  session.Runner
	Local   session.Runner
}

// categoryFunc produces every result for one category against one target.
type categoryFunc func(ctx context.Context, log zerolog.Logger, t Target) []model.CheckResult

// Engine runs category-scoped checks. It holds no per-host state and is
// safe to share across workers.
type Engine struct {
	cfg      *config.Config
	verbose  bool
	logger   zerolog.Logger
	registry map[model.Category]categoryFunc
}

// NewEngine builds the engine and its category registry. The registry is
// constructed once here and iterated in canonical category order on every
// run.
func NewEngine(cfg *config.Config, verbose bool, logger zerolog.Logger) *Engine {
	e := &Engine{
		cfg:     cfg,
		verbose: verbose,
		logger:  logger.With().Str("component", "check").Logger(),
	}
	e.registry = map[model.Category]categoryFunc{
		model.CategorySystem:   e.systemChecks,
		model.CategoryNetwork:  e.networkChecks,
		model.CategoryServices: e.serviceChecks,
		model.CategoryDevices:  e.deviceChecks,
	}
	return e
}

// Run executes the selected categories against the target. An empty
// category list selects everything. Results preserve category order and,
// within a category, check declaration order.
func (e *Engine) Run(ctx context.Context, t Target, categories []model.Category) []model.CheckResult {
	selected := make(map[model.Category]bool, len(categories))
	for _, c := range categories {
		selected[c] = true
	}

	log := e.logger.With().Str("host", t.Profile.Name).Logger()

	var results []model.CheckResult
	for _, cat := range model.Categories() {
		if len(selected) > 0 && !selected[cat] {
			continue
		}
		log.Debug().Str("category", string(cat)).Msg("running category checks")
		produced := e.registry[cat](ctx, log, t)
		log.Debug().
			Str("category", string(cat)).
			Int("results", len(produced)).
			Msg("category checks completed")
		results = append(results, produced...)
	}
	return results
}

// commandWarn maps an unusable command execution onto a warn result, so a
// timeout or transport hiccup never silently drops a check.
func commandWarn(category model.Category, name string, err error) model.CheckResult {
	r := model.NewCheckResult(category, name, model.StatusWarn,
		fmt.Sprintf("Could not check %s: %v", name, err))
	var cmdErr *session.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Timeout {
		r.Message = fmt.Sprintf("Could not check %s: command timed out", name)
		r.Hint = "Increase ssh.command_timeout or inspect the host manually"
	}
	return r
}

// unparseableWarn maps malformed or empty command output onto a warn
// result carrying the raw output for the bundle.
func unparseableWarn(category model.Category, name, command, output string) model.CheckResult {
	r := model.NewCheckResult(category, name, model.StatusWarn,
		fmt.Sprintf("Unexpected output from %q", command))
	r.Payload = output
	return r
}

// classifyUsage applies the two-tier usage policy: below the warning
// threshold is ok, at or above the critical threshold is fail, warn in
// between.
func classifyUsage(t config.ThresholdPair, pct float64) model.Status {
	switch {
	case pct < t.Warning:
		return model.StatusOK
	case pct < t.Critical:
		return model.StatusWarn
	default:
		return model.StatusFail
	}
}

// humanBytes renders a byte count for report messages.
func humanBytes(b float64) string {
	const unit = 1024.0
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	i := 0
	for b >= unit && i < len(units)-1 {
		b /= unit
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%.0f %s", b, units[i])
	}
	return fmt.Sprintf("%.1f %s", b, units[i])
}
