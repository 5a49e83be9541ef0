package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/2easy4marcus/ssh-agent/internal/check"
	"github.com/2easy4marcus/ssh-agent/internal/config"
	"github.com/2easy4marcus/ssh-agent/internal/inventory"
	"github.com/2easy4marcus/ssh-agent/internal/model"
	"github.com/2easy4marcus/ssh-agent/internal/notify"
	"github.com/2easy4marcus/ssh-agent/internal/report"
	"github.com/2easy4marcus/ssh-agent/internal/session"
)

// Options captures the per-run knobs the CLI exposes.
type Options struct {
	Categories  []model.Category // empty selects every category
	Concurrency int              // overrides inspection.concurrency when > 0
	Verbose     bool
	Version     string
}

// hostSession is the slice of session behavior the runner needs.
type hostSession interface {
	session.Runner
	AuthMethod() session.AuthMethod
	Close() error
}

// bundleWriter persists one host's report bundle.
type bundleWriter interface {
	Write(outcome *model.HostOutcome) (report.BundlePaths, error)
}

// alerter pushes one host's outcome to the operator channel.
type alerter interface {
	NotifyHost(ctx context.Context, outcome *model.HostOutcome) error
}

// Runner fans diagnostics out across hosts under bounded concurrency and
// collects their outcomes.
type Runner struct {
	cfg    *config.Config
	opts   Options
	logger zerolog.Logger

	engine   *check.Engine
	local    session.Runner
	open     func(ctx context.Context, profile *inventory.HostProfile) (hostSession, error)
	writer   bundleWriter
	notifier alerter
}

// NewRunner wires a Runner from the loaded configuration. writer and
// notifier may be nil to disable report bundles or alerts.
func NewRunner(cfg *config.Config, opts Options, writer *report.Writer, notifier *notify.Notifier, logger zerolog.Logger) *Runner {
	dialer := session.NewDialer(cfg.SSH, logger)
	r := &Runner{
		cfg:    cfg,
		opts:   opts,
		logger: logger.With().Str("component", "runner").Logger(),
		engine: check.NewEngine(cfg, opts.Verbose, logger),
		local:  session.NewLocal(cfg.SSH.CommandTimeout),
		open: func(ctx context.Context, profile *inventory.HostProfile) (hostSession, error) {
			sess, err := dialer.Open(ctx, profile)
			if err != nil {
				return nil, err
			}
			return sess, nil
		},
	}
	if writer != nil {
		r.writer = writer
	}
	if notifier != nil {
		r.notifier = notifier
	}
	return r
}

// Run executes diagnostics for the given profiles. A failing host never
// aborts its siblings, and the returned result lists outcomes in
// inventory order regardless of which worker finished first.
func (r *Runner) Run(ctx context.Context, profiles []*inventory.HostProfile) *model.RunResult {
	result := model.NewRunResult(time.Now())
	result.Version = r.opts.Version

	concurrency := r.opts.Concurrency
	if concurrency <= 0 {
		concurrency = r.cfg.Inspection.Concurrency
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	r.logger.Info().
		Int("hosts", len(profiles)).
		Int("concurrency", concurrency).
		Msg("starting diagnostic run")

	var mu sync.Mutex
	outcomes := make(map[string]*model.HostOutcome, len(profiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, profile := range profiles {
		g.Go(func() error {
			outcome := r.runHost(ctx, profile)
			mu.Lock()
			outcomes[profile.Name] = outcome
			mu.Unlock()
			// Host failures are data in the outcome, never worker errors;
			// returning one would cancel the sibling workers.
			return nil
		})
	}
	_ = g.Wait()

	for _, profile := range profiles {
		if outcome := outcomes[profile.Name]; outcome != nil {
			result.Outcomes = append(result.Outcomes, outcome)
		}
	}
	result.Finalize(time.Now())

	r.logger.Info().
		Int("healthy", result.Summary.HealthyHosts).
		Int("warn", result.Summary.WarnHosts).
		Int("failed", result.Summary.FailedHosts).
		Dur("duration", result.Duration).
		Msg("diagnostic run finished")
	return result
}

func (r *Runner) runHost(ctx context.Context, profile *inventory.HostProfile) *model.HostOutcome {
	startedAt := time.Now()
	log := r.logger.With().Str("host", profile.Name).Logger()
	log.Info().Msg("host diagnostics started")

	if err := inventory.ValidateProfile(profile); err != nil {
		log.Error().Err(err).Msg("invalid host profile")
		return r.persist(ctx, log, FailedOutcome(profile, startedAt, err))
	}

	target := check.Target{Profile: profile, Local: r.local}
	auth := session.AuthLocal

	if profile.IsLocal() {
		target.Remote = r.local
	} else {
		sess, err := r.open(ctx, profile)
		if err != nil {
			log.Error().Err(err).Msg("could not open session")
			return r.persist(ctx, log, FailedOutcome(profile, startedAt, err))
		}
		defer sess.Close()
		target.Remote = sess
		auth = sess.AuthMethod()
	}

	results := r.engine.Run(ctx, target, r.opts.Categories)
	outcome := Aggregate(profile, auth, results, startedAt)
	log.Info().
		Str("overall", string(outcome.Overall)).
		Int("checks", len(results)).
		Msg("host diagnostics finished")
	return r.persist(ctx, log, outcome)
}

// persist writes the report bundle and fires the alert for one outcome.
// Both are best-effort: a bundle write failure surfaces as a run-level
// warning and never changes the computed statuses.
func (r *Runner) persist(ctx context.Context, log zerolog.Logger, outcome *model.HostOutcome) *model.HostOutcome {
	if r.writer != nil {
		if _, err := r.writer.Write(outcome); err != nil {
			log.Warn().Err(err).Msg("failed to write report bundle")
		}
	}
	if r.notifier != nil {
		if err := r.notifier.NotifyHost(ctx, outcome); err != nil {
			log.Warn().Err(err).Msg("failed to deliver alert")
		}
	}
	return outcome
}
