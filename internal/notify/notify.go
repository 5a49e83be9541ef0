// Package notify pushes per-host diagnostic outcomes to an operator
// webhook.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/2easy4marcus/ssh-agent/internal/config"
	"github.com/2easy4marcus/ssh-agent/internal/model"
)

// Notifier delivers one alert per qualifying host outcome.
type Notifier struct {
	cfg        config.NotifyConfig
	httpClient *resty.Client
	logger     zerolog.Logger
}

// NewNotifier creates a webhook notifier from the notify configuration.
func NewNotifier(cfg config.NotifyConfig, logger zerolog.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.Retry.MaxRetries).
		SetRetryWaitTime(cfg.Retry.BaseDelay).
		SetRetryMaxWaitTime(cfg.Retry.BaseDelay * 8). // Max wait time for exponential backoff
		AddRetryCondition(retryCondition)

	return &Notifier{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "notify").Logger(),
	}
}

// retryCondition determines whether a request should be retried.
// Only retry on timeout, 5xx errors, or connection failures.
// Do not retry on 4xx errors.
func retryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp != nil && resp.StatusCode() >= 500 {
		return true
	}
	return false
}

// hostAlert is the webhook payload for a single host.
type hostAlert struct {
	Host           string              `json:"host"`
	Address        string              `json:"address"`
	Overall        model.Status        `json:"overall"`
	Error          string              `json:"error,omitempty"`
	NeedsAttention []model.CheckResult `json:"needs_attention"`
	GeneratedAt    time.Time           `json:"generated_at"`
}

// ShouldNotify reports whether the outcome clears the configured minimum
// status. A disabled notifier never fires.
func (n *Notifier) ShouldNotify(outcome *model.HostOutcome) bool {
	if !n.cfg.Enabled || outcome == nil {
		return false
	}
	min := model.StatusFail
	if n.cfg.MinStatus == string(model.StatusWarn) {
		min = model.StatusWarn
	}
	return outcome.Overall == min || outcome.Overall.WorseThan(min)
}

// NotifyHost posts one alert for the outcome. Outcomes below the minimum
// status are skipped silently.
func (n *Notifier) NotifyHost(ctx context.Context, outcome *model.HostOutcome) error {
	if !n.ShouldNotify(outcome) {
		return nil
	}

	alert := hostAlert{
		Host:           outcome.Host,
		Address:        outcome.Address,
		Overall:        outcome.Overall,
		Error:          outcome.Error,
		NeedsAttention: outcome.NeedsAttention(),
		GeneratedAt:    time.Now(),
	}

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post(n.cfg.WebhookURL)

	if err != nil {
		n.logger.Error().Err(err).Str("host", outcome.Host).Msg("failed to deliver alert")
		return fmt.Errorf("failed to deliver alert for %s: %w", outcome.Host, err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		n.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("host", outcome.Host).
			Str("body", string(resp.Body())).
			Msg("webhook returned non-success status")
		return fmt.Errorf("webhook returned status %d for %s: %s",
			resp.StatusCode(), outcome.Host, string(resp.Body()))
	}

	n.logger.Info().
		Str("host", outcome.Host).
		Str("overall", string(outcome.Overall)).
		Msg("alert delivered")
	return nil
}
