// Package report renders diagnostic outcomes into retained, support-ready
// report bundles on disk.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/2easy4marcus/ssh-agent/internal/model"
)

const (
	timestampLayout = "20060102_150405"
	stagingPrefix   = ".staging-"
)

// WriteError reports a filesystem failure while persisting a bundle. It
// never affects the computed diagnostic statuses, only their persistence.
type WriteError struct {
	Host string
	Err  error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write report bundle for %s: %v", e.Host, e.Err)
}

// Unwrap returns the underlying failure.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// BundlePaths lists what a bundle write produced.
type BundlePaths struct {
	Dir         string   // retained run directory
	ReportPath  string   // plain-text report
	MessagePath string   // pre-formatted support message
	Artifacts   []string // collected log files, failures only
}

// Writer persists one report bundle per host under the output root. Only
// the bundle from the most recent run survives; writes go through a
// staging directory so a crash never leaves a half-written bundle behind.
type Writer struct {
	root   string
	logger zerolog.Logger
	now    func() time.Time
}

// NewWriter creates a Writer rooted at the given output directory.
func NewWriter(root string, logger zerolog.Logger) *Writer {
	return &Writer{
		root:   root,
		logger: logger.With().Str("component", "report").Logger(),
		now:    time.Now,
	}
}

// Write renders and persists the bundle for one host outcome. Artifact
// logs are collected only when the host's overall status is fail.
func (w *Writer) Write(outcome *model.HostOutcome) (BundlePaths, error) {
	hostDir := filepath.Join(w.root, outcome.Host)
	if err := os.MkdirAll(hostDir, 0o755); err != nil {
		return BundlePaths{}, &WriteError{Host: outcome.Host, Err: err}
	}

	staging, err := os.MkdirTemp(hostDir, stagingPrefix)
	if err != nil {
		return BundlePaths{}, &WriteError{Host: outcome.Host, Err: err}
	}
	defer os.RemoveAll(staging)

	generatedAt := w.now()
	paths := BundlePaths{
		ReportPath:  filepath.Join(staging, "report.txt"),
		MessagePath: filepath.Join(staging, "support_message.txt"),
	}
	if err := os.WriteFile(paths.ReportPath, []byte(renderReport(outcome, generatedAt)), 0o644); err != nil {
		return BundlePaths{}, &WriteError{Host: outcome.Host, Err: err}
	}
	if err := os.WriteFile(paths.MessagePath, []byte(renderSupportMessage(outcome, generatedAt)), 0o644); err != nil {
		return BundlePaths{}, &WriteError{Host: outcome.Host, Err: err}
	}

	if outcome.Overall == model.StatusFail {
		for _, r := range outcome.Results {
			if r.Status != model.StatusFail || !r.HasArtifact() {
				continue
			}
			artifactPath := filepath.Join(staging, r.Artifact+".log")
			payload := r.Payload
			if !strings.HasSuffix(payload, "\n") {
				payload += "\n"
			}
			if err := os.WriteFile(artifactPath, []byte(payload), 0o644); err != nil {
				return BundlePaths{}, &WriteError{Host: outcome.Host, Err: err}
			}
			paths.Artifacts = append(paths.Artifacts, artifactPath)
		}
	}

	// Drop earlier runs and any staging leftovers from crashed runs, then
	// move the finished bundle into place. Between the two steps the old
	// bundle or the staged one is always complete on disk.
	if err := w.prune(hostDir, filepath.Base(staging)); err != nil {
		return BundlePaths{}, &WriteError{Host: outcome.Host, Err: err}
	}
	finalDir := filepath.Join(hostDir, generatedAt.Format(timestampLayout))
	if err := os.Rename(staging, finalDir); err != nil {
		return BundlePaths{}, &WriteError{Host: outcome.Host, Err: err}
	}

	paths.Dir = finalDir
	paths.ReportPath = filepath.Join(finalDir, "report.txt")
	paths.MessagePath = filepath.Join(finalDir, "support_message.txt")
	for i, artifact := range paths.Artifacts {
		paths.Artifacts[i] = filepath.Join(finalDir, filepath.Base(artifact))
	}

	w.logger.Debug().
		Str("host", outcome.Host).
		Str("dir", finalDir).
		Int("artifacts", len(paths.Artifacts)).
		Msg("report bundle written")
	return paths, nil
}

// prune removes every entry in the host directory except the one named
// keep.
func (w *Writer) prune(hostDir, keep string) error {
	entries, err := os.ReadDir(hostDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Name() == keep {
			continue
		}
		if err := os.RemoveAll(filepath.Join(hostDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
