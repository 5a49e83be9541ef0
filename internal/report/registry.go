package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/2easy4marcus/ssh-agent/internal/model"
	"github.com/2easy4marcus/ssh-agent/internal/report/excel"
)

// FleetWriter renders a whole-run summary document in one format,
// complementing the per-host bundles.
type FleetWriter interface {
	// Format returns the identifier the writer registers under.
	Format() string
	// Write renders the run result to the given path.
	Write(result *model.RunResult, path string) error
}

// Registry manages fleet writers by format name.
type Registry struct {
	writers map[string]FleetWriter
}

// NewRegistry creates a registry with the built-in fleet writers registered.
func NewRegistry(logger zerolog.Logger) *Registry {
	excelWriter := excel.NewWriter(logger)

	r := &Registry{
		writers: make(map[string]FleetWriter),
	}

	// Register writers using their Format() return values
	r.writers[excelWriter.Format()] = excelWriter

	return r
}

// Get returns a writer for the specified format.
// Format names are case-insensitive (e.g., "Excel", "EXCEL", "excel" all work).
// Returns an error if the format is not supported.
func (r *Registry) Get(format string) (FleetWriter, error) {
	// Normalize format to lowercase for case-insensitive lookup
	normalizedFormat := strings.ToLower(strings.TrimSpace(format))

	writer, ok := r.writers[normalizedFormat]
	if !ok {
		supported := r.GetAll()
		return nil, fmt.Errorf("unsupported report format %q, supported formats: %s",
			format, strings.Join(supported, ", "))
	}

	return writer, nil
}

// GetAll returns all supported format names in sorted order.
func (r *Registry) GetAll() []string {
	formats := make([]string, 0, len(r.writers))
	for format := range r.writers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Has checks if the specified format is supported.
// Format names are case-insensitive.
func (r *Registry) Has(format string) bool {
	normalizedFormat := strings.ToLower(strings.TrimSpace(format))
	_, ok := r.writers[normalizedFormat]
	return ok
}
