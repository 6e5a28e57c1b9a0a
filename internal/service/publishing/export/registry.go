// Package export converts stored article markup into external formats
// through a format-keyed registry of exporters.
package export

import (
	"context"
	"fmt"
	"strings"
	"sync"

	pubSvc "pressroom/internal/domain/services/publishing"
)

// Registry manages exporters and routes requests by format key.
//
// Thread-safe for concurrent access.
type Registry struct {
	mu        sync.RWMutex
	exporters map[string]pubSvc.Exporter
}

// NewRegistry creates a registry with the standard exporters
// pre-registered.
func NewRegistry() *Registry {
	r := &Registry{exporters: make(map[string]pubSvc.Exporter)}

	r.Register(NewMarkdownExporter())
	r.Register(NewTextExporter())

	return r
}

// Register adds an exporter under its format key. Keys are normalized to
// lowercase.
func (r *Registry) Register(exporter pubSvc.Exporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exporters[strings.ToLower(exporter.Format())] = exporter
}

// Get retrieves an exporter for the given format. Returns nil when no
// exporter is registered for it.
func (r *Registry) Get(format string) pubSvc.Exporter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exporters[strings.ToLower(format)]
}

// Export selects the exporter for the format and performs the conversion.
func (r *Registry) Export(ctx context.Context, format, markup string) (string, error) {
	exporter := r.Get(format)
	if exporter == nil {
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
	return exporter.Export(ctx, markup)
}

// Formats returns all registered format keys.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.exporters))
	for f := range r.exporters {
		formats = append(formats, f)
	}
	return formats
}
