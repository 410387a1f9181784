// Package flags provides feature flag support for opt-in behavior.
// Flags are read-only after initialization and unknown flags are disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/sidediff/internal/log"
)

const (
	// FlagSemanticCleanup merges short intra-line commonalities into the
	// surrounding edits so word diffs read as whole-phrase replacements.
	FlagSemanticCleanup = "semantic-cleanup"

	// FlagResultCache memoises results for identical inputs in the server and watch loops.
	FlagResultCache = "result-cache"
)

// Known lists every flag the program reads, sorted.
func Known() []string {
	return []string{FlagResultCache, FlagSemanticCleanup}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. The map is copied.
// If flags is nil, an empty registry is created (all flags disabled).
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	maps.Copy(r.flags, flags)
	for name := range r.flags {
		if !slices.Contains(Known(), name) {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags and on a nil registry.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of all flags (for debugging/logging).
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}
