package watcher

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/sheen/internal/core/ports"
)

var _ ports.DevServer = (*GlobRegistry)(nil)

type globEntry struct {
	base    string
	pattern string
}

// GlobRegistry records the glob patterns style units depend on and maps changed
// paths back to the units that must be rebuilt.
type GlobRegistry struct {
	mu      sync.RWMutex
	globber ports.Globber
	globs   map[string][]globEntry
}

// NewGlobRegistry creates an empty GlobRegistry.
func NewGlobRegistry(globber ports.Globber) *GlobRegistry {
	return &GlobRegistry{
		globber: globber,
		globs:   make(map[string][]globEntry),
	}
}

// WatchGlob implements ports.DevServer. Only paths under base are matched against pattern.
func (r *GlobRegistry) WatchGlob(unitID, base, pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := globEntry{base: filepath.Clean(base), pattern: filepath.ToSlash(pattern)}
	if slices.Contains(r.globs[unitID], entry) {
		return
	}
	r.globs[unitID] = append(r.globs[unitID], entry)
}

// Forget drops every glob registered for unitID.
func (r *GlobRegistry) Forget(unitID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.globs, unitID)
}

// Affected returns the sorted ids of units with a registered glob matching any of paths.
func (r *GlobRegistry) Affected(paths []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for unitID, entries := range r.globs {
		if r.matchesAny(entries, paths) {
			out = append(out, unitID)
		}
	}
	slices.Sort(out)
	return out
}

func (r *GlobRegistry) matchesAny(entries []globEntry, paths []string) bool {
	for _, e := range entries {
		for _, p := range paths {
			p = filepath.Clean(p)
			if p != e.base && !strings.HasPrefix(p, e.base+string(filepath.Separator)) {
				continue
			}
			if r.globber.Match(e.pattern, filepath.ToSlash(p)) {
				return true
			}
		}
	}
	return false
}
