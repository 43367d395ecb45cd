package fs

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/ports"
)

var _ ports.Globber = (*Globber)(nil)

// Globber expands doublestar patterns against the file system.
type Globber struct{}

// NewGlobber creates a new Globber.
func NewGlobber() *Globber {
	return &Globber{}
}

// Glob returns the sorted absolute files under base matching pattern.
// An absolute pattern ignores base. Paths with a segment listed in ignore are dropped.
func (g *Globber) Glob(base, pattern string, ignore []string) ([]string, error) {
	pattern = filepath.ToSlash(pattern)
	if path.IsAbs(pattern) || filepath.IsAbs(pattern) {
		base, pattern = doublestar.SplitPattern(pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(base), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to glob"), "pattern", pattern)
	}

	result := make([]string, 0, len(matches))
	for _, match := range matches {
		if hasIgnoredSegment(match, ignore) {
			continue
		}
		result = append(result, filepath.Join(base, filepath.FromSlash(match)))
	}
	slices.Sort(result)
	return result, nil
}

// Match reports whether the slash-separated name matches pattern.
func (g *Globber) Match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, filepath.ToSlash(name))
	return err == nil && ok
}

func hasIgnoredSegment(p string, ignore []string) bool {
	for _, seg := range strings.Split(p, "/") {
		if slices.Contains(ignore, seg) {
			return true
		}
	}
	return false
}
