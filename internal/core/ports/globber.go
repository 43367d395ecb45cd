package ports

// Globber expands glob patterns against the file system.
//
//go:generate mockgen -destination=mocks/globber_mock.go -package=mocks -source=globber.go
type Globber interface {
	// Glob returns the sorted files under base matching pattern,
	// skipping any path with a segment listed in ignore.
	Glob(base, pattern string, ignore []string) ([]string, error)

	// Match reports whether the slash-separated name matches pattern.
	Match(pattern, name string) bool
}
