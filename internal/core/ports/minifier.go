package ports

// MinifyResult is the output of a minifier.
type MinifyResult struct {
	Code     string
	Warnings []string
}

// Minifier minifies stylesheet text.
//
//go:generate mockgen -source=minifier.go -destination=mocks/mock_minifier.go -package=mocks
type Minifier interface {
	// Minify minifies code for the given browser target, e.g. "chrome61".
	Minify(code, filename, target string) (MinifyResult, error)
}
