package ports

// DevServer is the watch-mode host. It is nil for one-shot builds.
//
//go:generate mockgen -source=dev_server.go -destination=mocks/mock_dev_server.go -package=mocks
type DevServer interface {
	// WatchGlob registers a glob whose matches invalidate unitID.
	// base is an absolute directory and pattern an absolute slash-separated glob below it.
	WatchGlob(unitID, base, pattern string)
}
