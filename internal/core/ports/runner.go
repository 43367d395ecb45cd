package ports

import "context"

// Command is an external process invocation.
type Command struct {
	Path  string
	Args  []string
	Stdin string
	Dir   string
}

// CommandRunner runs external compilers.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type CommandRunner interface {
	// LookPath finds name in root/node_modules/.bin, then in PATH.
	LookPath(root, name string) (string, error)

	// Run executes cmd and returns its standard output.
	Run(ctx context.Context, cmd Command) (string, error)
}
