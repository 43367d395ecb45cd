package domain

import (
	"fmt"
	"strings"

	"go.trai.ch/sheen/internal/core/sourcemap"
)

// ResolveFunc resolves specifier as imported from importer to an absolute file path.
type ResolveFunc func(specifier, importer string) (string, bool)

// LoadFunc reads an imported file on behalf of rootFile.
type LoadFunc func(file, rootFile string) (string, error)

// PreprocessOptions is the merged option set handed to a preprocessor.
type PreprocessOptions struct {
	Filename        string
	IncludePaths    []string
	Paths           []string
	Imports         []string
	Alias           []Alias
	IndentedSyntax  bool
	EnableSourcemap bool
}

// PreprocessRequest is a single preprocessor invocation.
type PreprocessRequest struct {
	Dialect Dialect
	Source  string
	Root    string
	Options PreprocessOptions
	Resolve ResolveFunc
	Load    LoadFunc
}

// PreprocessResult is what a preprocessor returns. Errors are returned in-band.
type PreprocessResult struct {
	Code          string
	Map           *sourcemap.Map
	AdditionalMap *sourcemap.Map
	Deps          []string
	Errors        []error
}

// CompileError describes a failure located in a source file.
// Line and Column are 1-based and zero when unknown.
type CompileError struct {
	Message string
	File    string
	Line    int
	Column  int
	Frame   string
}

// Error implements error.
func (e *CompileError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Frame != "" {
		b.WriteString("\n")
		b.WriteString(e.Frame)
	}
	return b.String()
}

// Unwrap makes every CompileError match ErrCompileFailed.
func (e *CompileError) Unwrap() error {
	return ErrCompileFailed
}

// MessageType is the kind of a transform chain message.
type MessageType string

const (
	// MessageDependency names a file the unit depends on.
	MessageDependency MessageType = "dependency"
	// MessageDirDependency names a directory and glob the unit depends on.
	MessageDirDependency MessageType = "dir-dependency"
	// MessageWarning is a non-fatal diagnostic.
	MessageWarning MessageType = "warning"
)

// Message is emitted by transform chain stages.
type Message struct {
	Type   MessageType
	Plugin string
	File   string
	Dir    string
	Glob   string
	Text   string
	Line   int
	Column int
}

// CSSResult is the output of the canonical post-processor for one unit.
type CSSResult struct {
	Code    string
	Map     *sourcemap.Map
	Modules map[string]string
	Deps    []string
}
