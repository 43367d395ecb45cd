package preprocess

import (
	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
)

// NotFound reports a compiler that could not be located under searchPath or in PATH.
func NotFound(name, searchPath string, cause error) error {
	err := zerr.Wrap(domain.ErrPreprocessorNotFound, `Preprocessor dependency "`+name+`" not found. Did you install it?`)
	err = zerr.With(err, "search_path", searchPath)
	if cause != nil {
		err = zerr.With(err, "cause", cause.Error())
	}
	return err
}

// LineColumn converts a byte offset in source to a 1-based line and column.
func LineColumn(source string, offset int) (int, int) {
	offset = min(max(offset, 0), len(source))
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
