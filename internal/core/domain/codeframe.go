package domain

import (
	"strconv"
	"strings"
)

const codeFrameRange = 2

// CodeFrame renders the source lines around a 1-based line and column with a caret under the column.
func CodeFrame(source string, line, column int) string {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	start := max(1, line-codeFrameRange)
	end := min(len(lines), line+codeFrameRange)
	width := len(strconv.Itoa(end))

	var b strings.Builder
	for n := start; n <= end; n++ {
		num := strconv.Itoa(n)
		b.WriteString(num)
		b.WriteString(strings.Repeat(" ", width-len(num)+1))
		b.WriteString("|  ")
		b.WriteString(lines[n-1])
		b.WriteString("\n")
		if n == line {
			b.WriteString(strings.Repeat(" ", width+1))
			b.WriteString("|  ")
			b.WriteString(strings.Repeat(" ", max(0, column-1)))
			b.WriteString("^\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
