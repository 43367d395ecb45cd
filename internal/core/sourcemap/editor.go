package sourcemap

import (
	"sort"
	"strings"
)

// Editor applies non-overlapping edits to a string and produces the resulting
// text together with a map back to the original.
type Editor struct {
	original   string
	edits      []edit
	seq        int
	lineStarts []int
}

type edit struct {
	start   int
	end     int
	text    string
	seq     int
	prepend bool
}

// NewEditor creates an Editor over s.
func NewEditor(s string) *Editor {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Editor{original: s, lineStarts: starts}
}

// Original returns the unedited text.
func (e *Editor) Original() string {
	return e.original
}

// Replace replaces original[start:end] with text.
func (e *Editor) Replace(start, end int, text string) {
	e.add(edit{start: start, end: end, text: text})
}

// Remove deletes original[start:end].
func (e *Editor) Remove(start, end int) {
	e.add(edit{start: start, end: end})
}

// Insert places text before the original character at pos.
// Insertions at the same position keep their call order.
func (e *Editor) Insert(pos int, text string) {
	e.add(edit{start: pos, end: pos, text: text})
}

// Prepend places text before everything, including earlier prepends.
func (e *Editor) Prepend(text string) {
	e.add(edit{start: 0, end: 0, text: text, prepend: true})
}

// Changed reports whether any edit was recorded.
func (e *Editor) Changed() bool {
	return len(e.edits) > 0
}

func (e *Editor) add(ed edit) {
	ed.start = clamp(ed.start, 0, len(e.original))
	ed.end = clamp(ed.end, ed.start, len(e.original))
	e.seq++
	ed.seq = e.seq
	e.edits = append(e.edits, ed)
}

// String returns the edited text.
func (e *Editor) String() string {
	out, _ := e.render(false)
	return out
}

// Map returns the map from the edited text back to the original, named source.
func (e *Editor) Map(source string, includeContent bool) *Map {
	_, lines := e.render(true)
	b := newBuilder("")
	content := ""
	if includeContent {
		content = e.original
	}
	for genLine, segs := range lines {
		b.line(genLine)
		for _, seg := range segs {
			b.add(genLine, seg.GenColumn, source, content, seg.Line, seg.Column, "")
		}
	}
	if len(b.sources) == 0 {
		b.sources = []string{source}
		b.contents = []string{content}
	}
	return b.build()
}

func (e *Editor) sorted() []edit {
	edits := append([]edit(nil), e.edits...)
	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if a.prepend != b.prepend {
			return a.prepend
		}
		if a.prepend {
			return a.seq > b.seq
		}
		aInsert, bInsert := a.start == a.end, b.start == b.end
		if aInsert != bInsert {
			return aInsert
		}
		return a.seq < b.seq
	})
	return edits
}

func (e *Editor) render(withMap bool) (string, [][]Segment) {
	var out strings.Builder
	out.Grow(len(e.original))
	lines := [][]Segment{nil}
	genColumn := 0

	mark := func(offset int) {
		if !withMap {
			return
		}
		line, column := e.position(offset)
		cur := len(lines) - 1
		lines[cur] = append(lines[cur], Segment{GenColumn: genColumn, Source: 0, Line: line, Column: column, Name: -1})
	}
	writeUnmapped := func(text string) {
		out.WriteString(text)
		for i := 0; i < len(text); i++ {
			if text[i] == '\n' {
				lines = append(lines, nil)
				genColumn = 0
			} else {
				genColumn++
			}
		}
	}
	writeMapped := func(from, to int) {
		if from >= to {
			return
		}
		chunk := e.original[from:to]
		out.WriteString(chunk)
		mark(from)
		for i := 0; i < len(chunk); i++ {
			if chunk[i] != '\n' {
				genColumn++
				continue
			}
			lines = append(lines, nil)
			genColumn = 0
			if i+1 < len(chunk) {
				mark(from + i + 1)
			}
		}
	}

	cursor := 0
	for _, ed := range e.sorted() {
		if ed.start < cursor {
			continue
		}
		writeMapped(cursor, ed.start)
		cursor = ed.start
		if ed.end > ed.start {
			if ed.text != "" {
				mark(ed.start)
				writeUnmapped(ed.text)
			}
			cursor = ed.end
			continue
		}
		writeUnmapped(ed.text)
	}
	writeMapped(cursor, len(e.original))

	return out.String(), lines
}

func (e *Editor) position(offset int) (int, int) {
	line := sort.Search(len(e.lineStarts), func(i int) bool {
		return e.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	return line, offset - e.lineStarts[line]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
