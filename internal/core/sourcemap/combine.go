package sourcemap

import "sort"

// Combine composes a chain of maps ordered from the last transformation to the first.
// Each map's sources are expected to be the output of the next map in the chain.
// Nil and empty maps are skipped; the result is nil when nothing remains.
func Combine(maps ...*Map) *Map {
	chain := make([]*Map, 0, len(maps))
	for _, m := range maps {
		if !m.IsEmpty() {
			chain = append(chain, m)
		}
	}
	if len(chain) == 0 {
		return nil
	}

	result := chain[0]
	for _, lower := range chain[1:] {
		result = compose(result, lower)
	}
	return result
}

func compose(upper, lower *Map) *Map {
	up, err := upper.Decode()
	if err != nil {
		return upper
	}
	low, err := lower.Decode()
	if err != nil {
		return upper
	}

	b := newBuilder(upper.File)
	for genLine, segs := range up {
		b.line(genLine)
		for _, seg := range segs {
			if seg.Source < 0 {
				continue
			}
			name := ""
			if seg.Name >= 0 && seg.Name < len(upper.Names) {
				name = upper.Names[seg.Name]
			}

			if !tracesThrough(upper, lower, seg.Source) {
				b.add(genLine, seg.GenColumn, upper.Sources[seg.Source], upper.Content(seg.Source), seg.Line, seg.Column, name)
				continue
			}

			traced, ok := lookup(low, seg.Line, seg.Column)
			if !ok || traced.Source < 0 || traced.Source >= len(lower.Sources) {
				continue
			}
			if traced.Name >= 0 && traced.Name < len(lower.Names) {
				name = lower.Names[traced.Name]
			}
			b.add(genLine, seg.GenColumn, lower.Sources[traced.Source], lower.Content(traced.Source), traced.Line, traced.Column, name)
		}
	}
	return b.build()
}

// tracesThrough reports whether source i of upper is the generated output described by lower.
func tracesThrough(upper, lower *Map, i int) bool {
	if len(upper.Sources) == 1 {
		return true
	}
	return lower.File != "" && upper.Sources[i] == lower.File
}

// lookup finds the segment covering the given generated position.
func lookup(lines [][]Segment, line, column int) (Segment, bool) {
	if line < 0 || line >= len(lines) {
		return Segment{}, false
	}
	segs := lines[line]
	i := sort.Search(len(segs), func(i int) bool {
		return segs[i].GenColumn > column
	})
	if i == 0 {
		return Segment{}, false
	}
	return segs[i-1], true
}

type builder struct {
	file       string
	sources    []string
	contents   []string
	hasContent bool
	sourceIdx  map[string]int
	names      []string
	nameIdx    map[string]int
	lines      [][]Segment
}

func newBuilder(file string) *builder {
	return &builder{
		file:      file,
		sourceIdx: make(map[string]int),
		nameIdx:   make(map[string]int),
	}
}

func (b *builder) line(n int) {
	for len(b.lines) <= n {
		b.lines = append(b.lines, nil)
	}
}

func (b *builder) add(genLine, genColumn int, source, content string, line, column int, name string) {
	b.line(genLine)
	si, ok := b.sourceIdx[source]
	if !ok {
		si = len(b.sources)
		b.sourceIdx[source] = si
		b.sources = append(b.sources, source)
		b.contents = append(b.contents, content)
	}
	if content != "" {
		b.contents[si] = content
		b.hasContent = true
	}
	ni := -1
	if name != "" {
		var ok bool
		ni, ok = b.nameIdx[name]
		if !ok {
			ni = len(b.names)
			b.nameIdx[name] = ni
			b.names = append(b.names, name)
		}
	}
	b.lines[genLine] = append(b.lines[genLine], Segment{
		GenColumn: genColumn,
		Source:    si,
		Line:      line,
		Column:    column,
		Name:      ni,
	})
}

func (b *builder) build() *Map {
	m := &Map{
		Version:  3,
		File:     b.file,
		Sources:  b.sources,
		Names:    b.names,
		Mappings: Encode(b.lines),
	}
	if m.Sources == nil {
		m.Sources = []string{}
	}
	if m.Names == nil {
		m.Names = []string{}
	}
	if b.hasContent {
		m.SourcesContent = b.contents
	}
	return m
}
