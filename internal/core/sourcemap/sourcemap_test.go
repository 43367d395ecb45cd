package sourcemap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sheen/internal/core/sourcemap"
)

func TestDecodeEncode(t *testing.T) {
	lines, err := sourcemap.Decode("AAAA,IAAI;AACA,KAAKA")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, sourcemap.Segment{GenColumn: 0, Source: 0, Line: 0, Column: 0, Name: -1}, lines[0][0])
	assert.Equal(t, sourcemap.Segment{GenColumn: 4, Source: 0, Line: 0, Column: 4, Name: -1}, lines[0][1])
	assert.Equal(t, sourcemap.Segment{GenColumn: 0, Source: 0, Line: 1, Column: 4, Name: -1}, lines[1][0])
	assert.Equal(t, sourcemap.Segment{GenColumn: 5, Source: 0, Line: 1, Column: 9, Name: 0}, lines[1][1])

	assert.Equal(t, "AAAA,IAAI;AACA,KAAKA", sourcemap.Encode(lines))
}

func TestDecode_Invalid(t *testing.T) {
	_, err := sourcemap.Decode("A!AA")
	require.Error(t, err)
	assert.ErrorIs(t, err, sourcemap.ErrInvalidMappings)
}

func TestEditor_ReplaceMapsBack(t *testing.T) {
	e := sourcemap.NewEditor("a{color:red}\nb{}")
	e.Replace(2, 7, "background")

	assert.Equal(t, "a{background:red}\nb{}", e.String())

	m := e.Map("a.css", true)
	assert.Equal(t, []string{"a.css"}, m.Sources)
	assert.Equal(t, []string{"a{color:red}\nb{}"}, m.SourcesContent)

	lines, err := m.Decode()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Len(t, lines[0], 3)
	assert.Equal(t, 2, lines[0][1].GenColumn)
	assert.Equal(t, 2, lines[0][1].Column)
	assert.Equal(t, 12, lines[0][2].GenColumn)
	assert.Equal(t, 7, lines[0][2].Column)
	assert.Equal(t, 1, lines[1][0].Line)
}

func TestEditor_InsertOrder(t *testing.T) {
	e := sourcemap.NewEditor("body{}")
	e.Insert(0, "@import 'a';")
	e.Insert(0, "@import 'b';")
	e.Prepend("@charset 'utf-8';")
	e.Remove(4, 4)

	assert.Equal(t, "@charset 'utf-8';@import 'a';@import 'b';body{}", e.String())
	assert.True(t, e.Changed())
}

func TestEditor_OverlappingEditsAreSkipped(t *testing.T) {
	e := sourcemap.NewEditor("0123456789")
	e.Replace(2, 6, "x")
	e.Replace(4, 8, "y")

	assert.Equal(t, "01x6789", e.String())
}

func TestCombine(t *testing.T) {
	first := sourcemap.NewEditor("x\ny")
	first.Prepend("p\n")
	m1 := first.Map("a.css", false)

	second := sourcemap.NewEditor(first.String())
	second.Replace(2, 3, "X")
	m2 := second.Map("mid.css", false)

	combined := sourcemap.Combine(m2, nil, m1)
	require.NotNil(t, combined)
	assert.Equal(t, []string{"a.css"}, combined.Sources)

	lines, err := combined.Decode()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Empty(t, lines[0])
	require.NotEmpty(t, lines[1])
	assert.Equal(t, 0, lines[1][0].Line)
	require.NotEmpty(t, lines[2])
	assert.Equal(t, 1, lines[2][0].Line)
}

func TestCombine_AllEmpty(t *testing.T) {
	assert.Nil(t, sourcemap.Combine(nil, sourcemap.Empty()))
}

func TestParse(t *testing.T) {
	m, err := sourcemap.Parse([]byte(`{"sources":["a.scss"],"names":[],"mappings":"AAAA"}`))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Version)
	assert.False(t, m.IsEmpty())

	_, err = sourcemap.Parse([]byte(`{`))
	assert.Error(t, err)
}
