// Package sourcemap implements version 3 source maps: decoding, encoding,
// composition of map chains, and an edit buffer that records its own map.
package sourcemap

import (
	"encoding/json"

	"go.trai.ch/zerr"
)

// Map is a version 3 source map.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Segment is one decoded mapping. Source and Name are -1 when absent.
type Segment struct {
	GenColumn int
	Source    int
	Line      int
	Column    int
	Name      int
}

// Empty returns the marker map used when source maps are disabled.
func Empty() *Map {
	return &Map{Version: 3, Sources: []string{}, Names: []string{}}
}

// IsEmpty reports whether the map carries no mappings.
func (m *Map) IsEmpty() bool {
	return m == nil || m.Mappings == ""
}

// Parse decodes a JSON source map.
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, zerr.Wrap(err, "failed to parse source map")
	}
	if m.Version == 0 {
		m.Version = 3
	}
	return &m, nil
}

// Decode returns the mappings grouped by generated line.
func (m *Map) Decode() ([][]Segment, error) {
	if m == nil {
		return nil, nil
	}
	return Decode(m.Mappings)
}

// JSON encodes the map.
func (m *Map) JSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode source map")
	}
	return data, nil
}

// Content returns the embedded content of source i, if any.
func (m *Map) Content(i int) string {
	if i < 0 || i >= len(m.SourcesContent) {
		return ""
	}
	return m.SourcesContent[i]
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	c := *m
	c.Sources = append([]string(nil), m.Sources...)
	c.SourcesContent = append([]string(nil), m.SourcesContent...)
	c.Names = append([]string(nil), m.Names...)
	return &c
}
