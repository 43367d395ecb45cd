package sourcemap

import (
	"strings"

	"go.trai.ch/zerr"
)

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64Index = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(base64Chars); i++ {
		idx[base64Chars[i]] = int8(i)
	}
	return idx
}()

// ErrInvalidMappings is returned when a mappings string is not valid base64 VLQ.
var ErrInvalidMappings = zerr.New("invalid source map mappings")

func decodeVLQ(s string, pos int) (int, int, error) {
	var result, shift int
	for {
		if pos >= len(s) {
			return 0, pos, zerr.With(zerr.Wrap(ErrInvalidMappings, "decode"), "offset", pos)
		}
		d := base64Index[s[pos]]
		if d < 0 {
			return 0, pos, zerr.With(zerr.Wrap(ErrInvalidMappings, "decode"), "offset", pos)
		}
		pos++
		result += int(d&31) << shift
		shift += 5
		if d&32 == 0 {
			break
		}
	}
	negative := result&1 == 1
	result >>= 1
	if negative {
		result = -result
	}
	return result, pos, nil
}

func appendVLQ(b []byte, v int) []byte {
	if v < 0 {
		v = (-v << 1) | 1
	} else {
		v <<= 1
	}
	for {
		d := v & 31
		v >>= 5
		if v > 0 {
			d |= 32
		}
		b = append(b, base64Chars[d])
		if v == 0 {
			return b
		}
	}
}

// Decode parses a mappings string into segments grouped by generated line.
func Decode(mappings string) ([][]Segment, error) {
	lines := [][]Segment{}
	var source, line, column, name int

	for _, rawLine := range strings.Split(mappings, ";") {
		var segs []Segment
		genColumn := 0
		for _, raw := range strings.Split(rawLine, ",") {
			if raw == "" {
				continue
			}
			var fields [5]int
			n := 0
			for pos := 0; pos < len(raw); n++ {
				if n == 5 {
					return nil, zerr.With(zerr.Wrap(ErrInvalidMappings, "decode"), "segment", raw)
				}
				v, next, err := decodeVLQ(raw, pos)
				if err != nil {
					return nil, err
				}
				fields[n] = v
				pos = next
			}
			if n != 1 && n != 4 && n != 5 {
				return nil, zerr.With(zerr.Wrap(ErrInvalidMappings, "decode"), "segment", raw)
			}

			genColumn += fields[0]
			seg := Segment{GenColumn: genColumn, Source: -1, Name: -1}
			if n >= 4 {
				source += fields[1]
				line += fields[2]
				column += fields[3]
				seg.Source, seg.Line, seg.Column = source, line, column
			}
			if n == 5 {
				name += fields[4]
				seg.Name = name
			}
			segs = append(segs, seg)
		}
		lines = append(lines, segs)
	}
	return lines, nil
}

// Encode serializes segments grouped by generated line into a mappings string.
func Encode(lines [][]Segment) string {
	var b []byte
	var source, line, column, name int

	for i, segs := range lines {
		if i > 0 {
			b = append(b, ';')
		}
		genColumn := 0
		for j, seg := range segs {
			if j > 0 {
				b = append(b, ',')
			}
			b = appendVLQ(b, seg.GenColumn-genColumn)
			genColumn = seg.GenColumn
			if seg.Source < 0 {
				continue
			}
			b = appendVLQ(b, seg.Source-source)
			b = appendVLQ(b, seg.Line-line)
			b = appendVLQ(b, seg.Column-column)
			source, line, column = seg.Source, seg.Line, seg.Column
			if seg.Name >= 0 {
				b = appendVLQ(b, seg.Name-name)
				name = seg.Name
			}
		}
	}
	return strings.TrimRight(string(b), ";")
}
