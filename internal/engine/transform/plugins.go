package transform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2/css"
	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/sourcemap"
)

// NewConfigPlugin builds a registered plugin from its configuration entry.
func NewConfigPlugin(spec domain.PluginSpec) (Plugin, error) {
	switch spec.Name {
	case "strip-comments":
		return StripCommentsPlugin{}, nil
	case "unit-transform":
		return newUnitTransform(spec.Options)
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownPlugin, "cannot build plugin"), "plugin", spec.Name)
	}
}

// StripCommentsPlugin removes comments except those starting with "/*!".
type StripCommentsPlugin struct{}

// Name implements Plugin.
func (StripCommentsPlugin) Name() string {
	return "strip-comments"
}

// Transform implements Plugin.
func (StripCommentsPlugin) Transform(_ context.Context, st *State) error {
	if !strings.Contains(st.Code, "/*") {
		return nil
	}
	ed := sourcemap.NewEditor(st.Code)
	for _, t := range tokenize(st.Code) {
		if t.Type == css.CommentToken && !strings.HasPrefix(t.Text, "/*!") {
			ed.Remove(t.Start, t.End())
		}
	}
	st.Commit(ed)
	return nil
}

// UnitTransformPlugin converts dimensions from one unit to another.
type UnitTransformPlugin struct {
	From  string
	To    string
	Ratio float64
}

func newUnitTransform(opts map[string]any) (UnitTransformPlugin, error) {
	p := UnitTransformPlugin{From: "px", To: "rpx", Ratio: 1}
	if v, ok := opts["from"].(string); ok && v != "" {
		p.From = v
	}
	if v, ok := opts["to"].(string); ok && v != "" {
		p.To = v
	}
	if v, ok := opts["ratio"]; ok {
		switch r := v.(type) {
		case int:
			p.Ratio = float64(r)
		case float64:
			p.Ratio = r
		default:
			return p, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unit-transform ratio must be a number"), "ratio", fmt.Sprint(v))
		}
	}
	return p, nil
}

// Name implements Plugin.
func (UnitTransformPlugin) Name() string {
	return "unit-transform"
}

// Transform implements Plugin.
func (p UnitTransformPlugin) Transform(_ context.Context, st *State) error {
	ed := sourcemap.NewEditor(st.Code)
	for _, t := range tokenize(st.Code) {
		if t.Type != css.DimensionToken {
			continue
		}
		num, unit := splitDimension(t.Text)
		if !strings.EqualFold(unit, p.From) {
			continue
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			continue
		}
		ed.Replace(t.Start, t.End(), strconv.FormatFloat(v*p.Ratio, 'f', -1, 64)+p.To)
	}
	st.Commit(ed)
	return nil
}

func splitDimension(s string) (string, string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c >= '0' && c <= '9' || c == '.' || c == '+' || c == '-' {
			i++
			continue
		}
		if (c == 'e' || c == 'E') && i+1 < len(s) && (s[i+1] >= '0' && s[i+1] <= '9' || s[i+1] == '-' || s[i+1] == '+') {
			i++
			continue
		}
		break
	}
	return s[:i], s[i:]
}
