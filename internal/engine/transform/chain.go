package transform

import (
	"context"
	"slices"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/sourcemap"
)

// Plugin is one stage of the transform chain.
type Plugin interface {
	Name() string
	Transform(ctx context.Context, st *State) error
}

// State is the stylesheet flowing through the transform chain.
type State struct {
	ID       string
	File     string
	Code     string
	Modules  map[string]string
	Messages []domain.Message

	sourceMap bool
	maps      []*sourcemap.Map
}

// NewState creates the chain state for the text of unit id.
func NewState(id, code string, sourceMap bool) *State {
	return &State{
		ID:        id,
		File:      domain.CleanURL(id),
		Code:      code,
		sourceMap: sourceMap,
	}
}

// Commit applies the edits of e to the state and records the stage map.
func (s *State) Commit(e *sourcemap.Editor) {
	if !e.Changed() {
		return
	}
	if s.sourceMap {
		s.maps = append(s.maps, e.Map(s.File, false))
	}
	s.Code = e.String()
}

// Map returns the map of the whole chain, or nil when nothing was recorded.
func (s *State) Map() *sourcemap.Map {
	if len(s.maps) == 0 {
		return nil
	}
	chain := slices.Clone(s.maps)
	slices.Reverse(chain)
	return sourcemap.Combine(chain...)
}

// Dependency records a file the unit depends on.
func (s *State) Dependency(plugin, file string) {
	s.Messages = append(s.Messages, domain.Message{Type: domain.MessageDependency, Plugin: plugin, File: file})
}

// DirDependency records a directory glob the unit depends on.
func (s *State) DirDependency(plugin, dir, glob string) {
	s.Messages = append(s.Messages, domain.Message{Type: domain.MessageDirDependency, Plugin: plugin, Dir: dir, Glob: glob})
}

// Warn records a non-fatal diagnostic. Line and column are 1-based, zero when unknown.
func (s *State) Warn(plugin, text string, line, column int) {
	s.Messages = append(s.Messages, domain.Message{
		Type:   domain.MessageWarning,
		Plugin: plugin,
		Text:   text,
		Line:   line,
		Column: column,
	})
}

// Run applies the plugins in order.
func Run(ctx context.Context, st *State, plugins []Plugin) error {
	for _, p := range plugins {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Transform(ctx, st); err != nil {
			return err
		}
	}
	return nil
}
