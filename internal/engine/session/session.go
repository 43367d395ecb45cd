// Package session holds the state shared by the style plugins during one build session.
package session

import (
	"maps"
	"slices"
	"sync"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

// Chunk is an output stylesheet and the ordered style units it is built from.
type Chunk struct {
	Name    string
	UnitIDs []string
}

// Session is the state of one build or watch session.
// Resolvers and the transform chain configuration live for the whole session;
// everything else is reset at the start of each build.
type Session struct {
	Config    *domain.Config
	Resolvers *Resolvers
	Assets    *Assets

	mu      sync.RWMutex
	modules map[string]map[string]string
	styles  map[string]string
	chunks  []Chunk

	postcssOnce sync.Once
	postcss     *domain.PostcssConfig
	postcssErr  error
}

// New creates a Session for cfg.
func New(cfg *domain.Config, resolvers ports.ResolverFactory, hasher ports.Hasher) *Session {
	return &Session{
		Config:    cfg,
		Resolvers: NewResolvers(resolvers, cfg),
		Assets:    NewAssets(hasher, cfg.Build.AssetsDir),
		modules:   make(map[string]map[string]string),
		styles:    make(map[string]string),
	}
}

// Reset clears the per-build state: the module cache, styles, chunks and assets.
func (s *Session) Reset() {
	s.mu.Lock()
	clear(s.modules)
	clear(s.styles)
	s.chunks = nil
	s.mu.Unlock()

	s.Assets.Reset()
}

// SetModules records the scoped class mapping of a unit.
func (s *Session) SetModules(id string, modules map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[id] = maps.Clone(modules)
}

// Modules returns the scoped class mapping of a unit.
func (s *Session) Modules(id string) (map[string]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.modules[id]
	return m, ok
}

// SetStyle records the compiled text of a unit.
func (s *Session) SetStyle(id, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styles[id] = code
}

// Style returns the compiled text of a unit.
func (s *Session) Style(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.styles[id]
	return code, ok
}

// AddChunk appends units to the named chunk, creating it when needed.
// Units already part of the chunk are not added twice.
func (s *Session) AddChunk(name string, unitIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.chunks, func(c Chunk) bool { return c.Name == name })
	if i < 0 {
		s.chunks = append(s.chunks, Chunk{Name: name})
		i = len(s.chunks) - 1
	}
	for _, id := range unitIDs {
		if !slices.Contains(s.chunks[i].UnitIDs, id) {
			s.chunks[i].UnitIDs = append(s.chunks[i].UnitIDs, id)
		}
	}
}

// Chunks returns a copy of the chunks in creation order.
func (s *Session) Chunks() []Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Chunk, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = Chunk{Name: c.Name, UnitIDs: slices.Clone(c.UnitIDs)}
	}
	return out
}

// PostcssConfig resolves the transform chain configuration once per session.
func (s *Session) PostcssConfig(loader ports.ConfigLoader) (*domain.PostcssConfig, error) {
	s.postcssOnce.Do(func() {
		s.postcss, s.postcssErr = loader.LoadPostcssConfig(s.Config.CSS.Postcss, s.Config.Root)
	})
	return s.postcss, s.postcssErr
}
