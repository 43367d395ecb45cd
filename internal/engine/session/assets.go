package session

import (
	"encoding/base64"
	"mime"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/h2non/filetype"
	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

const (
	placeholderPrefix = "__SHEEN_ASSET__"
	hashLength        = 8
)

// PlaceholderRE matches asset placeholders; group 1 is the hash, group 2 the optional postfix.
var PlaceholderRE = regexp.MustCompile(`__SHEEN_ASSET__([a-z\d]{8})__(?:\$_(.*?)__)?`)

// Asset is a file referenced from a stylesheet and emitted next to the chunks.
type Asset struct {
	Hash   string
	Name   string
	Source string
	Data   []byte
}

// Assets is the registry of emitted assets keyed by content hash.
type Assets struct {
	hasher ports.Hasher
	dir    string

	mu     sync.RWMutex
	byHash map[string]Asset
}

// NewAssets creates an empty registry emitting under dir.
func NewAssets(hasher ports.Hasher, dir string) *Assets {
	if dir == "" {
		dir = domain.DefaultAssetsDir
	}
	return &Assets{hasher: hasher, dir: dir, byHash: make(map[string]Asset)}
}

// Read loads file and returns its content and short content hash.
func (a *Assets) Read(file string) ([]byte, string, error) {
	data, err := os.ReadFile(file) //nolint:gosec // file was produced by the resolver
	if err != nil {
		return nil, "", zerr.With(zerr.Wrap(err, "failed to read asset"), "file", file)
	}
	return data, a.hasher.ComputeContentHash(data)[:hashLength], nil
}

// Register records file as an asset and returns it.
func (a *Assets) Register(file string, data []byte, hash string) Asset {
	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, ok := a.byHash[hash]; ok {
		return existing
	}
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	asset := Asset{
		Hash:   hash,
		Name:   path.Join(a.dir, strings.TrimSuffix(base, ext)+"."+hash+ext),
		Source: file,
		Data:   data,
	}
	a.byHash[hash] = asset
	return asset
}

// Get returns the asset with the given hash.
func (a *Assets) Get(hash string) (Asset, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	asset, ok := a.byHash[hash]
	return asset, ok
}

// All returns every registered asset sorted by name.
func (a *Assets) All() []Asset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Asset, 0, len(a.byHash))
	for _, asset := range a.byHash {
		out = append(out, asset)
	}
	slices.SortFunc(out, func(x, y Asset) int { return strings.Compare(x.Name, y.Name) })
	return out
}

// Reset drops every registered asset.
func (a *Assets) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.byHash)
}

// Placeholder returns the text standing in for an asset url until chunks are emitted.
func Placeholder(hash, postfix string) string {
	p := placeholderPrefix + hash + "__"
	if postfix != "" {
		p += "$_" + postfix + "__"
	}
	return p
}

// DataURL encodes data as a base64 data url. The MIME type is sniffed from the
// content and falls back to the file extension.
func DataURL(file string, data []byte) string {
	mimeType := ""
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		mimeType = kind.MIME.Value
	}
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(file))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
