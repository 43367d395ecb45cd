package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/ports"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes cache keys for style units and content hashes for assets.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return digest.Sum64(), nil
}

// ComputeUnitHash hashes a unit's id, its source text, the salt and the
// content of every dependency. Directory dependencies contribute every file below them.
func (h *Hasher) ComputeUnitHash(id, code string, deps []string, salt string) (string, error) {
	digest := xxhash.New()
	for _, part := range []string{id, code, salt} {
		_, _ = digest.WriteString(part)
		_, _ = digest.Write([]byte{0})
	}

	sorted := slices.Clone(deps)
	slices.Sort(sorted)
	for _, dep := range slices.Compact(sorted) {
		if err := h.hashPath(dep, digest); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

// ComputeContentHash returns the hex XXHash of data.
func (h *Hasher) ComputeContentHash(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

func (h *Hasher) hashPath(path string, digest io.Writer) error {
	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat dependency"), "path", path)
	}
	if !info.IsDir() {
		return h.hashFile(path, digest)
	}
	for file := range h.walker.WalkFiles(path, nil) {
		if err := h.hashFile(file, digest); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hasher) hashFile(path string, digest io.Writer) error {
	_, _ = digest.Write([]byte(path))
	_, _ = digest.Write([]byte{0})

	sum, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}
	if err := binary.Write(digest, binary.LittleEndian, sum); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}
