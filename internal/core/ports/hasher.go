package ports

// Hasher defines the interface for computing hashes.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// ComputeUnitHash hashes a unit's id, source, dependency file contents and a salt.
	ComputeUnitHash(id, code string, deps []string, salt string) (string, error)

	// ComputeContentHash returns the hex content hash of data.
	ComputeContentHash(data []byte) string
}
