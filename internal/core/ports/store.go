package ports

import "go.trai.ch/sheen/internal/core/domain"

// UnitStore defines the interface for persisting compiled style units.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type UnitStore interface {
	// Get retrieves the record of a unit.
	// Returns nil, nil if not found.
	Get(id string) (*domain.UnitRecord, error)

	// Put stores the record in memory.
	Put(rec domain.UnitRecord) error

	// Flush writes pending records to disk.
	Flush() error
}

// UnitStoreFactory opens unit stores.
type UnitStoreFactory interface {
	Open(path string) (UnitStore, error)
}
