package domain

import "time"

// UnitRecord is the persisted compile result of a style unit.
type UnitRecord struct {
	ID        string            `json:"id,omitzero"`
	InputHash string            `json:"input_hash,omitzero"`
	Code      string            `json:"code,omitzero"`
	Modules   map[string]string `json:"modules,omitzero"`
	Deps      []string          `json:"deps,omitzero"`
	Assets    []string          `json:"assets,omitzero"`
	Timestamp time.Time         `json:"timestamp,omitzero"`
}
