// Package store persists the sale ledger. The ledger is one document:
// every Save rewrites the full list and Load returns it verbatim, so
// backends stay trivial and writes stay atomic.
package store

import (
	"context"

	"github.com/kwanghifi/kwanghifi/internal/core"
)

// Store loads and saves the full list of sale records.
type Store interface {
	Load(ctx context.Context) ([]core.SaleRecord, error)
	Save(ctx context.Context, records []core.SaleRecord) error
}

// CleanupFunc releases resources held by a store backend.
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function.
type Result struct {
	Store   Store
	Cleanup CleanupFunc
}

// BackendType selects a store backend.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is supported.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
