package store

import (
	"context"
	"sync"

	"github.com/kwanghifi/kwanghifi/internal/core"
)

// MemoryStore keeps the ledger in process memory. Contents are lost on
// restart, which is fine for tests and throwaway runs.
type MemoryStore struct {
	mu      sync.Mutex
	records []core.SaleRecord
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) ([]core.SaleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]core.SaleRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MemoryStore) Save(ctx context.Context, records []core.SaleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make([]core.SaleRecord, len(records))
	copy(m.records, records)
	return nil
}
