// Package services holds the application services between the HTTP
// layer and the store.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kwanghifi/kwanghifi/internal/amqp"
	"github.com/kwanghifi/kwanghifi/internal/core"
	"github.com/kwanghifi/kwanghifi/internal/log"
	"github.com/kwanghifi/kwanghifi/internal/store"
)

// SalesService owns the canonical in-memory list of sale records,
// newest first. Every mutation rewrites the full list through the
// store and publishes a sale event when a publisher is configured.
type SalesService struct {
	mu      sync.Mutex
	records []core.SaleRecord

	store     store.Store
	publisher *amqp.Client
	logger    *log.Logger
}

// NewSalesService creates the service. A nil publisher disables sale
// events.
func NewSalesService(st store.Store, publisher *amqp.Client, logger *log.Logger) *SalesService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SalesService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentSales),
	}
}

// Load reads the persisted ledger once at startup. On failure the
// service starts from an empty list so the UI stays usable.
func (s *SalesService) Load(ctx context.Context) error {
	records, err := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.records = nil
		return fmt.Errorf("load sale records: %w", err)
	}

	s.records = records
	s.logger.InfoContext(ctx, "Loaded sale records", log.FieldRecordCount, len(records))
	return nil
}

// Ready probes the store. Used by the readiness endpoint.
func (s *SalesService) Ready(ctx context.Context) error {
	_, err := s.store.Load(ctx)
	return err
}

// Create validates the record, assigns it an ID and prepends it to the
// ledger. An empty date defaults to today.
func (s *SalesService) Create(ctx context.Context, record core.SaleRecord) (core.SaleRecord, error) {
	if record.Date == "" {
		record.Date = core.Today()
	}
	if err := record.Validate(); err != nil {
		return core.SaleRecord{}, err
	}
	record.ID = uuid.NewString()

	s.mu.Lock()
	s.records = append([]core.SaleRecord{record}, s.records...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, amqp.SaleCreated, record)
	return record, nil
}

// Update replaces the record with the given id in place, keeping its
// position in the ledger. An empty date defaults to today.
func (s *SalesService) Update(ctx context.Context, id string, record core.SaleRecord) (core.SaleRecord, error) {
	if record.Date == "" {
		record.Date = core.Today()
	}
	if err := record.Validate(); err != nil {
		return core.SaleRecord{}, err
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return core.SaleRecord{}, core.ErrNotFound
	}
	record.ID = id
	s.records[idx] = record
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, amqp.SaleUpdated, record)
	return record, nil
}

// Delete removes the record with the given id and returns its last
// state.
func (s *SalesService) Delete(ctx context.Context, id string) (core.SaleRecord, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return core.SaleRecord{}, core.ErrNotFound
	}
	removed := s.records[idx]
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, amqp.SaleDeleted, removed)
	return removed, nil
}

// Get returns the record with the given id.
func (s *SalesService) Get(id string) (core.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexLocked(id); idx >= 0 {
		return s.records[idx], nil
	}
	return core.SaleRecord{}, core.ErrNotFound
}

// List returns a copy of the records matching the month filter, in
// ledger order (newest first).
func (s *SalesService) List(month core.Month) []core.SaleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := core.FilterByMonth(s.records, month)
	out := make([]core.SaleRecord, len(filtered))
	copy(out, filtered)
	return out
}

// Summary aggregates totals for the month filter.
func (s *SalesService) Summary(month core.Month) core.SummaryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Summarize(core.FilterByMonth(s.records, month))
}

// Breakdown counts records per category for the month filter.
func (s *SalesService) Breakdown(month core.Month) core.CategoryCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.CategoryBreakdown(core.FilterByMonth(s.records, month))
}

// Months lists the distinct months present in the ledger, newest first.
func (s *SalesService) Months() []core.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.DistinctMonths(s.records)
}

// Count returns the total number of records.
func (s *SalesService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *SalesService) indexLocked(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked saves the full list. A save failure is logged, never
// returned: the in-memory list stays authoritative and the next
// mutation retries the write. Callers must hold mu.
func (s *SalesService) persistLocked(ctx context.Context) {
	snapshot := make([]core.SaleRecord, len(s.records))
	copy(snapshot, s.records)

	if err := s.store.Save(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save sale records",
			"error", err,
			log.FieldOperation, log.OpSave,
			log.FieldRecordCount, len(snapshot))
	}
}

func (s *SalesService) publish(ctx context.Context, kind string, record core.SaleRecord) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSaleEvent(ctx, kind, record); err != nil {
		// Don't fail the request - the record is saved locally
		s.logger.ErrorContext(ctx, "Failed to publish sale event",
			"error", err,
			log.FieldEventKind, kind,
			log.FieldRecordID, record.ID)
	}
}
