package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kwanghifi/kwanghifi/internal/amqp"
	"github.com/kwanghifi/kwanghifi/internal/core"
	"github.com/kwanghifi/kwanghifi/internal/sheets"
)

// fakeSheet implements sheets.RowWriter and sheets.RowFinder in memory.
type fakeSheet struct {
	rows    map[string]string // record ID -> row ref
	nextRow int

	appends int
	updates int
	clears  int

	appendErr error
	findErr   error
}

func newFakeSheet() *fakeSheet {
	return &fakeSheet{rows: make(map[string]string), nextRow: 1}
}

func (f *fakeSheet) AppendRow(_ context.Context, record core.SaleRecord) (string, error) {
	if f.appendErr != nil {
		return "", f.appendErr
	}
	f.appends++
	ref := fmt.Sprintf("Sales!A%d:J%d", f.nextRow, f.nextRow)
	f.nextRow++
	f.rows[record.ID] = ref
	return ref, nil
}

func (f *fakeSheet) UpdateRow(_ context.Context, rowRef string, record core.SaleRecord) error {
	f.updates++
	f.rows[record.ID] = rowRef
	return nil
}

func (f *fakeSheet) ClearRow(_ context.Context, rowRef string) error {
	f.clears++
	for id, ref := range f.rows {
		if ref == rowRef {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeSheet) FindRow(_ context.Context, recordID string) (string, error) {
	if f.findErr != nil {
		return "", f.findErr
	}
	ref, ok := f.rows[recordID]
	if !ok {
		return "", sheets.ErrRowNotFound
	}
	return ref, nil
}

func testEvent(kind string) *amqp.SaleEventMessage {
	return &amqp.SaleEventMessage{
		Kind: kind,
		Record: core.SaleRecord{
			ID:           "rec-1",
			Brand:        "Rega",
			Category:     core.CategoryPlayerDAC,
			Model:        "Planar 3",
			CostPrice:    core.Money{Cents: 40000},
			ShippingCost: core.Money{Cents: 2000},
			SellingPrice: core.Money{Cents: 55000},
			Date:         "2026-08-12",
		},
	}
}

func TestHandleSaleEvent_Created(t *testing.T) {
	sheet := newFakeSheet()
	w := NewMirrorWorker(sheet, sheet)

	if err := w.HandleSaleEvent(context.Background(), testEvent(amqp.SaleCreated)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sheet.appends != 1 {
		t.Errorf("expected 1 append, got %d", sheet.appends)
	}
	if _, ok := sheet.rows["rec-1"]; !ok {
		t.Error("expected record row to exist after create")
	}
}

func TestHandleSaleEvent_UpdatedExistingRow(t *testing.T) {
	sheet := newFakeSheet()
	w := NewMirrorWorker(sheet, sheet)

	if err := w.HandleSaleEvent(context.Background(), testEvent(amqp.SaleCreated)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.HandleSaleEvent(context.Background(), testEvent(amqp.SaleUpdated)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sheet.updates != 1 {
		t.Errorf("expected 1 update, got %d", sheet.updates)
	}
	if sheet.appends != 1 {
		t.Errorf("expected no extra append, got %d", sheet.appends)
	}
}

func TestHandleSaleEvent_UpdatedMissingRowAppends(t *testing.T) {
	sheet := newFakeSheet()
	w := NewMirrorWorker(sheet, sheet)

	if err := w.HandleSaleEvent(context.Background(), testEvent(amqp.SaleUpdated)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sheet.appends != 1 {
		t.Errorf("expected fallback append, got %d", sheet.appends)
	}
	if sheet.updates != 0 {
		t.Errorf("expected no update for missing row, got %d", sheet.updates)
	}
}

func TestHandleSaleEvent_DeletedExistingRow(t *testing.T) {
	sheet := newFakeSheet()
	w := NewMirrorWorker(sheet, sheet)

	if err := w.HandleSaleEvent(context.Background(), testEvent(amqp.SaleCreated)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.HandleSaleEvent(context.Background(), testEvent(amqp.SaleDeleted)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sheet.clears != 1 {
		t.Errorf("expected 1 clear, got %d", sheet.clears)
	}
	if _, ok := sheet.rows["rec-1"]; ok {
		t.Error("expected record row to be gone after delete")
	}
}

func TestHandleSaleEvent_DeletedMissingRowIsAcked(t *testing.T) {
	sheet := newFakeSheet()
	w := NewMirrorWorker(sheet, sheet)

	if err := w.HandleSaleEvent(context.Background(), testEvent(amqp.SaleDeleted)); err != nil {
		t.Fatalf("expected nil for already-absent row, got %v", err)
	}
	if sheet.clears != 0 {
		t.Errorf("expected no clear for missing row, got %d", sheet.clears)
	}
}

func TestHandleSaleEvent_UnknownKindIsAcked(t *testing.T) {
	sheet := newFakeSheet()
	w := NewMirrorWorker(sheet, sheet)

	if err := w.HandleSaleEvent(context.Background(), testEvent("archived")); err != nil {
		t.Fatalf("expected nil for unknown kind, got %v", err)
	}
	if sheet.appends+sheet.updates+sheet.clears != 0 {
		t.Error("expected no sheet calls for unknown kind")
	}
}

func TestHandleSaleEvent_AppendErrorPropagates(t *testing.T) {
	sheet := newFakeSheet()
	sheet.appendErr = errors.New("quota exceeded")
	w := NewMirrorWorker(sheet, sheet)

	err := w.HandleSaleEvent(context.Background(), testEvent(amqp.SaleCreated))
	if err == nil {
		t.Fatal("expected append error to propagate")
	}
	if !strings.Contains(err.Error(), "append row") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandleSaleEvent_FindErrorPropagates(t *testing.T) {
	sheet := newFakeSheet()
	sheet.findErr = errors.New("api unavailable")
	w := NewMirrorWorker(sheet, sheet)

	err := w.HandleSaleEvent(context.Background(), testEvent(amqp.SaleUpdated))
	if err == nil {
		t.Fatal("expected find error to propagate")
	}
	if !strings.Contains(err.Error(), "find row") {
		t.Errorf("unexpected error: %v", err)
	}
}
