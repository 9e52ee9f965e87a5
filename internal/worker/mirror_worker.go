package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kwanghifi/kwanghifi/internal/amqp"
	"github.com/kwanghifi/kwanghifi/internal/sheets"
)

// MirrorWorker applies sale events to the Google Sheets mirror. The
// ledger store stays the source of truth; the sheet is a best-effort
// copy rebuilt one event at a time.
type MirrorWorker struct {
	writer sheets.RowWriter
	finder sheets.RowFinder
}

func NewMirrorWorker(writer sheets.RowWriter, finder sheets.RowFinder) *MirrorWorker {
	return &MirrorWorker{
		writer: writer,
		finder: finder,
	}
}

// HandleSaleEvent processes a single sale event from AMQP.
func (w *MirrorWorker) HandleSaleEvent(ctx context.Context, msg *amqp.SaleEventMessage) error {
	slog.InfoContext(ctx, "Processing sale event",
		"kind", msg.Kind,
		"record_id", msg.Record.ID)

	switch msg.Kind {
	case amqp.SaleCreated:
		return w.mirrorCreated(ctx, msg)
	case amqp.SaleUpdated:
		return w.mirrorUpdated(ctx, msg)
	case amqp.SaleDeleted:
		return w.mirrorDeleted(ctx, msg)
	default:
		// Ack unknown kinds instead of requeueing them forever.
		slog.WarnContext(ctx, "Unknown sale event kind, dropping",
			"kind", msg.Kind,
			"record_id", msg.Record.ID)
		return nil
	}
}

func (w *MirrorWorker) mirrorCreated(ctx context.Context, msg *amqp.SaleEventMessage) error {
	ref, err := w.writer.AppendRow(ctx, msg.Record)
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored new sale",
		"record_id", msg.Record.ID,
		"sheet_row", ref)
	return nil
}

func (w *MirrorWorker) mirrorUpdated(ctx context.Context, msg *amqp.SaleEventMessage) error {
	ref, err := w.finder.FindRow(ctx, msg.Record.ID)
	if errors.Is(err, sheets.ErrRowNotFound) {
		// The row never made it to the sheet; treat the update as a create.
		ref, err = w.writer.AppendRow(ctx, msg.Record)
		if err != nil {
			return fmt.Errorf("append missing row: %w", err)
		}
		slog.InfoContext(ctx, "Mirrored updated sale as new row",
			"record_id", msg.Record.ID,
			"sheet_row", ref)
		return nil
	}
	if err != nil {
		return fmt.Errorf("find row: %w", err)
	}

	if err := w.writer.UpdateRow(ctx, ref, msg.Record); err != nil {
		return fmt.Errorf("update row: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored sale update",
		"record_id", msg.Record.ID,
		"sheet_row", ref)
	return nil
}

func (w *MirrorWorker) mirrorDeleted(ctx context.Context, msg *amqp.SaleEventMessage) error {
	ref, err := w.finder.FindRow(ctx, msg.Record.ID)
	if errors.Is(err, sheets.ErrRowNotFound) {
		slog.WarnContext(ctx, "Row already absent from sheet",
			"record_id", msg.Record.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("find row: %w", err)
	}

	if err := w.writer.ClearRow(ctx, ref); err != nil {
		return fmt.Errorf("clear row: %w", err)
	}

	slog.InfoContext(ctx, "Blanked mirrored sale",
		"record_id", msg.Record.ID,
		"sheet_row", ref)
	return nil
}
