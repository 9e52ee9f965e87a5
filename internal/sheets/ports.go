package sheets

import (
	"context"
	"errors"

	"github.com/kwanghifi/kwanghifi/internal/core"
)

// ErrRowNotFound reports that a record has no row in the sheet.
var ErrRowNotFound = errors.New("sheet row not found")

// Ports for outbound adapters.
type (
	RowWriter interface {
		AppendRow(ctx context.Context, record core.SaleRecord) (rowRef string, err error)
		UpdateRow(ctx context.Context, rowRef string, record core.SaleRecord) error
		ClearRow(ctx context.Context, rowRef string) error
	}

	// RowFinder locates the sheet row holding a record by its ID.
	RowFinder interface {
		FindRow(ctx context.Context, recordID string) (rowRef string, err error)
	}
)
