package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/kwanghifi/kwanghifi/internal/cache"
	"github.com/kwanghifi/kwanghifi/internal/core"
	ports "github.com/kwanghifi/kwanghifi/internal/sheets"
)

const (
	rowCacheSize = 512
	rowCacheTTL  = 10 * time.Minute
)

// Client mirrors sale records into a Google Sheets spreadsheet. Row
// lookups go through an LRU cache keyed by record ID so repeated
// updates skip rescanning the ID column.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	rowCache      *cache.LRUCache[string]
}

// Ensure interface conformance
var (
	_ ports.RowWriter = (*Client)(nil)
	_ ports.RowFinder = (*Client)(nil)
	_ cache.Cleaner   = (*Client)(nil)
)

// New creates a Sheets client for the given spreadsheet. An empty
// sheetName defaults to "Sales". Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Sales"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		rowCache:      cache.NewLRUCache[string](rowCacheSize, rowCacheTTL),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	// Also check the standard Google Cloud environment variable
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendRow writes the record to the first empty row and returns the
// range reference of that row.
func (c *Client) AppendRow(ctx context.Context, record core.SaleRecord) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row by getting the sheet dimensions first
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}

	nextRow := len(resp.Values) + 1
	ref := c.rowRange(nextRow)

	vr := &gsheet.ValueRange{Values: [][]any{recordRow(record)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write row %s: %w", ref, err)
	}

	c.rowCache.Set(record.ID, ref)
	return ref, nil
}

// UpdateRow rewrites the row at rowRef with the current record values.
func (c *Client) UpdateRow(ctx context.Context, rowRef string, record core.SaleRecord) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	vr := &gsheet.ValueRange{Values: [][]any{recordRow(record)}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRef, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("rewrite row %s: %w", rowRef, err)
	}

	c.rowCache.Set(record.ID, rowRef)
	return nil
}

// ClearRow blanks the row at rowRef. The row itself stays in place so
// references to later rows keep their positions.
func (c *Client) ClearRow(ctx context.Context, rowRef string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rowRef, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %s: %w", rowRef, err)
	}
	return nil
}

// FindRow locates the row whose ID column matches recordID. A cache
// hit answers without touching the API.
func (c *Client) FindRow(ctx context.Context, recordID string) (string, error) {
	if ref, ok := c.rowCache.Get(recordID); ok {
		return ref, nil
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read id column: %w", err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == recordID {
			ref := c.rowRange(i + 1)
			c.rowCache.Set(recordID, ref)
			return ref, nil
		}
	}
	return "", ports.ErrRowNotFound
}

// CleanExpired drops expired row references from the lookup cache.
func (c *Client) CleanExpired() int {
	return c.rowCache.CleanExpired()
}

func (c *Client) rowRange(row int) string {
	return fmt.Sprintf("%s!A%d:J%d", c.sheetName, row, row)
}

// recordRow lays a sale record out across columns A:J. Amounts are
// written as euro values so the sheet can sum them directly.
func recordRow(record core.SaleRecord) []any {
	return []any{
		record.ID,
		string(record.Date),
		record.Brand,
		string(record.Category),
		record.Model,
		centsToEuros(record.CostPrice.Cents),
		centsToEuros(record.ShippingCost.Cents),
		centsToEuros(record.SellingPrice.Cents),
		centsToEuros(record.Profit().Cents),
		record.Note,
	}
}

func centsToEuros(cents int64) float64 {
	return float64(cents) / 100.0
}
