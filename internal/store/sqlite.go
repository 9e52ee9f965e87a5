package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kwanghifi/kwanghifi/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the ledger as one serialized row. The whole
// list is a single document, so a single upsert per save keeps writes
// atomic without row-level bookkeeping.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]core.SaleRecord, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT records FROM ledger WHERE id = 1`).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger row: %w", err)
	}

	var records []core.SaleRecord
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		return nil, fmt.Errorf("parse ledger blob: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Save(ctx context.Context, records []core.SaleRecord) error {
	if records == nil {
		records = []core.SaleRecord{}
	}
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ledger (id, records, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET records = excluded.records, updated_at = excluded.updated_at`,
		string(blob))
	if err != nil {
		return fmt.Errorf("write ledger row: %w", err)
	}
	return nil
}
