package store

import (
	"fmt"

	"github.com/kwanghifi/kwanghifi/internal/config"
	"github.com/kwanghifi/kwanghifi/internal/log"
)

// New creates the store backend selected by the configuration.
func New(cfg *config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentStore)

	backend := BackendType(cfg.StoreBackend)
	if !backend.IsValid() {
		return nil, fmt.Errorf("invalid store backend: %s", cfg.StoreBackend)
	}

	switch backend {
	case MemoryBackend:
		logger.Info("Initialized memory store")
		return &Result{Store: NewMemoryStore()}, nil

	case FileBackend:
		logger.Info("Initialized file store", "path", cfg.DataFilePath)
		return &Result{Store: NewFileStore(cfg.DataFilePath)}, nil

	case SQLiteBackend:
		st, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized sqlite store", "path", cfg.SQLitePath)
		return &Result{Store: st, Cleanup: st.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}
