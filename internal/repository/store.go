// Package repository is a thin generic resource-access layer over an
// embedded badger document store, parameterized by collection name.
package repository

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/alkhaleej/docextract/internal/common"
)

// Store owns the badger handle. One Store per process; constructed on
// startup, closed on shutdown, injected into everything that persists.
type Store struct {
	bh     *badgerhold.Store
	logger *slog.Logger
}

// Open opens (creating if needed) the store under path/namespace.
func Open(cfg common.StoreConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Join(cfg.Path, cfg.Namespace)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create store dir: %v", common.ErrStoreUnavailable, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	bh, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger at %s: %v", common.ErrStoreUnavailable, dir, err)
	}
	logger.Info("store.opened", "dir", dir)
	return &Store{bh: bh, logger: logger}, nil
}

// Close flushes and releases the badger handle.
func (s *Store) Close() error {
	return s.bh.Close()
}

// Health verifies the store is still usable.
func (s *Store) Health() error {
	err := s.bh.Badger().View(func(txn *badger.Txn) error { return nil })
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

// Collection returns a generic CRUD handle bound to one collection name.
func (s *Store) Collection(name string) *Collection {
	return &Collection{store: s, name: name}
}
