package snapshot

import (
	"fmt"
	"sync"

	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// StoreManager hands the process-wide snapshot store to callers.
type StoreManager struct {
	store contract.SnapshotStore
}

var _ contract.SnapshotManager = &StoreManager{} // Compile-time check

// GetStore returns the managed snapshot store, which may be nil before
// InitStore runs.
func (m *StoreManager) GetStore() contract.SnapshotStore {
	return m.store
}

// InitStore initializes the global snapshot manager. It runs exactly once,
// even with concurrent calls.
func InitStore(backend schema.DatabaseBackend, connStr string) error {
	var initErr error
	initOnce.Do(func() {
		store, err := NewStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize snapshot store: %w", err)
			return
		}
		Manager.store = store
	})
	return initErr
}

// CloseStore closes the global snapshot store, once.
func CloseStore() {
	closeOnce.Do(func() {
		if Manager.store != nil {
			_ = Manager.store.Close()
		}
	})
}
