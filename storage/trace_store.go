package storage

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/Gnanababu/solidity-utils/common"
	log "github.com/Gnanababu/solidity-utils/log"
)

// tracePrefix namespaces raw trace entries so other artifacts can share the
// database later.
var tracePrefix = []byte("tr")

// TraceStore wraps LevelDB as the persistence sink for fetched traces. The
// stored artifact is the raw serialized trace exactly as the node returned
// it, keyed by transaction hash - no transformation on either side.
// Thread-safe: LevelDB handles its own synchronization.
type TraceStore struct {
	db *leveldb.DB
}

// NewTraceStore opens or creates a LevelDB database at the given path.
// If path is empty, uses in-memory storage.
func NewTraceStore(path string) (*TraceStore, error) {
	var db *leveldb.DB
	var err error

	if path == "" {
		memStorage := leveldbstorage.NewMemStorage()
		db, err = leveldb.Open(memStorage, nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	return &TraceStore{db: db}, nil
}

// NewMemoryTraceStore creates an in-memory TraceStore for testing.
func NewMemoryTraceStore() (*TraceStore, error) {
	return NewTraceStore("")
}

// PutTrace stores the raw serialized trace for a transaction, byte for byte.
func (ts *TraceStore) PutTrace(txHash common.Hash, raw []byte) error {
	if err := ts.db.Put(traceKey(txHash), raw, nil); err != nil {
		return fmt.Errorf("PutTrace %s: %w", txHash.Hex(), err)
	}
	log.Debug(log.StoreMonitoring, "persisted trace", "tx", txHash.Hex(), "bytes", len(raw))
	return nil
}

// GetTrace retrieves the raw trace for a transaction. Returns
// (nil, false, nil) if not found.
func (ts *TraceStore) GetTrace(txHash common.Hash) ([]byte, bool, error) {
	data, err := ts.db.Get(traceKey(txHash), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("GetTrace %s: %w", txHash.Hex(), err)
	}
	return data, true, nil
}

// HasTrace reports whether a trace is stored for the transaction.
func (ts *TraceStore) HasTrace(txHash common.Hash) (bool, error) {
	ok, err := ts.db.Has(traceKey(txHash), nil)
	if err != nil {
		return false, fmt.Errorf("HasTrace %s: %w", txHash.Hex(), err)
	}
	return ok, nil
}

// DeleteTrace removes the stored trace for a transaction.
func (ts *TraceStore) DeleteTrace(txHash common.Hash) error {
	return ts.db.Delete(traceKey(txHash), nil)
}

func (ts *TraceStore) Close() error {
	return ts.db.Close()
}

func traceKey(h common.Hash) []byte {
	return append(append([]byte{}, tracePrefix...), h.Bytes()...)
}
