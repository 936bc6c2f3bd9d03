package memorydb

import (
	"fmt"
	"sync"

	"github.com/alphabill-org/alphabill-fees/keyvaluedb"
	"github.com/alphabill-org/alphabill-fees/types"
)

type (
	EncodeFn func(v any) ([]byte, error)
	DecodeFn func(data []byte, v any) error

	MemoryDB struct {
		db       map[string][]byte
		encoder  EncodeFn
		decoder  DecodeFn
		writeErr error
		lock     sync.RWMutex
	}
)

var _ keyvaluedb.KeyValueDB = (*MemoryDB)(nil)

// New creates a new key value db that uses map as storage.
func New() *MemoryDB {
	return &MemoryDB{
		db:      make(map[string][]byte),
		encoder: types.Cbor.Marshal,
		decoder: types.Cbor.Unmarshal,
	}
}

// MockWriteError makes every following write (and tx write) fail with err, nil
// restores normal behavior. Meant to be used by tests only.
func (db *MemoryDB) MockWriteError(err error) {
	db.lock.Lock()
	defer db.lock.Unlock()
	db.writeErr = err
}

// Read retrieves the given key if it's present in the key-value store.
func (db *MemoryDB) Read(key []byte, value any) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if err := keyvaluedb.CheckKeyAndValue(key, value); err != nil {
		return false, err
	}
	if data, ok := db.db[string(key)]; ok {
		return true, db.decoder(data, value)
	}
	return false, nil
}

// Write inserts the given value into the key-value store.
func (db *MemoryDB) Write(key []byte, value any) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if err := keyvaluedb.CheckKeyAndValue(key, value); err != nil {
		return err
	}
	b, err := db.encoder(value)
	if err != nil {
		return err
	}
	if db.writeErr != nil {
		return db.writeErr
	}
	db.db[string(key)] = b
	return nil
}

// First returns forward iterator to the first element in DB
func (db *MemoryDB) First() keyvaluedb.Iterator {
	db.lock.RLock()
	defer db.lock.RUnlock()
	it := NewIterator(db.db, db.decoder)
	it.first()
	return it
}

// Find returns the closest binary search match
func (db *MemoryDB) Find(key []byte) keyvaluedb.Iterator {
	db.lock.RLock()
	defer db.lock.RUnlock()
	it := NewIterator(db.db, db.decoder)
	it.seek(key)
	return it
}

func (db *MemoryDB) StartTx() (keyvaluedb.DBTransaction, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	tx, err := NewMapTx(db)
	if err != nil {
		return nil, fmt.Errorf("failed to start memdb tx, %w", err)
	}
	return tx, nil
}
