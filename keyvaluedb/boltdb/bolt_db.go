package boltdb

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/alphabill-org/alphabill-fees/keyvaluedb"
	"github.com/alphabill-org/alphabill-fees/types"
)

// bucket feature currently not used as it is not compatible with most others key-value database implementations
// use more than one db file instead
const defaultBucket = "default"

type (
	EncodeFn func(v any) ([]byte, error)
	DecodeFn func(data []byte, v any) error

	BoltDB struct {
		db      *bolt.DB
		bucket  []byte
		encoder EncodeFn
		decoder DecodeFn
	}
)

var _ keyvaluedb.KeyValueDB = (*BoltDB)(nil)

var errNotFound = errors.New("db entry not found")

// New opens (creates when it doesn't exist) Bolt DB file. Values are
// encoded as canonical CBOR.
func New(dbFile string) (*BoltDB, error) {
	db, err := bolt.Open(dbFile, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	s := &BoltDB{
		db:      db,
		bucket:  []byte(defaultBucket),
		encoder: types.Cbor.Marshal,
		decoder: types.Cbor.Unmarshal,
	}
	if err = s.createBuckets(); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return s, nil
}

func (db *BoltDB) Path() string {
	return db.db.Path()
}

func (db *BoltDB) createBuckets() error {
	return db.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(db.bucket)
		return err
	})
}

func (db *BoltDB) Read(key []byte, v any) (bool, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return false, err
	}
	if err := db.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(db.bucket).Get(key)
		if data == nil {
			return errNotFound
		}
		return db.decoder(data, v)
	}); err != nil {
		if errors.Is(err, errNotFound) {
			return false, nil
		}
		return true, fmt.Errorf("bolt db read failed, %w", err)
	}
	return true, nil
}

func (db *BoltDB) Write(key []byte, v any) error {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return err
	}
	b, err := db.encoder(v)
	if err != nil {
		return err
	}
	if err = db.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(db.bucket).Put(key, b)
	}); err != nil {
		return fmt.Errorf("bolt db write failed, %w", err)
	}
	return nil
}

func (db *BoltDB) First() keyvaluedb.Iterator {
	it := NewIterator(db.db, db.bucket, db.decoder)
	it.first()
	return it
}

func (db *BoltDB) Find(key []byte) keyvaluedb.Iterator {
	it := NewIterator(db.db, db.bucket, db.decoder)
	it.seek(key)
	return it
}

func (db *BoltDB) StartTx() (keyvaluedb.DBTransaction, error) {
	tx, err := NewBoltTx(db.db, db.bucket, db.encoder, db.decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to start Bolt tx, %w", err)
	}
	return tx, nil
}

func (db *BoltDB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}
