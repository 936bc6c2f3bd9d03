package fees

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/alphabill-org/alphabill-fees/keyvaluedb"
	"github.com/alphabill-org/alphabill-fees/types"
)

var (
	entryKeyPrefix = []byte("fee/")
	versionKey     = []byte("version")
)

type (
	// AmountReader looks up the configured amount of a fee category.
	AmountReader interface {
		AmountOf(c Category) (types.Amount, error)
	}

	/*
		Registry is a versioned fee category -> amount store. Values are read
		from the underlying key-value store on every lookup so changes made by
		Set are visible to the next lookup.
	*/
	Registry struct {
		db keyvaluedb.KeyValueDB
		mu sync.Mutex // serializes writers, version bump is read-modify-write
	}

	Entry struct {
		Category Category     `json:"category" yaml:"category"`
		Amount   types.Amount `json:"amount,string" yaml:"amount"`
	}
)

var _ AmountReader = (*Registry)(nil)

func NewRegistry(db keyvaluedb.KeyValueDB) (*Registry, error) {
	if db == nil {
		return nil, errors.New("fee registry storage is nil")
	}
	return &Registry{db: db}, nil
}

/*
AmountOf returns the amount configured for the category. When the
category has no entry in the registry error wrapping ErrMissingRegistryEntry
is returned.
*/
func (r *Registry) AmountOf(c Category) (types.Amount, error) {
	var amount types.Amount
	found, err := r.db.Read(entryKey(c), &amount)
	if err != nil {
		return 0, fmt.Errorf("reading fee registry entry %s: %w", c, err)
	}
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrMissingRegistryEntry, c)
	}
	return amount, nil
}

// Set assigns amount to the category and increments registry version.
func (r *Registry) Set(c Category, amount types.Amount) error {
	return r.SetAll(Entry{Category: c, Amount: amount})
}

/*
SetAll writes all the entries and increments registry version by one. The
entries and the version are written in a single storage transaction, on
error nothing is changed.
*/
func (r *Registry) SetAll(entries ...Entry) (rErr error) {
	if len(entries) == 0 {
		return errors.New("no fee registry entries to set")
	}
	for _, e := range entries {
		if err := e.Category.IsValid(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.StartTx()
	if err != nil {
		return fmt.Errorf("starting fee registry transaction: %w", err)
	}
	defer func() {
		if rErr != nil {
			if err := tx.Rollback(); err != nil {
				rErr = errors.Join(rErr, fmt.Errorf("fee registry transaction rollback: %w", err))
			}
		}
	}()

	var version uint64
	if _, err := tx.Read(versionKey, &version); err != nil {
		return fmt.Errorf("reading fee registry version: %w", err)
	}
	for _, e := range entries {
		if err := tx.Write(entryKey(e.Category), e.Amount); err != nil {
			return fmt.Errorf("writing fee registry entry %s: %w", e.Category, err)
		}
	}
	if err := tx.Write(versionKey, version+1); err != nil {
		return fmt.Errorf("writing fee registry version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing fee registry transaction: %w", err)
	}
	return nil
}

/*
Version returns the number of changes made to the registry, zero for an
empty registry.
*/
func (r *Registry) Version() (uint64, error) {
	var version uint64
	if _, err := r.db.Read(versionKey, &version); err != nil {
		return 0, fmt.Errorf("reading fee registry version: %w", err)
	}
	return version, nil
}

// Entries returns all registry entries sorted by category key.
func (r *Registry) Entries() (_ []Entry, rErr error) {
	it := r.db.Find(entryKeyPrefix)
	defer func() { rErr = errors.Join(rErr, it.Close()) }()

	var entries []Entry
	for ; it.Valid() && bytes.HasPrefix(it.Key(), entryKeyPrefix); it.Next() {
		c, err := ParseCategory(string(bytes.TrimPrefix(it.Key(), entryKeyPrefix)))
		if err != nil {
			return nil, fmt.Errorf("parsing fee registry key: %w", err)
		}
		e := Entry{Category: c}
		if err := it.Value(&e.Amount); err != nil {
			return nil, fmt.Errorf("reading fee registry entry %s: %w", c, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

/*
VerifyRequired checks that every category in the list has an entry in the
registry. The returned error lists all the missing categories.
*/
func (r *Registry) VerifyRequired(categories ...Category) error {
	return verifyRequired(r, categories...)
}

func verifyRequired(r AmountReader, categories ...Category) error {
	var errs []error
	for _, c := range categories {
		if _, err := r.AmountOf(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func entryKey(c Category) []byte {
	return append(bytes.Clone(entryKeyPrefix), c.Key()...)
}
