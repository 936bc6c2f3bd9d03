package state

import (
	"fmt"

	"github.com/google/btree"

	"github.com/alphabill-org/alphabill-fees/types"
)

// tree is a single version of the unit set. Cloning a tree is cheap, the
// underlying B-tree nodes are shared copy-on-write between the clones.
type tree struct {
	units *btree.BTreeG[*Unit]
	dirty bool
}

func newTree(degree int) *tree {
	return &tree{units: btree.NewG[*Unit](degree, unitLess)}
}

func (t *tree) Clone() *tree {
	return &tree{
		units: t.units.Clone(),
		dirty: t.dirty,
	}
}

func (t *tree) Add(id types.UnitID, u *Unit) error {
	if _, found := t.units.Get(&Unit{id: id}); found {
		return fmt.Errorf("%w: %s", ErrUnitAlreadyExists, id)
	}
	t.units.ReplaceOrInsert(u)
	t.dirty = true
	return nil
}

func (t *tree) Get(id types.UnitID) (*Unit, error) {
	u, found := t.units.Get(&Unit{id: id})
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, id)
	}
	return u, nil
}

func (t *tree) Update(id types.UnitID, u *Unit) error {
	if !id.Eq(u.id) {
		return fmt.Errorf("unit id mismatch: %s != %s", id, u.id)
	}
	if _, found := t.units.Get(&Unit{id: id}); !found {
		return fmt.Errorf("%w: %s", ErrUnitNotFound, id)
	}
	t.units.ReplaceOrInsert(u)
	t.dirty = true
	return nil
}

func (t *tree) Len() int {
	return t.units.Len()
}
