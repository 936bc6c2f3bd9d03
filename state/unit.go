package state

import (
	"fmt"

	"github.com/alphabill-org/alphabill-fees/types"
)

type (
	// UnitData is the content of a unit, ie balance of an account.
	UnitData interface {
		Copy() UnitData
	}

	// Unit is a node in the state tree. Units are never modified after they
	// have been added to the tree, every change creates a new unit.
	Unit struct {
		id   types.UnitID
		data UnitData
	}
)

func NewUnit(id types.UnitID, data UnitData) *Unit {
	return &Unit{
		id:   id,
		data: data,
	}
}

func (u *Unit) ID() types.UnitID {
	return u.id
}

// Data returns copy of the unit data.
func (u *Unit) Data() UnitData {
	return copyData(u.data)
}

func (u *Unit) Clone() *Unit {
	if u == nil {
		return nil
	}
	return &Unit{
		id:   u.id,
		data: copyData(u.data),
	}
}

func (u *Unit) String() string {
	return fmt.Sprintf("unit %s: %v", u.id, u.data)
}

func unitLess(a, b *Unit) bool {
	return a.id.Compare(b.id) < 0
}

func copyData(data UnitData) UnitData {
	if data == nil {
		return nil
	}
	return data.Copy()
}
