package state

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/alphabill-org/alphabill-fees/types"
)

type (
	ShardState interface {
		Add(id types.UnitID, u *Unit) error
		Get(id types.UnitID) (*Unit, error)
		Update(id types.UnitID, unit *Unit) error
	}

	Action func(s ShardState) error

	// UpdateFunction is a function for updating the data of an item. Taken in previous UnitData and returns new UnitData.
	UpdateFunction func(data UnitData) (newData UnitData, err error)
)

// AddUnit adds a new unit with given identifier and unit data.
func AddUnit(id types.UnitID, data UnitData) Action {
	return func(s ShardState) error {
		if id == nil {
			return errors.New("id is nil")
		}
		u := NewUnit(bytes.Clone(id), copyData(data))
		if err := s.Add(u.id, u); err != nil {
			return fmt.Errorf("unable to add unit: %w", err)
		}
		return nil
	}
}

// UpdateUnitData changes the data of the item.
func UpdateUnitData(id types.UnitID, f UpdateFunction) Action {
	return func(s ShardState) error {
		if f == nil {
			return errors.New("update function is nil")
		}
		u, err := s.Get(id)
		if err != nil {
			return fmt.Errorf("failed to get unit: %w", err)
		}

		cloned := u.Clone()
		newData, err := f(cloned.data)
		if err != nil {
			return fmt.Errorf("unable to update unit data: %w", err)
		}
		cloned.data = newData
		if err = s.Update(id, cloned); err != nil {
			return fmt.Errorf("unable to update unit: %w", err)
		}
		return nil
	}
}
