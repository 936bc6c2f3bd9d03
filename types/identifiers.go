package types

import (
	"bytes"
	"fmt"
)

type (
	// UnitID identifies a unit (an account, a record) in the ledger state.
	UnitID []byte

	// AccountID identifies an account in the ledger, ie the payer of an extrinsic.
	AccountID []byte

	// CallID is the identity of a call: the module it is dispatched to and the
	// method of that module.
	CallID struct {
		Module string
		Method string
	}
)

func (uid UnitID) Compare(key UnitID) int {
	return bytes.Compare(uid, key)
}

func (uid UnitID) String() string {
	return fmt.Sprintf("%X", []byte(uid))
}

func (uid UnitID) Eq(id UnitID) bool {
	return bytes.Equal(uid, id)
}

func (id AccountID) UnitID() UnitID {
	return UnitID(id)
}

func (id AccountID) String() string {
	return fmt.Sprintf("%X", []byte(id))
}

func (id AccountID) Eq(other AccountID) bool {
	return bytes.Equal(id, other)
}

func (id AccountID) Compare(other AccountID) int {
	return bytes.Compare(id, other)
}

func (id AccountID) MarshalText() ([]byte, error) {
	return toHex(id), nil
}

func (id *AccountID) UnmarshalText(src []byte) error {
	res, err := fromHex(src)
	if err == nil {
		*id = res
	}
	return err
}

func (c CallID) String() string {
	return c.Module + "." + c.Method
}

func (c CallID) IsValid() error {
	if c.Module == "" {
		return fmt.Errorf("call %q: module name is empty", c)
	}
	if c.Method == "" {
		return fmt.Errorf("call %q: method name is empty", c)
	}
	return nil
}
