package types

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

type (
	// Extrinsic is a single state changing request submitted to the ledger.
	Extrinsic struct {
		_     struct{} `cbor:",toarray"`
		Payer AccountID
		Nonce uint64
		Call  *Call
	}

	// Call is the module method the extrinsic dispatches to, together with its
	// CBOR encoded arguments.
	Call struct {
		_      struct{} `cbor:",toarray"`
		Module string
		Method string
		Args   cbor.RawMessage
	}
)

func (e *Extrinsic) GetCall() *Call {
	if e == nil {
		return nil
	}
	return e.Call
}

func (e *Extrinsic) CallID() CallID {
	return e.GetCall().ID()
}

// Bytes returns canonical CBOR encoding of the extrinsic.
func (e *Extrinsic) Bytes() ([]byte, error) {
	if e == nil {
		return nil, errors.New("extrinsic is nil")
	}
	return Cbor.Marshal(e)
}

// EncodedLen returns the length of the serialized extrinsic, this is the
// length the per-byte fee is charged for.
func (e *Extrinsic) EncodedLen() (uint64, error) {
	b, err := e.Bytes()
	if err != nil {
		return 0, err
	}
	return uint64(len(b)), nil
}

func (c *Call) ID() CallID {
	if c == nil {
		return CallID{}
	}
	return CallID{Module: c.Module, Method: c.Method}
}

/*
SetArgs serializes "args" and assigns the result to the Args field.
The UnmarshalArgs method can be used to decode the arguments.
*/
func (c *Call) SetArgs(args any) error {
	b, err := Cbor.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshaling %T as call arguments: %w", args, err)
	}
	c.Args = b
	return nil
}

func (c *Call) UnmarshalArgs(v any) error {
	if c == nil {
		return errors.New("call is nil")
	}
	if len(c.Args) == 0 {
		return errors.New("call arguments are empty")
	}
	return Cbor.Unmarshal(c.Args, v)
}
