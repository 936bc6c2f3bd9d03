package fees

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow is the condition of every OverflowError, use errors.Is to test for it.
	ErrOverflow = errors.New("extrinsic fee overflow")

	// ErrMissingRegistryEntry means the registry has no amount for the category.
	// For the Base and Bytes categories this is a ledger initialization defect.
	ErrMissingRegistryEntry = errors.New("missing fee registry entry")
)

// Overflowed terms of the fee calculation.
const (
	TermBytes            = "bytes"
	TermBaseBytes        = "base + bytes"
	TermBaseBytesAndCall = "base + bytes + call"
)

/*
OverflowError is returned when a step of the fee calculation exceeds the
range of the balance type. Term names the sum (or product) that overflowed.
*/
type OverflowError struct {
	Term string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s (%s)", ErrOverflow, e.Term)
}

func (e *OverflowError) Is(target error) bool {
	return target == ErrOverflow
}

func overflow(term string) error {
	return &OverflowError{Term: term}
}
