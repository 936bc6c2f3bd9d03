package types

import "errors"

// ErrInsufficientBalance is returned by the ledger's debit primitive when the
// balance of the account is lower than the amount to be debited.
var ErrInsufficientBalance = errors.New("insufficient balance")
