package balances

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/alphabill-fees/state"
	"github.com/alphabill-org/alphabill-fees/types"
	"github.com/alphabill-org/alphabill-fees/util"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrBalanceOverflow = errors.New("balance overflow")
)

// Account is the unit data of an account.
type Account struct {
	_       struct{}     `cbor:",toarray"`
	Balance types.Amount `json:"balance,string"`
	Nonce   uint64       `json:"nonce"` // number of extrinsics paid by the account
}

func (a *Account) Copy() state.UnitData {
	return &Account{
		Balance: a.Balance,
		Nonce:   a.Nonce,
	}
}

// AddAccount creates new account with initial balance.
func AddAccount(id types.AccountID, balance types.Amount) state.Action {
	return state.AddUnit(id.UnitID(), &Account{Balance: balance})
}

// Credit adds amount to the balance of the account.
func Credit(id types.AccountID, amount types.Amount) state.Action {
	return updateAccount(id, func(acc *Account) error {
		sum, ok := util.SafeAdd(uint64(acc.Balance), uint64(amount))
		if !ok {
			return fmt.Errorf("crediting %s to account %s: %w", amount, id, ErrBalanceOverflow)
		}
		acc.Balance = types.Amount(sum)
		return nil
	})
}

/*
Debit subtracts amount from the balance of the account. When the balance
is lower than amount error wrapping types.ErrInsufficientBalance is returned.
*/
func Debit(id types.AccountID, amount types.Amount) state.Action {
	return updateAccount(id, func(acc *Account) error {
		if acc.Balance < amount {
			return fmt.Errorf("account %s balance %s is less than %s: %w", id, acc.Balance, amount, types.ErrInsufficientBalance)
		}
		acc.Balance -= amount
		return nil
	})
}

// IncrementNonce increments the nonce of the account.
func IncrementNonce(id types.AccountID) state.Action {
	return updateAccount(id, func(acc *Account) error {
		acc.Nonce++
		return nil
	})
}

func updateAccount(id types.AccountID, f func(acc *Account) error) state.Action {
	return func(s state.ShardState) error {
		if _, err := s.Get(id.UnitID()); err != nil {
			if errors.Is(err, state.ErrUnitNotFound) {
				return fmt.Errorf("%w: %s", ErrAccountNotFound, id)
			}
			return err
		}
		return state.UpdateUnitData(id.UnitID(), func(data state.UnitData) (state.UnitData, error) {
			acc, ok := data.(*Account)
			if !ok {
				return nil, fmt.Errorf("unit %s does not contain account data", id)
			}
			if err := f(acc); err != nil {
				return nil, err
			}
			return acc, nil
		})(s)
	}
}
