package balances

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/alphabill-fees/state"
	"github.com/alphabill-org/alphabill-fees/types"
)

/*
Ledger gives access to the accounts stored in the state. Every method which
changes the state does it atomically, ie either all the changes are applied
or none of them.
*/
type Ledger struct {
	state *state.State
}

func NewLedger(s *state.State) (*Ledger, error) {
	if s == nil {
		return nil, errors.New("state is nil")
	}
	return &Ledger{state: s}, nil
}

/*
Debit deducts amount from the account balance. Missing account is treated
as an account with zero balance.
*/
func (l *Ledger) Debit(account types.AccountID, amount types.Amount) error {
	if err := l.state.Apply(Debit(account, amount)); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return fmt.Errorf("%w: %w", types.ErrInsufficientBalance, err)
		}
		return err
	}
	return nil
}

// AccountEntry is an account together with its identifier.
type AccountEntry struct {
	ID      types.AccountID
	Account *Account
}

/*
Accounts returns all the accounts in ascending account id order. Units
which do not hold account data are skipped.
*/
func (l *Ledger) Accounts(committed bool) []AccountEntry {
	var accounts []AccountEntry
	l.state.Traverse(committed, func(u *state.Unit) bool {
		if acc, ok := u.Data().(*Account); ok {
			accounts = append(accounts, AccountEntry{ID: types.AccountID(u.ID()), Account: acc})
		}
		return true
	})
	return accounts
}

func (l *Ledger) Account(id types.AccountID, committed bool) (*Account, error) {
	return GetAccount(l.state, id, committed)
}

/*
CreditOrCreate credits existing account or creates new one with amount as
it's initial balance.
*/
func CreditOrCreate(id types.AccountID, amount types.Amount) state.Action {
	return func(s state.ShardState) error {
		if _, err := s.Get(id.UnitID()); err != nil {
			if errors.Is(err, state.ErrUnitNotFound) {
				return AddAccount(id, amount)(s)
			}
			return err
		}
		return Credit(id, amount)(s)
	}
}

// UnitReader is the part of the state needed to read accounts.
type UnitReader interface {
	GetUnit(id types.UnitID, committed bool) (*state.Unit, error)
}

func GetAccount(s UnitReader, id types.AccountID, committed bool) (*Account, error) {
	u, err := s.GetUnit(id.UnitID(), committed)
	if err != nil {
		if errors.Is(err, state.ErrUnitNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
		}
		return nil, err
	}
	acc, ok := u.Data().(*Account)
	if !ok {
		return nil, fmt.Errorf("unit %s does not contain account data", id)
	}
	return acc, nil
}
