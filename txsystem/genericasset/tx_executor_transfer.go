package genericasset

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/alphabill-fees/txsystem"
	"github.com/alphabill-org/alphabill-fees/txsystem/balances"
	"github.com/alphabill-org/alphabill-fees/types"
)

func (m *Module) executeTransfer(ext *types.Extrinsic, args *TransferArgs, _ *txsystem.TxExecutionContext) (*types.ServerMetadata, error) {
	if err := validateTransfer(ext, args); err != nil {
		return nil, fmt.Errorf("transfer validation error: %w", err)
	}
	if err := m.state.Apply(
		balances.Debit(ext.Payer, args.Amount),
		balances.CreditOrCreate(args.To, args.Amount),
	); err != nil {
		return nil, fmt.Errorf("transfer: failed to update state: %w", err)
	}
	return &types.ServerMetadata{TargetAccounts: []types.AccountID{ext.Payer, args.To}}, nil
}

func validateTransfer(ext *types.Extrinsic, args *TransferArgs) error {
	if len(args.To) == 0 {
		return errors.New("recipient is missing")
	}
	if args.To.Eq(ext.Payer) {
		return errors.New("recipient is the payer")
	}
	if args.Amount == 0 {
		return errors.New("amount is zero")
	}
	return nil
}
