package genericasset

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/alphabill-fees/txsystem"
	"github.com/alphabill-org/alphabill-fees/txsystem/balances"
	"github.com/alphabill-org/alphabill-fees/types"
)

func (m *Module) executeMint(ext *types.Extrinsic, args *MintArgs, _ *txsystem.TxExecutionContext) (*types.ServerMetadata, error) {
	if err := m.validateMint(ext, args); err != nil {
		return nil, fmt.Errorf("mint validation error: %w", err)
	}
	if err := m.state.Apply(balances.CreditOrCreate(args.To, args.Amount)); err != nil {
		return nil, fmt.Errorf("mint: failed to update state: %w", err)
	}
	return &types.ServerMetadata{TargetAccounts: []types.AccountID{args.To}}, nil
}

func (m *Module) validateMint(ext *types.Extrinsic, args *MintArgs) error {
	if len(m.minter) != 0 && !m.minter.Eq(ext.Payer) {
		return fmt.Errorf("account %s is not allowed to mint", ext.Payer)
	}
	if len(args.To) == 0 {
		return errors.New("recipient is missing")
	}
	if args.Amount == 0 {
		return errors.New("amount is zero")
	}
	return nil
}
