package genericasset

import (
	"errors"

	"github.com/alphabill-org/alphabill-fees/state"
	"github.com/alphabill-org/alphabill-fees/txsystem"
	"github.com/alphabill-org/alphabill-fees/txsystem/fees"
	"github.com/alphabill-org/alphabill-fees/types"
)

const (
	ModuleName     = "generic_asset"
	MethodTransfer = "transfer"
	MethodMint     = "mint"
)

// FeeTransfer is the fee category of the transfer call.
var FeeTransfer = fees.NewCategory(ModuleName, MethodTransfer)

var (
	_ txsystem.Module    = (*Module)(nil)
	_ txsystem.FeeRouter = (*Module)(nil)
)

type (
	TransferArgs struct {
		_      struct{}        `cbor:",toarray"`
		To     types.AccountID `json:"to"`
		Amount types.Amount    `json:"amount,string"`
	}

	MintArgs struct {
		_      struct{}        `cbor:",toarray"`
		To     types.AccountID `json:"to"`
		Amount types.Amount    `json:"amount,string"`
	}

	/*
		Module moves the native asset between accounts. Only the transfer call
		has a fee category of it's own, mint is charged the generic fees only.
	*/
	Module struct {
		state  *state.State
		minter types.AccountID
	}
)

func NewModule(s *state.State, opts ...Option) (*Module, error) {
	if s == nil {
		return nil, errors.New("state is nil")
	}
	options := defaultOptions()
	for _, option := range opts {
		option(options)
	}
	return &Module{
		state:  s,
		minter: options.minter,
	}, nil
}

func (m *Module) TxExecutors() map[types.CallID]txsystem.ExecuteFunc {
	return map[types.CallID]txsystem.ExecuteFunc{
		{Module: ModuleName, Method: MethodTransfer}: txsystem.GenericExecuteFunc[TransferArgs](m.executeTransfer).ExecuteFunc(),
		{Module: ModuleName, Method: MethodMint}:     txsystem.GenericExecuteFunc[MintArgs](m.executeMint).ExecuteFunc(),
	}
}

func (m *Module) FeeRoutes() (string, map[string]fees.Category) {
	return ModuleName, map[string]fees.Category{
		MethodTransfer: FeeTransfer,
	}
}

// NewTransfer returns call of the transfer method.
func NewTransfer(to types.AccountID, amount types.Amount) (*types.Call, error) {
	call := &types.Call{Module: ModuleName, Method: MethodTransfer}
	if err := call.SetArgs(TransferArgs{To: to, Amount: amount}); err != nil {
		return nil, err
	}
	return call, nil
}

// NewMint returns call of the mint method.
func NewMint(to types.AccountID, amount types.Amount) (*types.Call, error) {
	call := &types.Call{Module: ModuleName, Method: MethodMint}
	if err := call.SetArgs(MintArgs{To: to, Amount: amount}); err != nil {
		return nil, err
	}
	return call, nil
}
