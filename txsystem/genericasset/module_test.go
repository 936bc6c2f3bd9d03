package genericasset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/alphabill-fees/keyvaluedb/memorydb"
	"github.com/alphabill-org/alphabill-fees/state"
	"github.com/alphabill-org/alphabill-fees/txsystem"
	"github.com/alphabill-org/alphabill-fees/txsystem/balances"
	"github.com/alphabill-org/alphabill-fees/txsystem/fees"
	"github.com/alphabill-org/alphabill-fees/types"
)

var (
	alice = types.AccountID{0x0A}
	bob   = types.AccountID{0x0B}
)

func newStateWithAccounts(t *testing.T, accounts map[string]types.Amount) *state.State {
	t.Helper()
	s := state.NewEmptyState()
	for id, balance := range accounts {
		require.NoError(t, s.Apply(balances.AddAccount(types.AccountID(id), balance)))
	}
	s.Commit()
	return s
}

func balanceOf(t *testing.T, s *state.State, id types.AccountID) types.Amount {
	t.Helper()
	acc, err := balances.GetAccount(s, id, false)
	require.NoError(t, err)
	return acc.Balance
}

func execute(t *testing.T, m *Module, payer types.AccountID, call *types.Call) (*types.ServerMetadata, error) {
	t.Helper()
	return txsystem.TxExecutors(m.TxExecutors()).Execute(&types.Extrinsic{Payer: payer, Call: call}, nil)
}

// newRegistry returns registry with default genesis entries and extra entries.
func newRegistry(t *testing.T, extra ...fees.Entry) *fees.Registry {
	t.Helper()
	reg, err := fees.NewRegistry(memorydb.New())
	require.NoError(t, err)
	require.NoError(t, fees.InitRegistry(reg, fees.DefaultGenesisConfig(extra...)))
	return reg
}

func TestNewModule(t *testing.T) {
	m, err := NewModule(nil)
	require.EqualError(t, err, "state is nil")
	require.Nil(t, m)

	m, err = NewModule(state.NewEmptyState(), WithMinter(alice))
	require.NoError(t, err)
	require.Equal(t, alice, m.minter)

	executors := m.TxExecutors()
	require.Len(t, executors, 2)
	require.Contains(t, executors, types.CallID{Module: ModuleName, Method: MethodTransfer})
	require.Contains(t, executors, types.CallID{Module: ModuleName, Method: MethodMint})
}

func TestModule_FeeRoutes(t *testing.T) {
	m, err := NewModule(state.NewEmptyState())
	require.NoError(t, err)
	module, routes := m.FeeRoutes()
	require.Equal(t, ModuleName, module)
	require.Equal(t, map[string]fees.Category{MethodTransfer: FeeTransfer}, routes)
	require.Equal(t, "generic_asset/transfer", FeeTransfer.Key())

	// only transfer is routed, mint costs nothing extra
	resolver := fees.NewCallFeeResolver(newRegistry(t, fees.Entry{Category: FeeTransfer, Amount: 5}))
	require.NoError(t, resolver.AddRoutes(m.FeeRoutes()))
	require.NoError(t, resolver.Verify())

	transfer, err := NewTransfer(bob, 1)
	require.NoError(t, err)
	fee, err := resolver.Resolve(transfer)
	require.NoError(t, err)
	require.EqualValues(t, 5, fee)

	mint, err := NewMint(bob, 1)
	require.NoError(t, err)
	fee, err = resolver.Resolve(mint)
	require.NoError(t, err)
	require.EqualValues(t, 0, fee)
}
