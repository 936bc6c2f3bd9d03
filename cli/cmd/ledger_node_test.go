package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/alphabill-fees/internal/testutils/observability"
	"github.com/alphabill-org/alphabill-fees/keyvaluedb/memorydb"
	"github.com/alphabill-org/alphabill-fees/txsystem"
	"github.com/alphabill-org/alphabill-fees/txsystem/balances"
	"github.com/alphabill-org/alphabill-fees/txsystem/fees"
	"github.com/alphabill-org/alphabill-fees/txsystem/genericasset"
	"github.com/alphabill-org/alphabill-fees/txsystem/genesis"
	"github.com/alphabill-org/alphabill-fees/types"
)

var (
	alice = types.AccountID{0x0A}
	bob   = types.AccountID{0x0B}
)

func newTestLedgerNode(t *testing.T, balance types.Amount, opts ...genericasset.Option) *ledgerNode {
	t.Helper()
	obs := observability.Default(t)
	reg, err := fees.NewRegistry(memorydb.New())
	require.NoError(t, err)
	s, err := loadLedger(genesis.DefaultConfig(genesis.Account{ID: alice, Balance: balance}), reg, obs.Logger())
	require.NoError(t, err)
	node, err := newLedgerNode(reg, s, obs, opts...)
	require.NoError(t, err)
	return node
}

func newTransferExt(t *testing.T, nonce uint64, amount types.Amount) *types.Extrinsic {
	t.Helper()
	call, err := genericasset.NewTransfer(bob, amount)
	require.NoError(t, err)
	return &types.Extrinsic{Payer: alice, Nonce: nonce, Call: call}
}

func TestLedgerNode_SubmitExtrinsic(t *testing.T) {
	node := newTestLedgerNode(t, 10)

	sm, err := node.SubmitExtrinsic(newTransferExt(t, 0, 3))
	require.NoError(t, err)
	require.Equal(t, types.TxStatusSuccessful, sm.Status)
	require.EqualValues(t, 2, sm.ActualFee)
	require.EqualValues(t, 1, node.txs.CurrentRound())
	require.True(t, node.state.IsCommitted())

	acc, err := node.Account(alice, true)
	require.NoError(t, err)
	require.Equal(t, &balances.Account{Balance: 5, Nonce: 1}, acc)
	acc, err = node.Account(bob, true)
	require.NoError(t, err)
	require.EqualValues(t, 3, acc.Balance)
	require.Equal(t, []balances.AccountEntry{
		{ID: alice, Account: &balances.Account{Balance: 5, Nonce: 1}},
		{ID: bob, Account: &balances.Account{Balance: 3}},
	}, node.Accounts(true))

	t.Run("rejected", func(t *testing.T) {
		// nonce already used
		_, err := node.SubmitExtrinsic(newTransferExt(t, 0, 1))
		require.ErrorIs(t, err, txsystem.ErrInvalidNonce)
		require.True(t, node.state.IsCommitted())

		_, err = node.SubmitExtrinsic(newTransferExt(t, 1, 1))
		require.NoError(t, err)
		// the fee takes the whole balance, the transfer itself fails
		sm, err := node.SubmitExtrinsic(newTransferExt(t, 2, 1))
		require.NoError(t, err)
		require.Equal(t, types.TxStatusFailed, sm.Status)
		// fee exceeds the balance
		_, err = node.SubmitExtrinsic(newTransferExt(t, 3, 1))
		require.ErrorIs(t, err, types.ErrInsufficientBalance)
		require.EqualValues(t, 5, node.txs.CurrentRound())
		acc, err := node.Account(alice, true)
		require.NoError(t, err)
		require.Equal(t, &balances.Account{Balance: 0, Nonce: 3}, acc)
	})
}

func TestLedgerNode_CalculateFee(t *testing.T) {
	node := newTestLedgerNode(t, 10)
	fee, err := node.CalculateFee(100, &types.Call{Module: genericasset.ModuleName, Method: genericasset.MethodTransfer})
	require.NoError(t, err)
	require.EqualValues(t, 2, fee)
	fee, err = node.CalculateFee(100, &types.Call{Module: genericasset.ModuleName, Method: genericasset.MethodMint})
	require.NoError(t, err)
	require.EqualValues(t, 1, fee)
}

func TestLedgerNode_Minter(t *testing.T) {
	node := newTestLedgerNode(t, 10, genericasset.WithMinter(bob))
	call, err := genericasset.NewMint(alice, 5)
	require.NoError(t, err)
	sm, err := node.SubmitExtrinsic(&types.Extrinsic{Payer: alice, Call: call})
	require.NoError(t, err)
	require.Equal(t, types.TxStatusFailed, sm.Status)
	require.Contains(t, sm.ProcessingDetails, "account 0A is not allowed to mint")
	acc, err := node.Account(alice, true)
	require.NoError(t, err)
	require.EqualValues(t, 9, acc.Balance)
}

func TestOpenRegistry(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "sub", defaultRegistryDBFile)
	_, _, err := openRegistry(filename, true)
	require.ErrorContains(t, err, "fee registry database "+filename)

	reg, closeDB, err := openRegistry(filename, false)
	require.NoError(t, err)
	require.NoError(t, reg.Set(fees.Base, 3))
	require.NoError(t, closeDB())

	reg, closeDB, err = openRegistry(filename, true)
	require.NoError(t, err)
	defer func() { require.NoError(t, closeDB()) }()
	amount, err := reg.AmountOf(fees.Base)
	require.NoError(t, err)
	require.EqualValues(t, 3, amount)
}

func TestLoadLedger(t *testing.T) {
	obs := observability.Default(t)
	gen := genesis.DefaultConfig(genesis.Account{ID: alice, Balance: 10})

	t.Run("registry initialized from genesis", func(t *testing.T) {
		reg, err := fees.NewRegistry(memorydb.New())
		require.NoError(t, err)
		s, err := loadLedger(gen, reg, obs.Logger())
		require.NoError(t, err)
		require.EqualValues(t, 1, s.Size())
		version, err := reg.Version()
		require.NoError(t, err)
		require.EqualValues(t, 1, version)
	})

	t.Run("existing registry is kept", func(t *testing.T) {
		reg, err := fees.NewRegistry(memorydb.New())
		require.NoError(t, err)
		require.NoError(t, fees.InitRegistry(reg, fees.DefaultGenesisConfig(fees.Entry{Category: genericasset.FeeTransfer, Amount: 7})))
		s, err := loadLedger(gen, reg, obs.Logger())
		require.NoError(t, err)
		require.EqualValues(t, 1, s.Size())
		amount, err := reg.AmountOf(genericasset.FeeTransfer)
		require.NoError(t, err)
		require.EqualValues(t, 7, amount)
	})

	t.Run("existing registry without generic fees", func(t *testing.T) {
		reg, err := fees.NewRegistry(memorydb.New())
		require.NoError(t, err)
		require.NoError(t, reg.Set(fees.Base, 1))
		_, err = loadLedger(gen, reg, obs.Logger())
		require.ErrorIs(t, err, fees.ErrMissingRegistryEntry)
	})
}
