package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/alphabill-org/alphabill-fees/keyvaluedb/boltdb"
	"github.com/alphabill-org/alphabill-fees/logger"
	"github.com/alphabill-org/alphabill-fees/state"
	"github.com/alphabill-org/alphabill-fees/txsystem"
	"github.com/alphabill-org/alphabill-fees/txsystem/balances"
	"github.com/alphabill-org/alphabill-fees/txsystem/fees"
	"github.com/alphabill-org/alphabill-fees/txsystem/genericasset"
	"github.com/alphabill-org/alphabill-fees/txsystem/genesis"
	"github.com/alphabill-org/alphabill-fees/types"
)

/*
ledgerNode executes every submitted extrinsic in a block of its own: begin
block, execute, end block and commit. Rejected extrinsic reverts the block.
*/
type ledgerNode struct {
	mu      sync.Mutex
	state   *state.State
	ledger  *balances.Ledger
	txs     *txsystem.GenericTxSystem
	charger *fees.ExtrinsicFeeCharger
	log     *slog.Logger
}

func newLedgerNode(reg *fees.Registry, s *state.State, obs Observability, opts ...genericasset.Option) (*ledgerNode, error) {
	ledger, err := balances.NewLedger(s)
	if err != nil {
		return nil, fmt.Errorf("creating ledger: %w", err)
	}
	resolver := fees.NewCallFeeResolver(reg)
	charger, err := fees.NewExtrinsicFeeCharger(reg, resolver, ledger, obs)
	if err != nil {
		return nil, fmt.Errorf("creating fee charger: %w", err)
	}
	asset, err := genericasset.NewModule(s, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating %s module: %w", genericasset.ModuleName, err)
	}
	txs, err := txsystem.NewGenericTxSystem(charger, resolver, s, []txsystem.Module{asset}, obs)
	if err != nil {
		return nil, fmt.Errorf("creating tx system: %w", err)
	}
	return &ledgerNode{state: s, ledger: ledger, txs: txs, charger: charger, log: obs.Logger()}, nil
}

func (n *ledgerNode) Account(id types.AccountID, committed bool) (*balances.Account, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Account(id, committed)
}

func (n *ledgerNode) Accounts(committed bool) []balances.AccountEntry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Accounts(committed)
}

func (n *ledgerNode) SubmitExtrinsic(ext *types.Extrinsic) (*types.ServerMetadata, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	round := n.txs.CurrentRound() + 1
	if err := n.txs.BeginBlock(round); err != nil {
		return nil, fmt.Errorf("begin block %d: %w", round, err)
	}
	sm, err := n.txs.Execute(ext)
	if err != nil {
		n.txs.Revert()
		return nil, err
	}
	if err := n.txs.EndBlock(); err != nil {
		n.txs.Revert()
		return nil, fmt.Errorf("end block %d: %w", round, err)
	}
	if err := n.txs.Commit(); err != nil {
		return nil, fmt.Errorf("commit block %d: %w", round, err)
	}
	n.log.Debug(fmt.Sprintf("block %d committed, extrinsic %s", round, sm.Status), logger.Round(round), logger.Account(ext.Payer))
	return sm, nil
}

func (n *ledgerNode) CalculateFee(length uint64, call *types.Call) (types.Amount, error) {
	return n.charger.CalculateFee(length, call)
}

/*
openRegistry opens the fee registry stored in the Bolt DB file. When
mustExist is true and the file doesn't exist error is returned instead of
creating new empty registry.
*/
func openRegistry(filename string, mustExist bool) (*fees.Registry, func() error, error) {
	if _, err := os.Stat(filename); err != nil {
		if !errors.Is(err, os.ErrNotExist) || mustExist {
			return nil, nil, fmt.Errorf("fee registry database %s: %w", filename, err)
		}
		if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
			return nil, nil, fmt.Errorf("creating fee registry directory: %w", err)
		}
	}
	db, err := boltdb.New(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("opening fee registry database %s: %w", filename, err)
	}
	reg, err := fees.NewRegistry(db)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("creating fee registry: %w", err), db.Close())
	}
	return reg, db.Close, nil
}

/*
loadLedger creates ledger state from the genesis. The registry is
initialized from the genesis when it is empty, otherwise only the accounts
are created and the existing registry content must have the generic fees.
*/
func loadLedger(gen *genesis.Config, reg *fees.Registry, log *slog.Logger) (*state.State, error) {
	version, err := reg.Version()
	if err != nil {
		return nil, err
	}
	s := state.NewEmptyState()
	if version == 0 {
		log.Info("initializing fee registry from genesis")
		if err := genesis.Apply(gen, reg, s); err != nil {
			return nil, fmt.Errorf("applying genesis: %w", err)
		}
		return s, nil
	}
	if err := reg.VerifyRequired(fees.Base, fees.Bytes); err != nil {
		return nil, fmt.Errorf("fee registry (version %d): %w", version, err)
	}
	if err := genesis.ApplyAccounts(gen, s); err != nil {
		return nil, fmt.Errorf("applying genesis accounts: %w", err)
	}
	return s, nil
}
