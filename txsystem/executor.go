package txsystem

import (
	"fmt"

	"github.com/alphabill-org/alphabill-fees/state"
	"github.com/alphabill-org/alphabill-fees/types"
)

type (
	TxExecutors map[types.CallID]ExecuteFunc

	ExecuteFunc func(*types.Extrinsic, *TxExecutionContext) (*types.ServerMetadata, error)

	GenericExecuteFunc[T any] func(ext *types.Extrinsic, args *T, exeCtx *TxExecutionContext) (*types.ServerMetadata, error)

	StateInfo interface {
		GetUnit(id types.UnitID, committed bool) (*state.Unit, error)
		CurrentRound() uint64
	}

	// TxExecutionContext is handed to the call executors, the fee of the
	// extrinsic has already been charged when the executor is called.
	TxExecutionContext struct {
		txs StateInfo
		fee types.Amount
	}
)

func newExecutionContext(txs StateInfo, fee types.Amount) *TxExecutionContext {
	return &TxExecutionContext{txs: txs, fee: fee}
}

func (g GenericExecuteFunc[T]) ExecuteFunc() ExecuteFunc {
	return func(ext *types.Extrinsic, exeCtx *TxExecutionContext) (*types.ServerMetadata, error) {
		args := new(T)
		if err := ext.GetCall().UnmarshalArgs(args); err != nil {
			return nil, fmt.Errorf("failed to unmarshal call arguments: %w", err)
		}
		return g(ext, args, exeCtx)
	}
}

func (e TxExecutors) Execute(ext *types.Extrinsic, exeCtx *TxExecutionContext) (*types.ServerMetadata, error) {
	executor, found := e[ext.CallID()]
	if !found {
		return nil, fmt.Errorf("unknown call %s", ext.CallID())
	}

	sm, err := executor(ext, exeCtx)
	if err != nil {
		return nil, fmt.Errorf("call execution failed: %w", err)
	}
	return sm, nil
}

func (e TxExecutors) Add(src TxExecutors) error {
	for id, handler := range src {
		if err := id.IsValid(); err != nil {
			return fmt.Errorf("invalid call executor id: %w", err)
		}
		if handler == nil {
			return fmt.Errorf("call executor must not be nil (%s)", id)
		}
		if _, ok := e[id]; ok {
			return fmt.Errorf("call executor for %q is already registered", id)
		}
		e[id] = handler
	}
	return nil
}

func (e TxExecutors) Has(id types.CallID) bool {
	_, ok := e[id]
	return ok
}

func (ec *TxExecutionContext) GetUnit(id types.UnitID, committed bool) (*state.Unit, error) {
	return ec.txs.GetUnit(id, committed)
}

func (ec *TxExecutionContext) CurrentRound() uint64 { return ec.txs.CurrentRound() }

// Fee returns the fee charged for the extrinsic being executed.
func (ec *TxExecutionContext) Fee() types.Amount { return ec.fee }
