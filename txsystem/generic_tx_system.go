package txsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/alphabill-org/alphabill-fees/logger"
	"github.com/alphabill-org/alphabill-fees/state"
	"github.com/alphabill-org/alphabill-fees/txsystem/balances"
	"github.com/alphabill-org/alphabill-fees/txsystem/fees"
	"github.com/alphabill-org/alphabill-fees/types"
)

type (
	Module interface {
		TxExecutors() map[types.CallID]ExecuteFunc
	}

	// FeeRouter is implemented by modules which charge extra fee for (some of)
	// their calls. The returned routes map method name to fee category.
	FeeRouter interface {
		FeeRoutes() (module string, routes map[string]fees.Category)
	}

	FeeCharger interface {
		Charge(payer types.AccountID, length uint64, call *types.Call) (types.Amount, error)
	}

	RouteRegistry interface {
		AddRoutes(module string, routes map[string]fees.Category) error
		Verify() error
	}

	Observability interface {
		Meter(name string, opts ...metric.MeterOption) metric.Meter
		Logger() *slog.Logger
	}

	/*
		GenericTxSystem admits extrinsics into the ledger state. The fee of an
		extrinsic is charged before the call is dispatched; when the fee can't
		be charged the extrinsic is rejected and the state is not changed. When
		the call itself fails the fee stays charged and only the effects of the
		call are rolled back.
	*/
	GenericTxSystem struct {
		state               *state.State
		charger             FeeCharger
		currentRound        uint64
		executors           TxExecutors
		beginBlockFunctions []func(round uint64) error
		endBlockFunctions   []func(round uint64) error
		roundCommitted      bool
		log                 *slog.Logger

		extrinsics metric.Int64Counter
	}
)

func NewGenericTxSystem(charger FeeCharger, resolver RouteRegistry, s *state.State, modules []Module, observe Observability, opts ...Option) (*GenericTxSystem, error) {
	if charger == nil {
		return nil, errors.New("fee charger is nil")
	}
	if resolver == nil {
		return nil, errors.New("fee route registry is nil")
	}
	if s == nil {
		return nil, errors.New("state is nil")
	}
	if observe == nil {
		return nil, errors.New("observability is nil")
	}
	options := DefaultOptions()
	for _, option := range opts {
		option(options)
	}
	txs := &GenericTxSystem{
		state:               s,
		charger:             charger,
		currentRound:        options.initialRound,
		executors:           make(TxExecutors),
		beginBlockFunctions: options.beginBlockFunctions,
		endBlockFunctions:   options.endBlockFunctions,
		log:                 observe.Logger(),
	}

	for _, module := range modules {
		if err := txs.executors.Add(module.TxExecutors()); err != nil {
			return nil, fmt.Errorf("registering call executors: %w", err)
		}
		if fr, ok := module.(FeeRouter); ok {
			if err := resolver.AddRoutes(fr.FeeRoutes()); err != nil {
				return nil, fmt.Errorf("registering fee routes: %w", err)
			}
		}
	}
	if err := resolver.Verify(); err != nil {
		return nil, fmt.Errorf("verifying fee routes: %w", err)
	}

	if err := txs.initMetrics(observe.Meter("txsystem")); err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}
	return txs, nil
}

func (m *GenericTxSystem) BeginBlock(round uint64) error {
	m.currentRound = round
	m.roundCommitted = false
	for _, function := range m.beginBlockFunctions {
		if err := function(round); err != nil {
			return fmt.Errorf("begin block function call failed: %w", err)
		}
	}
	return nil
}

/*
Execute charges the fee of the extrinsic and dispatches the call.

Error is returned when the extrinsic is rejected, ie it is invalid or the
fee can't be charged, the state is unchanged in that case. When the fee was
charged nil error is returned and the status in the server metadata tells
whether the call was applied.
*/
func (m *GenericTxSystem) Execute(ext *types.Extrinsic) (sm *types.ServerMetadata, rErr error) {
	defer func() {
		m.countExtrinsic(sm, rErr)
	}()

	length, err := ext.EncodedLen()
	if err != nil {
		return nil, fmt.Errorf("encoding extrinsic: %w", err)
	}
	if err := m.validateGenericExtrinsic(ext); err != nil {
		return nil, fmt.Errorf("invalid extrinsic: %w", err)
	}

	savepointID := m.state.Savepoint()
	defer func() {
		if rErr != nil {
			m.state.RollbackToSavepoint(savepointID)
			return
		}
		m.state.ReleaseToSavepoint(savepointID)
	}()

	fee, err := m.charger.Charge(ext.Payer, length, ext.Call)
	if err != nil {
		return nil, fmt.Errorf("charging fee: %w", err)
	}
	if err := m.state.Apply(balances.IncrementNonce(ext.Payer)); err != nil {
		return nil, fmt.Errorf("incrementing nonce: %w", err)
	}

	m.log.Debug(fmt.Sprintf("execute %s", ext.CallID()), logger.Account(ext.Payer), logger.Data(ext), logger.Round(m.currentRound))
	return m.dispatch(ext, fee), nil
}

// dispatch runs the call executor, effects of a failed call are rolled back
// but the fee stays charged.
func (m *GenericTxSystem) dispatch(ext *types.Extrinsic, fee types.Amount) *types.ServerMetadata {
	callSavepoint := m.state.Savepoint()
	sm, err := m.executors.Execute(ext, newExecutionContext(m, fee))
	if err != nil {
		m.state.RollbackToSavepoint(callSavepoint)
		m.log.Debug(fmt.Sprintf("call %s failed", ext.CallID()), logger.Account(ext.Payer), logger.Error(err))
		return &types.ServerMetadata{
			ActualFee:         fee,
			Status:            types.TxStatusFailed,
			TargetAccounts:    []types.AccountID{ext.Payer},
			ProcessingDetails: err.Error(),
		}
	}
	m.state.ReleaseToSavepoint(callSavepoint)

	if sm == nil {
		sm = &types.ServerMetadata{}
	}
	sm.ActualFee = fee
	sm.Status = types.TxStatusSuccessful
	if !containsAccount(sm.TargetAccounts, ext.Payer) {
		sm.TargetAccounts = append(sm.TargetAccounts, ext.Payer)
	}
	return sm
}

/*
validateGenericExtrinsic does the validation common to all the calls, call
specific validation must be implemented by the executor.
*/
func (m *GenericTxSystem) validateGenericExtrinsic(ext *types.Extrinsic) error {
	if ext.GetCall() == nil {
		return ErrCallIsNil
	}
	if err := ext.CallID().IsValid(); err != nil {
		return err
	}
	if len(ext.Payer) == 0 {
		return ErrPayerIsMissing
	}
	if !m.executors.Has(ext.CallID()) {
		return fmt.Errorf("%w %s", ErrUnknownCall, ext.CallID())
	}
	acc, err := balances.GetAccount(m.state, ext.Payer, false)
	if err != nil {
		return fmt.Errorf("payer: %w", err)
	}
	if acc.Nonce != ext.Nonce {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidNonce, acc.Nonce, ext.Nonce)
	}
	return nil
}

func (m *GenericTxSystem) EndBlock() error {
	for _, function := range m.endBlockFunctions {
		if err := function(m.currentRound); err != nil {
			return fmt.Errorf("end block function call failed: %w", err)
		}
	}
	return nil
}

func (m *GenericTxSystem) Revert() {
	if m.roundCommitted {
		return
	}
	m.state.Revert()
}

func (m *GenericTxSystem) Commit() error {
	m.state.Commit()
	m.roundCommitted = true
	return nil
}

// State returns a copy of the state.
func (m *GenericTxSystem) State() *state.State {
	return m.state.Clone()
}

func (m *GenericTxSystem) GetUnit(id types.UnitID, committed bool) (*state.Unit, error) {
	return m.state.GetUnit(id, committed)
}

func (m *GenericTxSystem) CurrentRound() uint64 {
	return m.currentRound
}

func (m *GenericTxSystem) countExtrinsic(sm *types.ServerMetadata, err error) {
	status := "rejected"
	if err == nil {
		status = sm.Status.String()
	}
	m.extrinsics.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *GenericTxSystem) initMetrics(mtr metric.Meter) (err error) {
	if m.extrinsics, err = mtr.Int64Counter(
		"extrinsic.count",
		metric.WithDescription("Number of extrinsics processed, by status."),
		metric.WithUnit("{extrinsic}"),
	); err != nil {
		return fmt.Errorf("creating extrinsic counter: %w", err)
	}

	if _, err := mtr.Int64ObservableUpDownCounter(
		"unit.count",
		metric.WithDescription(`Number of units in the state.`),
		metric.WithUnit("{unit}"),
		metric.WithInt64Callback(func(ctx context.Context, io metric.Int64Observer) error {
			io.Observe(int64(m.state.Size()))
			return nil
		}),
	); err != nil {
		return fmt.Errorf("creating state unit counter: %w", err)
	}
	return nil
}

func containsAccount(ids []types.AccountID, id types.AccountID) bool {
	for _, v := range ids {
		if v.Eq(id) {
			return true
		}
	}
	return false
}
