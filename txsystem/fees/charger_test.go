package fees

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/alphabill-fees/internal/testutils/observability"
	"github.com/alphabill-org/alphabill-fees/types"
)

var (
	payer        = types.AccountID{0x0A}
	transferCall = &types.Call{Module: "generic_asset", Method: "transfer"}
	mintCall     = &types.Call{Module: "generic_asset", Method: "mint"}
)

type debit struct {
	account types.AccountID
	amount  types.Amount
}

// mockLedger implements Debiter, debit either succeeds fully or fails without changes.
type mockLedger struct {
	balances map[string]types.Amount
	debits   []debit
	err      error
}

func newMockLedger(balances map[string]types.Amount) *mockLedger {
	if balances == nil {
		balances = map[string]types.Amount{}
	}
	return &mockLedger{balances: balances}
}

func (l *mockLedger) Debit(account types.AccountID, amount types.Amount) error {
	if l.err != nil {
		return l.err
	}
	balance := l.balances[string(account)]
	if balance < amount {
		return fmt.Errorf("account %s balance %s is less than %s: %w", account, balance, amount, types.ErrInsufficientBalance)
	}
	l.balances[string(account)] = balance - amount
	l.debits = append(l.debits, debit{account: account, amount: amount})
	return nil
}

func (l *mockLedger) balance(account types.AccountID) types.Amount {
	return l.balances[string(account)]
}

type chargerEnv struct {
	registry *Registry
	resolver *CallFeeResolver
	ledger   *mockLedger
	charger  *ExtrinsicFeeCharger
	observe  *observability.Observability
}

// newChargerEnv creates charger with generic_asset.transfer routed to the transferFee category.
func newChargerEnv(t *testing.T, balance types.Amount, entries ...Entry) *chargerEnv {
	t.Helper()
	env := &chargerEnv{
		registry: newTestRegistry(t, entries...),
		ledger:   newMockLedger(map[string]types.Amount{string(payer): balance}),
		observe:  observability.WithMetrics(t),
	}
	env.resolver = NewCallFeeResolver(env.registry)
	require.NoError(t, env.resolver.AddRoutes("generic_asset", map[string]Category{"transfer": transferFee}))
	var err error
	env.charger, err = NewExtrinsicFeeCharger(env.registry, env.resolver, env.ledger, env.observe)
	require.NoError(t, err)
	return env
}

func TestNewExtrinsicFeeCharger(t *testing.T) {
	obs := observability.NOPObservability()
	ledger := newMockLedger(nil)

	t.Run("nil arguments", func(t *testing.T) {
		fc, err := NewExtrinsicFeeCharger(nil, nil, nil, nil)
		require.ErrorContains(t, err, "fee registry is nil")
		require.ErrorContains(t, err, "call fee resolver is nil")
		require.ErrorContains(t, err, "ledger is nil")
		require.ErrorContains(t, err, "observability is nil")
		require.Nil(t, fc)
	})

	t.Run("empty registry", func(t *testing.T) {
		reg := newTestRegistry(t)
		fc, err := NewExtrinsicFeeCharger(reg, NewCallFeeResolver(reg), ledger, obs)
		require.ErrorIs(t, err, ErrMissingRegistryEntry)
		require.ErrorContains(t, err, "fees/base")
		require.ErrorContains(t, err, "fees/bytes")
		require.Nil(t, fc)
	})

	t.Run("bytes missing", func(t *testing.T) {
		reg := newTestRegistry(t, Entry{Base, 1})
		fc, err := NewExtrinsicFeeCharger(reg, NewCallFeeResolver(reg), ledger, obs)
		require.ErrorIs(t, err, ErrMissingRegistryEntry)
		require.ErrorContains(t, err, "fee registry is not initialized: missing fee registry entry: fees/bytes")
		require.Nil(t, fc)
	})

	t.Run("base missing", func(t *testing.T) {
		reg := newTestRegistry(t, Entry{Bytes, 0})
		fc, err := NewExtrinsicFeeCharger(reg, NewCallFeeResolver(reg), ledger, obs)
		require.ErrorIs(t, err, ErrMissingRegistryEntry)
		require.ErrorContains(t, err, "fees/base")
		require.Nil(t, fc)
	})

	t.Run("success", func(t *testing.T) {
		reg := newTestRegistry(t, Entry{Base, 0}, Entry{Bytes, 0})
		fc, err := NewExtrinsicFeeCharger(reg, NewCallFeeResolver(reg), ledger, obs)
		require.NoError(t, err)
		require.NotNil(t, fc)
	})
}

func TestCharge_TransferScenario(t *testing.T) {
	env := newChargerEnv(t, 10, Entry{Base, 1}, Entry{Bytes, 0}, Entry{transferFee, 1})

	fee, err := env.charger.Charge(payer, 200, transferCall)
	require.NoError(t, err)
	require.EqualValues(t, 2, fee)
	require.EqualValues(t, 8, env.ledger.balance(payer))
	require.Equal(t, []debit{{account: payer, amount: 2}}, env.ledger.debits)
	require.EqualValues(t, 2, env.observe.Collect(t, "fee.charged", "", ""))
}

func TestCharge_NonTransferScenario(t *testing.T) {
	env := newChargerEnv(t, 10, Entry{Base, 1}, Entry{Bytes, 0}, Entry{transferFee, 1})

	fee, err := env.charger.Charge(payer, 200, mintCall)
	require.NoError(t, err)
	require.EqualValues(t, 1, fee)
	require.EqualValues(t, 9, env.ledger.balance(payer))
	require.Len(t, env.ledger.debits, 1)
}

func TestCharge_BaseBytesOverflowScenario(t *testing.T) {
	env := newChargerEnv(t, types.MaxAmount, Entry{Base, types.MaxAmount}, Entry{Bytes, 1}, Entry{transferFee, 1})

	fee, err := env.charger.Charge(payer, 1, mintCall)
	require.ErrorIs(t, err, ErrOverflow)
	var oe *OverflowError
	require.ErrorAs(t, err, &oe)
	require.Equal(t, TermBaseBytes, oe.Term)
	require.Zero(t, fee)
	require.Equal(t, types.MaxAmount, env.ledger.balance(payer))
	require.Empty(t, env.ledger.debits)
	require.EqualValues(t, 1, env.observe.Collect(t, "fee.rejected", "reason", reasonOverflow))
}

func TestCharge_FeeFormula(t *testing.T) {
	var testCases = []struct {
		base, perByte, call types.Amount
		length              uint64
	}{
		{base: 0, perByte: 0, call: 0, length: 0},
		{base: 1, perByte: 0, call: 1, length: 200},
		{base: 1, perByte: 1, call: 0, length: 200},
		{base: 10, perByte: 3, call: 5, length: 77},
		{base: 0, perByte: 1 << 20, call: 0, length: 1 << 20},
		{base: 1, perByte: 0, call: 0, length: math.MaxUint64},
		{base: types.MaxAmount - 1, perByte: 0, call: 1, length: 100},
		{base: 0, perByte: math.MaxUint32, call: 0, length: math.MaxUint32},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("b=%d r=%d c=%d L=%d", tc.base, tc.perByte, tc.call, tc.length), func(t *testing.T) {
			expected := tc.base + tc.perByte*types.Amount(tc.length)
			// routed call: b + r*L + c
			env := newChargerEnv(t, types.MaxAmount, Entry{Base, tc.base}, Entry{Bytes, tc.perByte}, Entry{transferFee, tc.call})
			fee, err := env.charger.Charge(payer, tc.length, transferCall)
			require.NoError(t, err)
			require.Equal(t, expected+tc.call, fee)
			require.Equal(t, types.MaxAmount-fee, env.ledger.balance(payer))

			// unrouted call: b + r*L, the call specific part is zero
			env = newChargerEnv(t, types.MaxAmount, Entry{Base, tc.base}, Entry{Bytes, tc.perByte}, Entry{transferFee, tc.call})
			fee, err = env.charger.Charge(payer, tc.length, mintCall)
			require.NoError(t, err)
			require.Equal(t, expected, fee)
			require.Equal(t, types.MaxAmount-fee, env.ledger.balance(payer))
		})
	}
}

func TestCharge_Overflow(t *testing.T) {
	var testCases = []struct {
		name                string
		base, perByte, call types.Amount
		length              uint64
		term                string
	}{
		{name: "bytes", base: 0, perByte: 2, length: math.MaxUint64/2 + 1, term: TermBytes},
		{name: "bytes, max rate", base: 0, perByte: types.MaxAmount, length: 2, term: TermBytes},
		{name: "bytes overflow is reported before base", base: types.MaxAmount, perByte: types.MaxAmount, call: types.MaxAmount, length: 2, term: TermBytes},
		{name: "base + bytes", base: types.MaxAmount, perByte: 1, length: 1, term: TermBaseBytes},
		{name: "base + bytes, large length", base: 2, perByte: 1, length: math.MaxUint64 - 1, term: TermBaseBytes},
		{name: "base + bytes + call", base: types.MaxAmount - 10, perByte: 1, call: 11, length: 0, term: TermBaseBytesAndCall},
		{name: "base + bytes + call, call max", base: 1, perByte: 0, call: types.MaxAmount, length: 5, term: TermBaseBytesAndCall},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newChargerEnv(t, types.MaxAmount, Entry{Base, tc.base}, Entry{Bytes, tc.perByte}, Entry{transferFee, tc.call})
			fee, err := env.charger.Charge(payer, tc.length, transferCall)
			require.ErrorIs(t, err, ErrOverflow)
			require.ErrorContains(t, err, fmt.Sprintf("extrinsic fee overflow (%s)", tc.term))
			var oe *OverflowError
			require.ErrorAs(t, err, &oe)
			require.Equal(t, tc.term, oe.Term)
			require.Zero(t, fee)
			require.Empty(t, env.ledger.debits)
			require.Equal(t, types.MaxAmount, env.ledger.balance(payer))
		})
	}
}

func TestCharge_InsufficientBalance(t *testing.T) {
	env := newChargerEnv(t, 5, Entry{Base, 3}, Entry{Bytes, 1}, Entry{transferFee, 1})

	fee, err := env.charger.Charge(payer, 2, transferCall)
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
	require.ErrorContains(t, err, "debiting fee 6 from 0A")
	require.Zero(t, fee)
	require.EqualValues(t, 5, env.ledger.balance(payer))
	require.Empty(t, env.ledger.debits)
	require.EqualValues(t, 1, env.observe.Collect(t, "fee.rejected", "reason", reasonInsufficientBalance))
	require.Zero(t, env.observe.Collect(t, "fee.charged", "", ""))

	// exact balance is enough
	fee, err = env.charger.Charge(payer, 1, transferCall)
	require.NoError(t, err)
	require.EqualValues(t, 5, fee)
	require.Zero(t, env.ledger.balance(payer))

	// unknown account has zero balance
	_, err = env.charger.Charge(types.AccountID{0xFF}, 0, mintCall)
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
}

func TestCharge_DebitError(t *testing.T) {
	env := newChargerEnv(t, 100, Entry{Base, 1}, Entry{Bytes, 1})
	env.ledger.err = errors.New("ledger unavailable")

	fee, err := env.charger.Charge(payer, 1, mintCall)
	require.ErrorIs(t, err, env.ledger.err)
	require.NotErrorIs(t, err, types.ErrInsufficientBalance)
	require.Zero(t, fee)
	require.EqualValues(t, 1, env.observe.Collect(t, "fee.rejected", "reason", reasonDebit))
}

func TestCharge_RoutedCategoryMissing(t *testing.T) {
	// transfer is routed but it's category has no registry entry
	env := newChargerEnv(t, 100, Entry{Base, 1}, Entry{Bytes, 0})

	fee, err := env.charger.Charge(payer, 10, transferCall)
	require.ErrorIs(t, err, ErrMissingRegistryEntry)
	require.Zero(t, fee)
	require.Empty(t, env.ledger.debits)
	require.EqualValues(t, 1, env.observe.Collect(t, "fee.rejected", "reason", reasonRegistry))

	// unrouted calls are still charged
	fee, err = env.charger.Charge(payer, 10, mintCall)
	require.NoError(t, err)
	require.EqualValues(t, 1, fee)
}

func TestCharge_ResolverError(t *testing.T) {
	reg := newTestRegistry(t, Entry{Base, 1}, Entry{Bytes, 0})
	ledger := newMockLedger(map[string]types.Amount{string(payer): 10})
	expErr := errors.New("resolver failure")
	fc, err := NewExtrinsicFeeCharger(reg, resolverFunc(func(*types.Call) (types.Amount, error) { return 0, expErr }), ledger, observability.NOPObservability())
	require.NoError(t, err)

	fee, err := fc.Charge(payer, 1, mintCall)
	require.ErrorIs(t, err, expErr)
	require.Zero(t, fee)
	require.Empty(t, ledger.debits)
}

func TestCharge_RegistryChangeTakesEffect(t *testing.T) {
	env := newChargerEnv(t, 100, Entry{Base, 1}, Entry{Bytes, 0}, Entry{transferFee, 1})

	fee, err := env.charger.Charge(payer, 10, transferCall)
	require.NoError(t, err)
	require.EqualValues(t, 2, fee)

	require.NoError(t, env.registry.Set(Bytes, 2))
	fee, err = env.charger.Charge(payer, 10, transferCall)
	require.NoError(t, err)
	require.EqualValues(t, 22, fee)
	require.EqualValues(t, 76, env.ledger.balance(payer))
}

func TestCalculateFee_IsPure(t *testing.T) {
	env := newChargerEnv(t, 100, Entry{Base, 3}, Entry{Bytes, 2}, Entry{transferFee, 5})

	first, err := env.charger.CalculateFee(17, transferCall)
	require.NoError(t, err)
	second, err := env.charger.CalculateFee(17, transferCall)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 3+2*17+5, first)

	// call arguments do not affect the call fee
	withArgs := &types.Call{Module: "generic_asset", Method: "transfer", Args: []byte{0x80}}
	third, err := env.charger.CalculateFee(17, withArgs)
	require.NoError(t, err)
	require.Equal(t, first, third)

	// calculation never touches the ledger
	require.Empty(t, env.ledger.debits)
	require.EqualValues(t, 100, env.ledger.balance(payer))
}

func TestChargeRequest(t *testing.T) {
	env := newChargerEnv(t, 10, Entry{Base, 1}, Entry{Bytes, 0}, Entry{transferFee, 1})

	fee, err := env.charger.ChargeRequest(ChargeRequest{Payer: payer, Length: 200, Call: transferCall})
	require.NoError(t, err)
	require.EqualValues(t, 2, fee)
	require.EqualValues(t, 8, env.ledger.balance(payer))
}

type resolverFunc func(*types.Call) (types.Amount, error)

func (f resolverFunc) Resolve(call *types.Call) (types.Amount, error) {
	return f(call)
}
