package fees

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/alphabill-org/alphabill-fees/logger"
	"github.com/alphabill-org/alphabill-fees/types"
	"github.com/alphabill-org/alphabill-fees/util"
)

// Reasons of a rejected charge, used as the "reason" attribute of the rejected metric.
const (
	reasonOverflow            = "overflow"
	reasonInsufficientBalance = "insufficient_balance"
	reasonResolve             = "resolve"
	reasonRegistry            = "registry"
	reasonDebit               = "debit"
)

type (
	/*
		Debiter is the balance primitive of the ledger: it must either deduct the
		whole amount from the account or fail without changing the balance. When
		the balance is too low error wrapping types.ErrInsufficientBalance is
		returned.
	*/
	Debiter interface {
		Debit(account types.AccountID, amount types.Amount) error
	}

	Observability interface {
		Meter(name string, opts ...metric.MeterOption) metric.Meter
		Logger() *slog.Logger
	}

	// ChargeRequest describes fee charge for one extrinsic.
	ChargeRequest struct {
		Payer  types.AccountID
		Length uint64
		Call   *types.Call
	}

	/*
		ExtrinsicFeeCharger computes the fee of an extrinsic

			fee = Base + Bytes*length + call fee

		and debits it from the payer. All the arithmetic is checked, on overflow
		OverflowError naming the overflowed term is returned and nothing is
		debited.
	*/
	ExtrinsicFeeCharger struct {
		registry AmountReader
		resolver CallResolver
		ledger   Debiter
		log      *slog.Logger

		charged  metric.Int64Counter
		rejected metric.Int64Counter
	}
)

/*
NewExtrinsicFeeCharger returns error wrapping ErrMissingRegistryEntry when
the Base or Bytes category is missing from the registry.
*/
func NewExtrinsicFeeCharger(registry AmountReader, resolver CallResolver, ledger Debiter, observe Observability) (*ExtrinsicFeeCharger, error) {
	var errs []error
	if registry == nil {
		errs = append(errs, errors.New("fee registry is nil"))
	}
	if resolver == nil {
		errs = append(errs, errors.New("call fee resolver is nil"))
	}
	if ledger == nil {
		errs = append(errs, errors.New("ledger is nil"))
	}
	if observe == nil {
		errs = append(errs, errors.New("observability is nil"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if err := verifyRequired(registry, Base, Bytes); err != nil {
		return nil, fmt.Errorf("fee registry is not initialized: %w", err)
	}

	fc := &ExtrinsicFeeCharger{
		registry: registry,
		resolver: resolver,
		ledger:   ledger,
		log:      observe.Logger(),
	}
	if err := fc.initMetrics(observe.Meter("fees")); err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}
	return fc, nil
}

/*
CalculateFee returns the fee of a call whose extrinsic is "length" bytes
long. The result depends only on the current registry values, the length
and the call identity.
*/
func (fc *ExtrinsicFeeCharger) CalculateFee(length uint64, call *types.Call) (types.Amount, error) {
	perByte, err := fc.registry.AmountOf(Bytes)
	if err != nil {
		return 0, err
	}
	bytesFee, ok := util.SafeMul(uint64(perByte), length)
	if !ok {
		return 0, overflow(TermBytes)
	}

	callFee, err := fc.resolver.Resolve(call)
	if err != nil {
		return 0, err
	}

	base, err := fc.registry.AmountOf(Base)
	if err != nil {
		return 0, err
	}
	total, ok := util.SafeAdd(uint64(base), bytesFee)
	if !ok {
		return 0, overflow(TermBaseBytes)
	}
	if total, ok = util.SafeAdd(total, uint64(callFee)); !ok {
		return 0, overflow(TermBaseBytesAndCall)
	}
	return types.Amount(total), nil
}

/*
Charge calculates the fee and debits it from the payer. On success exactly
one debit of the returned amount has been made, on error nothing has been
debited.
*/
func (fc *ExtrinsicFeeCharger) Charge(payer types.AccountID, length uint64, call *types.Call) (types.Amount, error) {
	total, err := fc.CalculateFee(length, call)
	if err != nil {
		fc.reject(calculationFailure(err))
		return 0, fmt.Errorf("calculating fee of call %s: %w", call.ID(), err)
	}

	if err := fc.ledger.Debit(payer, total); err != nil {
		fc.reject(debitFailure(err))
		return 0, fmt.Errorf("debiting fee %s from %s: %w", total, payer, err)
	}

	fc.charged.Add(context.Background(), clampInt64(total), metric.WithAttributes(attribute.String("call", call.ID().String())))
	fc.log.Debug(fmt.Sprintf("charged fee %s for %s", total, call.ID()), logger.Account(payer), logger.Data(map[string]uint64{"length": length, "fee": uint64(total)}))
	return total, nil
}

// ChargeRequest is Charge with arguments taken from the request.
func (fc *ExtrinsicFeeCharger) ChargeRequest(req ChargeRequest) (types.Amount, error) {
	return fc.Charge(req.Payer, req.Length, req.Call)
}

func (fc *ExtrinsicFeeCharger) reject(reason string) {
	fc.rejected.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func calculationFailure(err error) string {
	switch {
	case errors.Is(err, ErrOverflow):
		return reasonOverflow
	case errors.Is(err, ErrMissingRegistryEntry):
		return reasonRegistry
	default:
		return reasonResolve
	}
}

func debitFailure(err error) string {
	if errors.Is(err, types.ErrInsufficientBalance) {
		return reasonInsufficientBalance
	}
	return reasonDebit
}

func (fc *ExtrinsicFeeCharger) initMetrics(mtr metric.Meter) (err error) {
	if fc.charged, err = mtr.Int64Counter("fee.charged", metric.WithDescription("Sum of the fees charged."), metric.WithUnit("{tema}")); err != nil {
		return fmt.Errorf("creating charged fee counter: %w", err)
	}
	if fc.rejected, err = mtr.Int64Counter("fee.rejected", metric.WithDescription("Number of extrinsics whose fee could not be charged."), metric.WithUnit("{extrinsic}")); err != nil {
		return fmt.Errorf("creating rejected fee counter: %w", err)
	}
	return nil
}

func clampInt64(a types.Amount) int64 {
	return int64(min(uint64(a), math.MaxInt64))
}
