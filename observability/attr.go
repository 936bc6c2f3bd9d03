package observability

import (
	"encoding/hex"

	"go.opentelemetry.io/otel/attribute"

	"github.com/alphabill-org/alphabill-fees/types"
)

const (
	UnitIDKey  attribute.Key = "unit_id"
	AccountKey attribute.Key = "account"
	CallKey    attribute.Key = "call"
)

func Round(round uint64) attribute.KeyValue {
	return attribute.Int64("round", int64(round)) /* #nosec G115 its unlikely that value of round exceeds int64 max value */
}

func UnitID(id []byte) attribute.KeyValue {
	return UnitIDKey.String(hex.EncodeToString(id))
}

func Account(id types.AccountID) attribute.KeyValue {
	return AccountKey.String(hex.EncodeToString(id))
}

func Call(id types.CallID) attribute.KeyValue {
	return CallKey.String(id.String())
}

/*
ErrStatus returns attribute named "status" with value "ok" if the param
err is nil and "err" when it is not.
*/
func ErrStatus(err error) attribute.KeyValue {
	status := "ok"
	if err != nil {
		status = "err"
	}
	return attribute.String("status", status)
}
