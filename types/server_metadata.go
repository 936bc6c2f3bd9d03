package types

const (
	// TxStatusFailed - the fee was charged but the call itself failed and
	// none of its effects were applied.
	TxStatusFailed TxStatus = iota
	// TxStatusSuccessful - the fee was charged and the call was applied.
	TxStatusSuccessful
)

type (
	TxStatus uint64

	// ServerMetadata describes the outcome of an admitted extrinsic.
	ServerMetadata struct {
		_                 struct{}    `cbor:",toarray"`
		ActualFee         Amount      `json:"actualFee,string"`
		Status            TxStatus    `json:"status"`
		TargetAccounts    []AccountID `json:"targetAccounts"`
		ProcessingDetails string      `json:"processingDetails,omitempty"`
	}
)

func (s TxStatus) String() string {
	switch s {
	case TxStatusFailed:
		return "failed"
	case TxStatusSuccessful:
		return "successful"
	default:
		return "unknown"
	}
}

func (sm *ServerMetadata) GetActualFee() Amount {
	if sm == nil {
		return 0
	}
	return sm.ActualFee
}
