package txsystem

import "errors"

var (
	ErrCallIsNil      = errors.New("extrinsic call is nil")
	ErrPayerIsMissing = errors.New("extrinsic payer is missing")
	ErrUnknownCall    = errors.New("unknown call")
	ErrInvalidNonce   = errors.New("invalid extrinsic nonce")
)
