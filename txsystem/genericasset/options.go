package genericasset

import "github.com/alphabill-org/alphabill-fees/types"

type (
	Options struct {
		minter types.AccountID
	}

	Option func(*Options)
)

func defaultOptions() *Options {
	return &Options{}
}

// WithMinter restricts the mint call to the given account. Without minter
// any account may mint.
func WithMinter(minter types.AccountID) Option {
	return func(o *Options) {
		o.minter = minter
	}
}
