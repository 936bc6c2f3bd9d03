package types

import (
	"math"
	"strconv"
)

// Amount is the balance type of the ledger. Every fee is expressed in it.
type Amount uint64

const MaxAmount Amount = math.MaxUint64

func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}
