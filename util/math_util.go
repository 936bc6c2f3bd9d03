package util

import (
	"github.com/holiman/uint256"
)

// SafeAdd returns a+b and false if the sum doesn't fit into uint64.
func SafeAdd(a, b uint64) (uint64, bool) {
	sum := new(uint256.Int).Add(uint256.NewInt(a), uint256.NewInt(b))
	if !sum.IsUint64() {
		return 0, false
	}
	return sum.Uint64(), true
}

// SafeMul returns a*b and false if the product doesn't fit into uint64.
func SafeMul(a, b uint64) (uint64, bool) {
	product := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	if !product.IsUint64() {
		return 0, false
	}
	return product.Uint64(), true
}
