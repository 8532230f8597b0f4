package utils

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// base-unit integer string: no decimal point, no sign, no scientific notation
var baseUnitAmountPattern = regexp.MustCompile(`^\d+$`)

// IsValidAddress reports whether s is a 0x-prefixed 40-hex-digit EVM address.
// The prefix is checked explicitly: common.IsHexAddress also accepts bare hex
// and an uppercase 0X prefix, neither of which is a valid address here.
func IsValidAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// IsValidBaseUnitAmount reports whether s is a non-negative token amount in
// base units. Amounts are kept as strings end to end; they are never parsed
// into floats.
func IsValidBaseUnitAmount(s string) bool {
	return baseUnitAmountPattern.MatchString(s)
}

// SameAddress compares two addresses case-insensitively
func SameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}
