// Package money formats yen amounts for display.
//
// Calculations carry unrounded float64 values. Amounts are cut to whole yen
// only here, toward zero, which is how the shop's cost sheets have always
// shown them.
package money

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Whole truncates v to whole yen.
func Whole(v float64) int64 {
	return decimal.NewFromFloat(v).Truncate(0).IntPart()
}

// Yen formats v as whole yen with thousands separators, e.g. "150,000".
func Yen(v float64) string {
	return humanize.Comma(Whole(v))
}

// Fixed formats v with the given number of decimal places and thousands
// separators, e.g. Fixed(681.818, 1) == "681.8".
func Fixed(v float64, places int32) string {
	s := decimal.NewFromFloat(v).StringFixed(places)

	sign := ""
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		sign, s = "-", rest
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")
	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return sign + s
	}

	out := sign + humanize.BigComma(whole)
	if hasFrac {
		out += "." + frac
	}
	return out
}
