// Package units converts between human amounts and ledger base units.
//
// Human amounts arrive as JSON numbers. They are converted through their
// shortest decimal representation so 0.1 HBAR is exactly 10,000,000 tinybars,
// and fractional base units are truncated toward zero.
package units

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// HbarDecimals is the number of decimals of HBAR (1 HBAR = 10^8 tinybars).
const HbarDecimals = 8

// MaxDecimals bounds the decimals accepted for conversions.
const MaxDecimals = 36

// ToBaseUnits converts a human amount to base units, truncating any
// fractional remainder.
func ToBaseUnits(amount float64, decimals int) (*big.Int, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("amount %v is not a finite number", amount)
	}
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("decimals must be between 0 and %d, got %d", MaxDecimals, decimals)
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(amount, 'f', -1, 64))
	if !ok {
		return nil, fmt.Errorf("amount %v cannot be represented", amount)
	}
	r.Mul(r, new(big.Rat).SetInt(pow10(decimals)))
	// Quo truncates toward zero.
	return new(big.Int).Quo(r.Num(), r.Denom()), nil
}

// ToPositiveBaseUnits is ToBaseUnits for amounts that must be at least one
// base unit after conversion.
func ToPositiveBaseUnits(amount float64, decimals int) (*big.Int, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %s", FormatHuman(amount))
	}
	v, err := ToBaseUnits(amount, decimals)
	if err != nil {
		return nil, err
	}
	if v.Sign() <= 0 {
		return nil, fmt.Errorf("amount %s is smaller than the smallest unit for %d decimals", FormatHuman(amount), decimals)
	}
	return v, nil
}

// ToTinybars converts HBAR to tinybars.
func ToTinybars(hbar float64) (int64, error) {
	v, err := ToBaseUnits(hbar, HbarDecimals)
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() {
		return 0, fmt.Errorf("amount %s HBAR is out of range", FormatHuman(hbar))
	}
	return v.Int64(), nil
}

// ToPositiveTinybars converts HBAR to tinybars, rejecting amounts below one
// tinybar.
func ToPositiveTinybars(hbar float64) (int64, error) {
	v, err := ToPositiveBaseUnits(hbar, HbarDecimals)
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() {
		return 0, fmt.Errorf("amount %s HBAR is out of range", FormatHuman(hbar))
	}
	return v.Int64(), nil
}

// FromBaseUnits renders base units as a human decimal string without
// trailing zeros, e.g. (150, 2) -> "1.5".
func FromBaseUnits(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}
	if decimals <= 0 {
		return value.String()
	}
	neg := value.Sign() < 0
	digits := new(big.Int).Abs(value).String()
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	whole, frac := digits[:len(digits)-decimals], strings.TrimRight(digits[len(digits)-decimals:], "0")
	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// TinybarsToHbar renders tinybars as HBAR.
func TinybarsToHbar(tinybars int64) string {
	return FromBaseUnits(big.NewInt(tinybars), HbarDecimals)
}

// FormatHuman renders a float the way a user typed it.
func FormatHuman(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
