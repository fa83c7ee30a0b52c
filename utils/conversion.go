package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ErrAmountOutOfRange is returned for amounts that do not fit in int64 pence.
var ErrAmountOutOfRange = errors.New("amount out of range")

// ToMinorUnits converts a major-unit amount (pounds) to minor units (pence),
// rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(hundred).Round(0).BigInt()
	if !minor.IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, amount)
	}
	return minor.Int64(), nil
}

var currencySymbols = map[string]string{
	"gbp": "£",
	"usd": "$",
	"eur": "€",
	"ngn": "₦",
}

// FormatMoney renders an amount for humans, e.g. "£225.25".
func FormatMoney(amount decimal.Decimal, currency string) string {
	if sym, ok := currencySymbols[strings.ToLower(currency)]; ok {
		return sym + amount.StringFixed(2)
	}
	return fmt.Sprintf("%s %s", amount.StringFixed(2), strings.ToUpper(currency))
}
