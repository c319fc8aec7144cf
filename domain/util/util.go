package util

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// AmountString renders an amount with thousands separators.
func AmountString(amount *uint256.Int) string {
	if amount == nil {
		return "0"
	}
	return humanize.BigComma(amount.ToBig())
}

func SharesString(shares *uint256.Int) string {
	return fmt.Sprintf("%v shares", AmountString(shares))
}

func PriceString(price decimal.Decimal) string {
	return price.StringFixed(6)
}
