package models

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Column limits of the Postgres schema. Inputs are checked against them so
// both storage backends accept and reject the same values.
const (
	MaxNameLength          = 100
	MaxMerchantLength      = 255
	MaxPaymentMethodLength = 50
	MoneyDecimalPlaces     = 2
)

// MaxMoney is the largest value a NUMERIC(14, 2) column holds.
var MaxMoney = decimal.RequireFromString("999999999999.99")

// ValidateMoney rejects values with more than two decimal places or above
// MaxMoney. Sign checks are left to the caller.
func ValidateMoney(field string, v decimal.Decimal) error {
	if !v.Equal(v.Truncate(MoneyDecimalPlaces)) {
		return NewValidationError(field, "must have at most 2 decimal places")
	}
	if v.Abs().GreaterThan(MaxMoney) {
		return NewValidationError(field, fmt.Sprintf("must not exceed %s", MaxMoney.StringFixed(MoneyDecimalPlaces)))
	}
	return nil
}

// ValidateLength counts characters, not bytes, like VARCHAR(n).
func ValidateLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return NewValidationError(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return nil
}
