package services

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Nights counts the nights between check-in and check-out, rounding a
// partial day up. A stay must be at least one night.
func Nights(checkIn, checkOut time.Time) (int, error) {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0, validationError("error.invalidDates", "check_out_date must be after check_in_date")
	}
	return int(math.Ceil(d.Hours() / 24)), nil
}

// TotalAmount is rate × nights rounded to cents.
func TotalAmount(rate decimal.Decimal, nights int) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(nights))).Round(2)
}

// validRate rejects negative rates and rates finer than a cent, which
// would make rate × nights differ from the stored total.
func validRate(rate decimal.Decimal, field string) error {
	if rate.IsNegative() {
		return validationError("error.invalidRate", field+" must not be negative")
	}
	if rate.Exponent() < -2 && !rate.Equal(rate.Round(2)) {
		return validationError("error.invalidRate", field+" must have at most 2 decimal places")
	}
	return nil
}

// LineTax is the tax on one invoice line for a percentage rate.
func LineTax(lineTotal, taxRate decimal.Decimal) decimal.Decimal {
	return lineTotal.Mul(taxRate).Div(hundred).Round(2)
}
