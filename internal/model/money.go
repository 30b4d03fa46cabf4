package model

import (
	"math"
	"strconv"
)

// Cents is an amount in the currency's minor unit. All cart arithmetic is
// done in Cents; decimal values exist only at the JSON boundary.
type Cents int64

// FromMajor converts a decimal amount such as 12.5 to 1250 cents.
func FromMajor(amount float64) Cents {
	return Cents(math.Round(amount * 100))
}

func (c Cents) Major() float64 {
	return float64(c) / 100
}

func (c Cents) Mul(quantity int) Cents {
	return c * Cents(quantity)
}

// String renders the amount with two decimals, e.g. "12.34".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	frac := strconv.FormatInt(v%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(v/100, 10) + "." + frac
}
