package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FloatToWire renders a float in canonical wire form: a decimal string
// with at most 8 decimal places and no trailing zeros. Values that lose
// precision at 8 decimals are rejected rather than silently rounded.
func FloatToWire(x float64) (string, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "", fmt.Errorf("invalid float value: %v", x)
	}

	rounded := math.Round(x*1e8) / 1e8

	if math.Abs(x-rounded) > 1e-12 {
		return "", fmt.Errorf(
			"float precision loss: %v rounds to %v",
			x,
			rounded,
		)
	}

	formatted := strconv.FormatFloat(rounded, 'f', 8, 64)

	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}

	// Negative zero must not leak onto the wire.
	if formatted == "-0" {
		formatted = "0"
	}

	return formatted, nil
}

// FloatToInt scales x by 10^power and converts it to int64.
// Returns an error if the scaled value is not within 1e-3 of an integer,
// which prevents accidental precision loss when rounding.
func FloatToInt(x float64, power int64) (int64, error) {
	withDecimals := x * math.Pow10(int(power))

	rounded := math.Round(withDecimals)

	// Equivalent to: abs(round(with_decimals) - with_decimals) >= 1e-3
	if math.Abs(rounded-withDecimals) >= 1e-3 {
		return 0, errors.New("float_to_int causes rounding")
	}

	return int64(rounded), nil
}

// FloatToUsdInt converts a USD float to an int scaled by 1e6.
// Fails if the value cannot be represented precisely at 6 decimals.
func FloatToUsdInt(x float64) (int64, error) {
	return FloatToInt(x, 6)
}

// StringToFloat parses a decimal-string price back into a float64.
func StringToFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// RoundToSigfig rounds x to n significant figures.
func RoundToSigfig(x float64, n int64) float64 {
	if x == 0 {
		return 0
	}
	d := math.Ceil(math.Log10(math.Abs(x)))
	power := float64(n) - d
	factor := math.Pow(10, power)
	return math.Round(x*factor) / factor
}

// RoundToDecimals rounds x at ndigits decimal places using round half
// to even. Negative ndigits round to tens, hundreds and so on.
func RoundToDecimals(x float64, ndigits int64) float64 {
	if ndigits >= 0 {
		factor := math.Pow(10, float64(ndigits))
		return math.RoundToEven(x*factor) / factor
	}

	factor := math.Pow(10, float64(-ndigits))
	return math.RoundToEven(x/factor) * factor
}

// GetDex extracts the dex prefix from a "dex:COIN" symbol, or "" when
// the symbol has no prefix.
func GetDex(coin string) string {
	if i := strings.Index(coin, ":"); i != -1 {
		return coin[:i]
	}
	return ""
}
