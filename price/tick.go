// Package price normalizes order prices to the tick grid the exchange
// accepts: at most five significant figures, and never more decimal places
// than the market allows.
package price

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidPrice = errors.New("invalid price")

// Side is the book side an order rests on. It is informational for
// rounding: RoundBySide takes its direction from the roundUp flag alone.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// Tick is the price grid of a single market. The zero value allows no
// decimal places; construct with ForPerp or ForSpot.
type Tick struct {
	maxDecimals int
}

// ForPerp returns the tick of a perpetual market with the given size
// decimals. Perps allow 6 - szDecimals price decimals.
func ForPerp(szDecimals int) Tick {
	return Tick{maxDecimals: clampMin(6-szDecimals, 0)}
}

// ForSpot returns the tick of a spot market with the given size decimals.
// Spot markets allow 8 - szDecimals price decimals.
func ForSpot(szDecimals int) Tick {
	return Tick{maxDecimals: clampMin(8-szDecimals, 0)}
}

// NewTick builds a tick directly from a decimal-place budget.
func NewTick(maxDecimals int) Tick {
	return Tick{maxDecimals: clampMin(maxDecimals, 0)}
}

func (t Tick) MaxDecimals() int { return t.maxDecimals }

// Decimals returns how many decimal places px may keep on this tick: the
// number that leaves at most five significant figures, capped at the
// market budget. Prices that are zero, negative or non-finite are
// rejected.
func (t Tick) Decimals(px float64) (int, error) {
	if err := validate(px); err != nil {
		return 0, err
	}

	integerDigits := int(math.Floor(math.Log10(px))) + 1
	d := 5 - integerDigits
	if d < 0 {
		d = 0
	}
	if d > t.maxDecimals {
		d = t.maxDecimals
	}

	return d, nil
}

// Round snaps px to the nearest tick, with halves rounded away from zero.
func (t Tick) Round(px float64) (float64, error) {
	d, err := t.Decimals(px)
	if err != nil {
		return 0, err
	}

	scale := math.Pow(10, float64(d))
	return math.Round(px*scale) / scale, nil
}

// RoundBySide snaps px to the tick in the direction given by roundUp:
// to the next tick above when true, below when false. A price already on
// the grid is returned unchanged. The side does not influence the
// direction; callers quoting aggressively on the ask typically pass
// roundUp=true themselves.
func (t Tick) RoundBySide(side Side, px float64, roundUp bool) (float64, error) {
	_ = side

	d, err := t.Decimals(px)
	if err != nil {
		return 0, err
	}

	scale := math.Pow(10, float64(d))
	scaled := px * scale

	// Binary floats put on-grid prices a hair off an integer after
	// scaling; snap those before taking the directional step.
	if nearest := math.Round(scaled); math.Abs(scaled-nearest) < 1e-9 {
		scaled = nearest
	} else if roundUp {
		scaled = math.Ceil(scaled)
	} else {
		scaled = math.Floor(scaled)
	}

	return scaled / scale, nil
}

func validate(px float64) error {
	if math.IsNaN(px) || math.IsInf(px, 0) || px <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, px)
	}
	return nil
}

func clampMin(v, minimum int) int {
	if v < minimum {
		return minimum
	}
	return v
}
