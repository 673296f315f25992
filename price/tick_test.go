package price

import (
	"errors"
	"math"
	"testing"
)

func TestForPerpForSpot(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		tick Tick
		want int
	}{
		{name: "btc perp", tick: ForPerp(5), want: 1},
		{name: "sol perp", tick: ForPerp(2), want: 4},
		{name: "whole size perp", tick: ForPerp(0), want: 6},
		{name: "oversized perp clamps to zero", tick: ForPerp(7), want: 0},
		{name: "spot", tick: ForSpot(2), want: 6},
		{name: "whole size spot", tick: ForSpot(0), want: 8},
		{name: "direct", tick: NewTick(3), want: 3},
		{name: "direct negative clamps", tick: NewTick(-1), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tick.MaxDecimals(); got != tt.want {
				t.Fatalf("MaxDecimals() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecimals(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		tick Tick
		px   float64
		want int
	}{
		{name: "five integer digits", tick: ForPerp(5), px: 93231.23, want: 0},
		{name: "capped by market budget", tick: ForPerp(5), px: 1.2345, want: 1},
		{name: "three integer digits", tick: ForPerp(2), px: 137.23025, want: 2},
		{name: "two integer digits", tick: ForPerp(2), px: 99.98241, want: 3},
		{name: "exact power of ten", tick: ForPerp(2), px: 100.0, want: 2},
		{name: "one", tick: ForPerp(0), px: 1.0, want: 4},
		{name: "sub one", tick: ForSpot(0), px: 0.00012345, want: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tick.Decimals(tt.px)
			if err != nil {
				t.Fatalf("Decimals(%v) unexpected error: %v", tt.px, err)
			}
			if got != tt.want {
				t.Fatalf("Decimals(%v) = %d, want %d", tt.px, got, tt.want)
			}
		})
	}
}

func TestRound(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		tick Tick
		px   float64
		want float64
	}{
		{name: "btc drops decimals", tick: ForPerp(5), px: 93231.23, want: 93231},
		{name: "sol keeps two decimals", tick: ForPerp(2), px: 137.23025, want: 137.23},
		{name: "sol keeps three decimals", tick: ForPerp(2), px: 99.98241, want: 99.982},
		{name: "half rounds away from zero", tick: ForPerp(5), px: 93231.5, want: 93232},
		{name: "exact power of ten unchanged", tick: ForPerp(2), px: 100.0, want: 100},
		{name: "tiny spot price", tick: ForSpot(0), px: 0.000123456789, want: 0.00012346},
	}

	const epsilon = 1e-12

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tick.Round(tt.px)
			if err != nil {
				t.Fatalf("Round(%v) unexpected error: %v", tt.px, err)
			}
			if math.Abs(got-tt.want) > epsilon {
				t.Fatalf("Round(%v) = %v, want %v", tt.px, got, tt.want)
			}

			// Rounding an already rounded price must be a no-op.
			again, err := tt.tick.Round(got)
			if err != nil {
				t.Fatalf("Round(Round(%v)) unexpected error: %v", tt.px, err)
			}
			if math.Abs(again-got) > epsilon {
				t.Fatalf("Round not idempotent: %v -> %v -> %v", tt.px, got, again)
			}
		})
	}
}

func TestRoundBySide(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		tick    Tick
		side    Side
		px      float64
		roundUp bool
		want    float64
	}{
		{name: "up crosses to next tick", tick: ForPerp(5), side: Ask, px: 93231.4, roundUp: true, want: 93232},
		{name: "down stays on lower tick", tick: ForPerp(5), side: Bid, px: 93231.4, roundUp: false, want: 93231},
		{name: "on grid unchanged going up", tick: ForPerp(5), side: Ask, px: 93231, roundUp: true, want: 93231},
		{name: "on grid unchanged going down", tick: ForPerp(5), side: Bid, px: 93231, roundUp: false, want: 93231},
		{name: "flag wins over side", tick: ForPerp(5), side: Bid, px: 93231.4, roundUp: true, want: 93232},
		{name: "decimal grid up", tick: ForPerp(2), side: Ask, px: 99.98241, roundUp: true, want: 99.983},
		{name: "decimal grid down", tick: ForPerp(2), side: Bid, px: 99.98241, roundUp: false, want: 99.982},
		{name: "on decimal grid unchanged", tick: ForPerp(2), side: Ask, px: 137.23, roundUp: true, want: 137.23},
	}

	const epsilon = 1e-12

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tick.RoundBySide(tt.side, tt.px, tt.roundUp)
			if err != nil {
				t.Fatalf("RoundBySide(%v) unexpected error: %v", tt.px, err)
			}
			if math.Abs(got-tt.want) > epsilon {
				t.Fatalf(
					"RoundBySide(%v, %v, up=%v) = %v, want %v",
					tt.side, tt.px, tt.roundUp, got, tt.want,
				)
			}
		})
	}
}

func TestInvalidPrices(t *testing.T) {
	t.Parallel()
	tick := ForPerp(2)

	for _, px := range []float64{0, -1.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := tick.Decimals(px); !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("Decimals(%v) error = %v, want ErrInvalidPrice", px, err)
		}
		if _, err := tick.Round(px); !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("Round(%v) error = %v, want ErrInvalidPrice", px, err)
		}
		if _, err := tick.RoundBySide(Bid, px, false); !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("RoundBySide(%v) error = %v, want ErrInvalidPrice", px, err)
		}
	}
}
