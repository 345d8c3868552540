// Package breakeven simulates when monthly sales cover fixed costs.
package breakeven

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
)

const (
	// DefaultSweepStep is the spacing between charted sales quantities.
	DefaultSweepStep = 50
	// DefaultSweepMax is the largest monthly quantity charted by default.
	DefaultSweepMax = 1000
	// DefaultOperatingDays is the number of shop days a month is spread over.
	DefaultOperatingDays = 25
)

var (
	// ErrNoBreakEven means the sales price does not exceed the unit cost, so
	// no sales volume ever covers the fixed cost.
	ErrNoBreakEven = errors.New("sales price must exceed unit cost to break even")

	// ErrInvalidSweep is returned for a negative sweep maximum or a
	// non-positive step.
	ErrInvalidSweep = errors.New("invalid sweep range")

	// ErrInvalidInput is returned for non-finite prices or costs.
	ErrInvalidInput = errors.New("invalid break-even input")
)

// Inputs are the operator's monthly assumptions.
type Inputs struct {
	SalesPrice float64
	UnitCost   float64
	FixedCost  float64
	SweepMax   int
	SweepStep  int
}

// Point is one sample of the revenue and total-cost lines.
type Point struct {
	Quantity  int
	Revenue   float64
	TotalCost float64
}

// Profit is revenue minus total cost at this quantity.
func (p Point) Profit() float64 {
	return p.Revenue - p.TotalCost
}

// Result is the outcome of a simulation with a reachable break-even point.
type Result struct {
	Inputs        Inputs
	ProfitPerUnit float64
	// BreakEvenQty is unrounded so it can be compared with the sweep range.
	BreakEvenQty float64
	// Unreachable is set when BreakEvenQty lies beyond SweepMax.
	Unreachable bool
}

// Simulate computes the break-even quantity for in.
func Simulate(in Inputs) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}

	profit := in.SalesPrice - in.UnitCost
	if profit <= 0 {
		return Result{}, fmt.Errorf("%w: price %v, cost %v", ErrNoBreakEven, in.SalesPrice, in.UnitCost)
	}

	qty := in.FixedCost / profit
	return Result{
		Inputs:        in,
		ProfitPerUnit: profit,
		BreakEvenQty:  qty,
		Unreachable:   qty > float64(in.SweepMax),
	}, nil
}

func (in Inputs) validate() error {
	for _, v := range []float64{in.SalesPrice, in.UnitCost, in.FixedCost} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, v)
		}
	}
	if in.SweepMax < 0 {
		return fmt.Errorf("%w: max %d must not be negative", ErrInvalidSweep, in.SweepMax)
	}
	if in.SweepStep <= 0 {
		return fmt.Errorf("%w: step %d must be greater than 0", ErrInvalidSweep, in.SweepStep)
	}
	return nil
}

// Series yields the sweep for the simulated inputs.
func (r Result) Series() iter.Seq[Point] {
	return Sweep(r.Inputs)
}

// Points collects Series into a slice.
func (r Result) Points() []Point {
	return slices.Collect(r.Series())
}

// UnitsToSell is the smallest whole number of units that breaks even.
func (r Result) UnitsToSell() int {
	return int(math.Ceil(r.BreakEvenQty))
}

// DailyTarget spreads the break-even quantity over operating days.
func (r Result) DailyTarget(operatingDays int) float64 {
	if operatingDays <= 0 {
		return 0
	}
	return r.BreakEvenQty / float64(operatingDays)
}

// Sweep yields a point for quantity 0, step, 2*step, ... up to and including
// the last multiple of step not above SweepMax. It does not require a
// positive margin, so loss-making inputs can still be charted. Each call to
// the returned sequence starts over from zero; an invalid sweep yields
// nothing.
func Sweep(in Inputs) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		if in.SweepStep <= 0 || in.SweepMax < 0 {
			return
		}
		for q := 0; ; q += in.SweepStep {
			p := Point{
				Quantity:  q,
				Revenue:   in.SalesPrice * float64(q),
				TotalCost: in.FixedCost + in.UnitCost*float64(q),
			}
			if !yield(p) {
				return
			}
			// Checked before adding so q cannot wrap past math.MaxInt.
			if q > in.SweepMax-in.SweepStep {
				return
			}
		}
	}
}
