package ta

import (
	"cmp"
	"math"

	"github.com/limaJavier/tacos/pkg/arithmetic"
	"github.com/limaJavier/tacos/pkg/automata"
)

// RegionIndex identifies a clock region: 2n stands for the integral value n, 2n+1 for the
// open interval (n, n+1) and 2K+1 for every value greater than K
type RegionIndex = uint

// ConstraintBoundType selects which side of a region is turned into clock constraints
type ConstraintBoundType int

const (
	LowerBound ConstraintBoundType = iota
	UpperBound
	BothBounds
)

// Regions computes region indexes with respect to a largest constant K
type Regions struct {
	largestConstant uint
}

func NewRegions(largestConstant uint) Regions {
	return Regions{largestConstant: largestConstant}
}

func (regions Regions) LargestConstant() uint {
	return regions.largestConstant
}

func (regions Regions) MaxRegionIndex() RegionIndex {
	return 2*regions.largestConstant + 1
}

func (regions Regions) RegionIndex(valuation automata.Time) RegionIndex {
	if arithmetic.IsApproxInteger(valuation) {
		integral := uint(math.Round(valuation))
		if integral > regions.largestConstant {
			return regions.MaxRegionIndex()
		}
		return 2 * integral
	}
	if valuation > automata.Time(regions.largestConstant) {
		return regions.MaxRegionIndex()
	}
	return 2*uint(math.Floor(valuation)) + 1
}

// MaximalRegionIndex returns the largest region index relevant for the automaton's guards
func MaximalRegionIndex[L, A cmp.Ordered](automaton *TimedAutomaton[L, A]) RegionIndex {
	return NewRegions(automaton.LargestConstant()).MaxRegionIndex()
}

// RegionCandidate returns a representative valuation of the region
func RegionCandidate(index RegionIndex) automata.Time {
	if index%2 == 0 {
		return automata.Time(index / 2)
	}
	return automata.Time(index/2) + 0.5
}

// ClockConstraintsFromRegionIndex describes a region (or the half-space above/below it) as
// a conjunction of clock constraints
func ClockConstraintsFromRegionIndex(index, maxIndex RegionIndex, bound ConstraintBoundType) []automata.ClockConstraint {
	constraints := make([]automata.ClockConstraint, 0, 2)
	integral := index / 2

	if index%2 == 0 {
		switch bound {
		case BothBounds:
			constraints = append(constraints, automata.ClockConstraint{Operator: automata.Equal, Comparand: integral})
		case LowerBound:
			if integral > 0 {
				constraints = append(constraints, automata.ClockConstraint{Operator: automata.GreaterEqual, Comparand: integral})
			}
		case UpperBound:
			if integral == 0 {
				constraints = append(constraints, automata.ClockConstraint{Operator: automata.Equal, Comparand: 0})
			} else {
				constraints = append(constraints, automata.ClockConstraint{Operator: automata.LessEqual, Comparand: integral})
			}
		}
		return constraints
	}

	if bound == LowerBound || bound == BothBounds {
		constraints = append(constraints, automata.ClockConstraint{Operator: automata.Greater, Comparand: integral})
	}
	if (bound == UpperBound || bound == BothBounds) && index < maxIndex {
		constraints = append(constraints, automata.ClockConstraint{Operator: automata.Less, Comparand: integral + 1})
	}
	return constraints
}
