package automata

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Time is a point (or a delay) on the dense time axis
type Time = float64

// Clock measures the time elapsed since its last reset
type Clock struct {
	valuation Time
}

func NewClock(valuation Time) Clock {
	return Clock{valuation: valuation}
}

func (clock *Clock) Tick(delta Time) {
	clock.valuation += delta
}

func (clock *Clock) Reset() {
	clock.valuation = 0
}

func (clock Clock) Valuation() Time {
	return clock.valuation
}

// ClockSetValuation maps clock names to clocks
type ClockSetValuation map[string]Clock

// NewClockSetValuation creates a valuation where every clock is 0
func NewClockSetValuation(clocks []string) ClockSetValuation {
	valuation := make(ClockSetValuation, len(clocks))
	for _, clock := range clocks {
		valuation[clock] = Clock{}
	}
	return valuation
}

func (valuation ClockSetValuation) Clone() ClockSetValuation {
	return maps.Clone(valuation)
}

// Ticked returns a copy of the valuation where every clock advanced by delta
func (valuation ClockSetValuation) Ticked(delta Time) ClockSetValuation {
	ticked := make(ClockSetValuation, len(valuation))
	for name, clock := range valuation {
		clock.Tick(delta)
		ticked[name] = clock
	}
	return ticked
}

// Names returns the clock names in ascending order
func (valuation ClockSetValuation) Names() []string {
	return slices.Sorted(maps.Keys(valuation))
}

func (valuation ClockSetValuation) String() string {
	parts := make([]string, 0, len(valuation))
	for _, name := range valuation.Names() {
		parts = append(parts, fmt.Sprintf("%s=%g", name, valuation[name].valuation))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
