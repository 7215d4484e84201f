package ata

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/samber/lo"
)

// State is a location of the alternating automaton together with the valuation of its
// (single) clock
type State[L cmp.Ordered] struct {
	Location  L
	Valuation automata.Time
}

func (state State[L]) Compare(other State[L]) int {
	if c := cmp.Compare(state.Location, other.Location); c != 0 {
		return c
	}
	return cmp.Compare(state.Valuation, other.Valuation)
}

func (state State[L]) String() string {
	return fmt.Sprintf("(%v, %g)", state.Location, state.Valuation)
}

// Configuration is a set of states kept sorted and without duplicates
type Configuration[L cmp.Ordered] []State[L]

func NewConfiguration[L cmp.Ordered](states ...State[L]) Configuration[L] {
	configuration := slices.Clone(Configuration[L](states))
	slices.SortFunc(configuration, State[L].Compare)
	return slices.CompactFunc(configuration, func(a, b State[L]) bool { return a.Compare(b) == 0 })
}

func (configuration Configuration[L]) Union(other Configuration[L]) Configuration[L] {
	return NewConfiguration(append(slices.Clone(configuration), other...)...)
}

func (configuration Configuration[L]) Contains(state State[L]) bool {
	_, found := slices.BinarySearchFunc(configuration, state, State[L].Compare)
	return found
}

func (configuration Configuration[L]) IsSubsetOf(other Configuration[L]) bool {
	return lo.EveryBy(configuration, other.Contains)
}

func (configuration Configuration[L]) Compare(other Configuration[L]) int {
	return slices.CompareFunc(configuration, other, State[L].Compare)
}

// Locations returns the distinct locations occurring in the configuration
func (configuration Configuration[L]) Locations() []L {
	return lo.Uniq(lo.Map(configuration, func(state State[L], _ int) L { return state.Location }))
}

func (configuration Configuration[L]) String() string {
	return "{" + strings.Join(lo.Map(configuration, func(state State[L], _ int) string { return state.String() }), ", ") + "}"
}

// SortConfigurations sorts a set of configurations and drops duplicates
func SortConfigurations[L cmp.Ordered](configurations []Configuration[L]) []Configuration[L] {
	sorted := slices.Clone(configurations)
	slices.SortFunc(sorted, Configuration[L].Compare)
	return slices.CompactFunc(sorted, func(a, b Configuration[L]) bool { return a.Compare(b) == 0 })
}
