package search

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/limaJavier/tacos/pkg/arithmetic"
	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/limaJavier/tacos/pkg/automata/ata"
	"github.com/limaJavier/tacos/pkg/automata/ta"
	"github.com/samber/lo"
)

var ErrPlantWithoutClocks = errors.New("canonical words require a plant with at least one clock")

type InvalidCanonicalWordError struct {
	Word   string
	Reason string
}

func (err InvalidCanonicalWordError) Error() string {
	return fmt.Sprintf("invalid canonical word %v: %v", err.Word, err.Reason)
}

type SymbolKind int

const (
	PlantSymbol SymbolKind = iota
	AutomatonSymbol
)

// RegionSymbol is either a plant clock (location, clock, region) or an automaton state
// (location, region). Plant symbols sort before automaton symbols
type RegionSymbol[L cmp.Ordered] struct {
	Kind     SymbolKind
	Location L
	Clock    string
	Formula  string
	Region   ta.RegionIndex
}

func PlantRegionState[L cmp.Ordered](location L, clock string, region ta.RegionIndex) RegionSymbol[L] {
	return RegionSymbol[L]{Kind: PlantSymbol, Location: location, Clock: clock, Region: region}
}

func AutomatonRegionState[L cmp.Ordered](formula string, region ta.RegionIndex) RegionSymbol[L] {
	return RegionSymbol[L]{Kind: AutomatonSymbol, Formula: formula, Region: region}
}

func (symbol RegionSymbol[L]) IsPlantSymbol() bool {
	return symbol.Kind == PlantSymbol
}

func (symbol RegionSymbol[L]) Compare(other RegionSymbol[L]) int {
	if c := cmp.Compare(symbol.Kind, other.Kind); c != 0 {
		return c
	}
	if symbol.Kind == PlantSymbol {
		if c := cmp.Compare(symbol.Location, other.Location); c != 0 {
			return c
		}
		if c := cmp.Compare(symbol.Clock, other.Clock); c != 0 {
			return c
		}
	} else if c := cmp.Compare(symbol.Formula, other.Formula); c != 0 {
		return c
	}
	return cmp.Compare(symbol.Region, other.Region)
}

func (symbol RegionSymbol[L]) incremented() RegionSymbol[L] {
	symbol.Region++
	return symbol
}

func (symbol RegionSymbol[L]) String() string {
	if symbol.Kind == PlantSymbol {
		return fmt.Sprintf("(%v, %s, %d)", symbol.Location, symbol.Clock, symbol.Region)
	}
	return fmt.Sprintf("(%s, %d)", symbol.Formula, symbol.Region)
}

// Partition is a sorted set of symbols sharing the same fractional part
type Partition[L cmp.Ordered] []RegionSymbol[L]

func NewPartition[L cmp.Ordered](symbols ...RegionSymbol[L]) Partition[L] {
	partition := slices.Clone(Partition[L](symbols))
	slices.SortFunc(partition, RegionSymbol[L].Compare)
	return slices.CompactFunc(partition, func(a, b RegionSymbol[L]) bool { return a.Compare(b) == 0 })
}

func (partition Partition[L]) Contains(symbol RegionSymbol[L]) bool {
	_, found := slices.BinarySearchFunc(partition, symbol, RegionSymbol[L].Compare)
	return found
}

func (partition Partition[L]) IsSubsetOf(other Partition[L]) bool {
	return lo.EveryBy(partition, other.Contains)
}

func (partition Partition[L]) Compare(other Partition[L]) int {
	return slices.CompareFunc(partition, other, RegionSymbol[L].Compare)
}

func (partition Partition[L]) String() string {
	return "{" + strings.Join(lo.Map(partition, func(symbol RegionSymbol[L], _ int) string { return symbol.String() }), ", ") + "}"
}

// CanonicalWord abstracts a plant configuration together with an automaton configuration.
// Partitions are ordered by increasing fractional part; symbols whose region is beyond the
// largest constant are gathered in one trailing partition
type CanonicalWord[L cmp.Ordered] []Partition[L]

func (word CanonicalWord[L]) Compare(other CanonicalWord[L]) int {
	return slices.CompareFunc(word, other, Partition[L].Compare)
}

func (word CanonicalWord[L]) Equal(other CanonicalWord[L]) bool {
	return word.Compare(other) == 0
}

func (word CanonicalWord[L]) String() string {
	return "[" + strings.Join(lo.Map(word, func(partition Partition[L], _ int) string { return partition.String() }), ", ") + "]"
}

// GetCanonicalWord abstracts the pair of configurations into regions
func GetCanonicalWord[L cmp.Ordered](plantConfiguration ta.Configuration[L], automatonConfiguration ata.Configuration[string], largestConstant uint) (CanonicalWord[L], error) {
	if len(plantConfiguration.ClockValuations) == 0 {
		return nil, ErrPlantWithoutClocks
	}

	type entry struct {
		symbol   RegionSymbol[L]
		fraction float64
	}
	regions := ta.NewRegions(largestConstant)
	entries := make([]entry, 0, len(plantConfiguration.ClockValuations)+len(automatonConfiguration))
	maxed := make([]RegionSymbol[L], 0)
	add := func(symbol RegionSymbol[L], valuation automata.Time) {
		if symbol.Region == regions.MaxRegionIndex() {
			maxed = append(maxed, symbol)
		} else {
			entries = append(entries, entry{symbol: symbol, fraction: arithmetic.FractionalPart(valuation)})
		}
	}

	for _, clock := range plantConfiguration.ClockValuations.Names() {
		valuation := plantConfiguration.ClockValuations[clock].Valuation()
		add(PlantRegionState(plantConfiguration.Location, clock, regions.RegionIndex(valuation)), valuation)
	}
	for _, state := range automatonConfiguration {
		add(AutomatonRegionState[L](state.Location, regions.RegionIndex(state.Valuation)), state.Valuation)
	}

	slices.SortStableFunc(entries, func(a, b entry) int { return cmp.Compare(a.fraction, b.fraction) })
	word := make(CanonicalWord[L], 0)
	var current []RegionSymbol[L]
	for i, entry := range entries {
		if i > 0 && !arithmetic.ApproxEqual(entry.fraction, entries[i-1].fraction) {
			word = append(word, NewPartition(current...))
			current = nil
		}
		current = append(current, entry.symbol)
	}
	if len(current) > 0 {
		word = append(word, NewPartition(current...))
	}
	if len(maxed) > 0 {
		word = append(word, NewPartition(maxed...))
	}

	if err := ValidateCanonicalWord(word, largestConstant); err != nil {
		return nil, err
	}
	return word, nil
}

// ValidateCanonicalWord checks the structural invariants of a canonical word. Symbols in the
// maximal region 2K+1 may only occur in the last partition, which then holds nothing else
func ValidateCanonicalWord[L cmp.Ordered](word CanonicalWord[L], largestConstant uint) error {
	invalid := func(reason string) error {
		return InvalidCanonicalWordError{Word: word.String(), Reason: reason}
	}

	if len(word) == 0 {
		return invalid("word is empty")
	}

	maxRegion := ta.NewRegions(largestConstant).MaxRegionIndex()
	clocks := make(map[string]bool)
	var plantLocation *L
	for i, partition := range word {
		if len(partition) == 0 {
			return invalid(fmt.Sprintf("partition %d is empty", i))
		}
		maxed := lo.CountBy(partition, func(symbol RegionSymbol[L]) bool { return symbol.Region >= maxRegion })
		if lo.SomeBy(partition, func(symbol RegionSymbol[L]) bool { return symbol.Region > maxRegion }) {
			return invalid(fmt.Sprintf("partition %d has region indexes above %d", i, maxRegion))
		} else if maxed > 0 && (i != len(word)-1 || maxed != len(partition)) {
			return invalid(fmt.Sprintf("partition %d mixes the maximal region with other regions or is not the last partition", i))
		}
		even := partition[0].Region%2 == 0
		if lo.SomeBy(partition, func(symbol RegionSymbol[L]) bool { return (symbol.Region%2 == 0) != even }) {
			return invalid(fmt.Sprintf("partition %d has both even and odd region indexes", i))
		} else if even && i > 0 {
			return invalid(fmt.Sprintf("partition %d has even region indexes but is not the first partition", i))
		}

		for _, symbol := range partition {
			if !symbol.IsPlantSymbol() {
				continue
			}
			if clocks[symbol.Clock] {
				return invalid(fmt.Sprintf("clock %v occurs more than once", symbol.Clock))
			}
			clocks[symbol.Clock] = true
			if plantLocation != nil && *plantLocation != symbol.Location {
				return invalid("plant symbols disagree on the location")
			}
			plantLocation = &symbol.Location
		}
	}
	return nil
}

func IsValidCanonicalWord[L cmp.Ordered](word CanonicalWord[L], largestConstant uint) bool {
	return ValidateCanonicalWord(word, largestConstant) == nil
}

// RegA keeps the plant symbols of the word only
func RegA[L cmp.Ordered](word CanonicalWord[L]) CanonicalWord[L] {
	return lo.FilterMap(word, func(partition Partition[L], _ int) (Partition[L], bool) {
		plant := lo.Filter(partition, func(symbol RegionSymbol[L], _ int) bool { return symbol.IsPlantSymbol() })
		return plant, len(plant) > 0
	})
}

// Candidate picks a pair of configurations represented by the word. Partition i of a word
// with n partitions gets the fractional part (i+1)/(n+1), integral regions keep their value
func Candidate[L cmp.Ordered](word CanonicalWord[L]) (ta.Configuration[L], ata.Configuration[string]) {
	plantConfiguration := ta.Configuration[L]{ClockValuations: make(automata.ClockSetValuation)}
	automatonStates := make([]ata.State[string], 0)
	for i, partition := range word {
		fraction := float64(i+1) / float64(len(word)+1)
		for _, symbol := range partition {
			valuation := automata.Time(symbol.Region / 2)
			if symbol.Region%2 == 1 {
				valuation += fraction
			}
			if symbol.IsPlantSymbol() {
				plantConfiguration.Location = symbol.Location
				plantConfiguration.ClockValuations[symbol.Clock] = automata.NewClock(valuation)
			} else {
				automatonStates = append(automatonStates, ata.State[string]{Location: symbol.Formula, Valuation: valuation})
			}
		}
	}
	return plantConfiguration, ata.NewConfiguration(automatonStates...)
}

// containsAutomatonLocation reports whether some automaton symbol of the word is in a location
// matching the predicate
func containsAutomatonLocation[L cmp.Ordered](word CanonicalWord[L], predicate func(location string) bool) bool {
	return lo.SomeBy(word, func(partition Partition[L]) bool {
		return lo.SomeBy(partition, func(symbol RegionSymbol[L]) bool {
			return !symbol.IsPlantSymbol() && predicate(symbol.Formula)
		})
	})
}

// sortWords sorts a set of canonical words and drops duplicates
func sortWords[L cmp.Ordered](words []CanonicalWord[L]) []CanonicalWord[L] {
	sorted := slices.Clone(words)
	slices.SortFunc(sorted, CanonicalWord[L].Compare)
	return slices.CompactFunc(sorted, CanonicalWord[L].Equal)
}

func wordsKey[L cmp.Ordered](words []CanonicalWord[L]) string {
	return strings.Join(lo.Map(words, func(word CanonicalWord[L], _ int) string { return word.String() }), "; ")
}
