package ta

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/samber/lo"
)

type Transition[L, A cmp.Ordered] struct {
	Source L
	Symbol A
	Target L
	Guard  []automata.AtomicClockConstraint
	Resets []string
}

func (transition Transition[L, A]) IsEnabled(configuration Configuration[L]) bool {
	return transition.Source == configuration.Location && automata.IsGuardSatisfied(transition.Guard, configuration.ClockValuations)
}

func (transition Transition[L, A]) String() string {
	guard := lo.Map(transition.Guard, func(constraint automata.AtomicClockConstraint, _ int) string { return constraint.String() })
	return fmt.Sprintf("%v → %v/[%s]/{%s} → %v", transition.Source, transition.Symbol, strings.Join(guard, " ∧ "), strings.Join(transition.Resets, ", "), transition.Target)
}

// Configuration is a location together with the valuation of every clock
type Configuration[L cmp.Ordered] struct {
	Location        L
	ClockValuations automata.ClockSetValuation
}

func (configuration Configuration[L]) String() string {
	return fmt.Sprintf("(%v, %v)", configuration.Location, configuration.ClockValuations)
}

func (configuration Configuration[L]) Compare(other Configuration[L]) int {
	if c := cmp.Compare(configuration.Location, other.Location); c != 0 {
		return c
	}
	return strings.Compare(configuration.ClockValuations.String(), other.ClockValuations.String())
}

// TimedAutomaton is a finite automaton extended with real-valued clocks. L is the location
// type and A the type of the actions
type TimedAutomaton[L, A cmp.Ordered] struct {
	locations       map[L]bool
	finalLocations  map[L]bool
	alphabet        map[A]bool
	clocks          map[string]bool
	initialLocation L
	transitions     map[L][]Transition[L, A]
}

func NewTimedAutomaton[L, A cmp.Ordered](locations []L, alphabet []A, initialLocation L, finalLocations []L, clocks []string, transitions []Transition[L, A]) (*TimedAutomaton[L, A], error) {
	automaton := &TimedAutomaton[L, A]{
		locations:       lo.SliceToMap(locations, func(location L) (L, bool) { return location, true }),
		finalLocations:  make(map[L]bool),
		alphabet:        lo.SliceToMap(alphabet, func(symbol A) (A, bool) { return symbol, true }),
		clocks:          lo.SliceToMap(clocks, func(clock string) (string, bool) { return clock, true }),
		initialLocation: initialLocation,
		transitions:     make(map[L][]Transition[L, A]),
	}

	if !automaton.locations[initialLocation] {
		return nil, automata.InvalidLocationError{Location: fmt.Sprint(initialLocation)}
	}
	for _, location := range finalLocations {
		if !automaton.locations[location] {
			return nil, automata.InvalidLocationError{Location: fmt.Sprint(location)}
		}
		automaton.finalLocations[location] = true
	}
	for _, transition := range transitions {
		if err := automaton.AddTransition(transition); err != nil {
			return nil, err
		}
	}
	return automaton, nil
}

func (automaton *TimedAutomaton[L, A]) AddLocation(location L) {
	automaton.locations[location] = true
}

// AddFinalLocation adds a location (if needed) and marks it as final
func (automaton *TimedAutomaton[L, A]) AddFinalLocation(location L) {
	automaton.locations[location] = true
	automaton.finalLocations[location] = true
}

func (automaton *TimedAutomaton[L, A]) AddAction(action A) {
	automaton.alphabet[action] = true
}

func (automaton *TimedAutomaton[L, A]) AddClock(clock string) {
	automaton.clocks[clock] = true
}

// AddTransition validates the transition against the declared locations, actions and clocks
// before adding it
func (automaton *TimedAutomaton[L, A]) AddTransition(transition Transition[L, A]) error {
	if !automaton.locations[transition.Source] {
		return automata.InvalidLocationError{Location: fmt.Sprint(transition.Source)}
	} else if !automaton.locations[transition.Target] {
		return automata.InvalidLocationError{Location: fmt.Sprint(transition.Target)}
	} else if !automaton.alphabet[transition.Symbol] {
		return automata.InvalidSymbolError{Symbol: fmt.Sprint(transition.Symbol)}
	}

	for _, constraint := range transition.Guard {
		if !automaton.clocks[constraint.Clock] {
			return automata.InvalidClockError{Clock: constraint.Clock}
		} else if !constraint.Constraint.Operator.IsValid() {
			return automata.InvalidClockComparisonOperatorError{Operator: constraint.Constraint.Operator.String()}
		}
	}
	for _, clock := range transition.Resets {
		if !automaton.clocks[clock] {
			return automata.InvalidClockError{Clock: clock}
		}
	}

	automaton.transitions[transition.Source] = append(automaton.transitions[transition.Source], transition)
	return nil
}

func (automaton *TimedAutomaton[L, A]) InitialLocation() L {
	return automaton.initialLocation
}

func (automaton *TimedAutomaton[L, A]) Locations() []L {
	return slices.Sorted(maps.Keys(automaton.locations))
}

func (automaton *TimedAutomaton[L, A]) FinalLocations() []L {
	return slices.Sorted(maps.Keys(automaton.finalLocations))
}

func (automaton *TimedAutomaton[L, A]) Alphabet() []A {
	return slices.Sorted(maps.Keys(automaton.alphabet))
}

func (automaton *TimedAutomaton[L, A]) Clocks() []string {
	return slices.Sorted(maps.Keys(automaton.clocks))
}

// Transitions returns every transition grouped by source location
func (automaton *TimedAutomaton[L, A]) Transitions() []Transition[L, A] {
	return lo.FlatMap(slices.Sorted(maps.Keys(automaton.transitions)), func(source L, _ int) []Transition[L, A] {
		return automaton.transitions[source]
	})
}

func (automaton *TimedAutomaton[L, A]) IsFinalLocation(location L) bool {
	return automaton.finalLocations[location]
}

func (automaton *TimedAutomaton[L, A]) InitialConfiguration() Configuration[L] {
	return Configuration[L]{
		Location:        automaton.initialLocation,
		ClockValuations: automata.NewClockSetValuation(automaton.Clocks()),
	}
}

func (automaton *TimedAutomaton[L, A]) IsAcceptingConfiguration(configuration Configuration[L]) bool {
	return automaton.finalLocations[configuration.Location]
}

func (automaton *TimedAutomaton[L, A]) EnabledTransitions(configuration Configuration[L]) []Transition[L, A] {
	return lo.Filter(automaton.transitions[configuration.Location], func(transition Transition[L, A], _ int) bool {
		return transition.IsEnabled(configuration)
	})
}

// MakeSymbolStep returns every configuration reachable by taking an enabled transition
// labeled with symbol, sorted and without duplicates
func (automaton *TimedAutomaton[L, A]) MakeSymbolStep(configuration Configuration[L], symbol A) []Configuration[L] {
	successors := make([]Configuration[L], 0)
	for _, transition := range automaton.EnabledTransitions(configuration) {
		if transition.Symbol != symbol {
			continue
		}
		valuations := configuration.ClockValuations.Clone()
		for _, clock := range transition.Resets {
			valuations[clock] = automata.Clock{}
		}
		successors = append(successors, Configuration[L]{Location: transition.Target, ClockValuations: valuations})
	}

	slices.SortFunc(successors, Configuration[L].Compare)
	return slices.CompactFunc(successors, func(a, b Configuration[L]) bool { return a.Compare(b) == 0 })
}

// AcceptsWord reports whether some run over the timed word ends in a final location
func (automaton *TimedAutomaton[L, A]) AcceptsWord(word automata.TimedWord[A]) (bool, error) {
	if err := word.Validate(); err != nil {
		return false, err
	}

	configurations := []Configuration[L]{automaton.InitialConfiguration()}
	var lastTime automata.Time
	for _, timedSymbol := range word {
		delta := timedSymbol.Time - lastTime
		lastTime = timedSymbol.Time

		next := make([]Configuration[L], 0)
		for _, configuration := range configurations {
			ticked := Configuration[L]{Location: configuration.Location, ClockValuations: configuration.ClockValuations.Ticked(delta)}
			next = append(next, automaton.MakeSymbolStep(ticked, timedSymbol.Symbol)...)
		}
		if len(next) == 0 {
			return false, nil
		}
		configurations = next
	}

	return lo.SomeBy(configurations, automaton.IsAcceptingConfiguration), nil
}

// LargestConstant returns the largest constant any guard compares against
func (automaton *TimedAutomaton[L, A]) LargestConstant() uint {
	return lo.Reduce(automaton.Transitions(), func(largest uint, transition Transition[L, A], _ int) uint {
		return max(largest, automata.LargestComparand(transition.Guard))
	}, 0)
}

func (automaton *TimedAutomaton[L, A]) String() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Alphabet: %v, initial location: %v, final locations: %v\n", automaton.Alphabet(), automaton.initialLocation, automaton.FinalLocations())
	for _, transition := range automaton.Transitions() {
		builder.WriteString(transition.String())
		builder.WriteString("\n")
	}
	return builder.String()
}
