package ata

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/samber/lo"
)

type Transition[L, S cmp.Ordered] struct {
	Source  L
	Symbol  S
	Formula Formula[L]
}

func (transition Transition[L, S]) String() string {
	return fmt.Sprintf("%v → %v → %v", transition.Source, transition.Symbol, transition.Formula)
}

type transitionKey[L, S cmp.Ordered] struct {
	source L
	symbol S
}

// AlternatingTimedAutomaton is a one-clock alternating timed automaton. Configurations are
// sets of states and a run accepts when every state of its last configuration is final
type AlternatingTimedAutomaton[L, S cmp.Ordered] struct {
	alphabet        map[S]bool
	initialLocation L
	finalLocations  map[L]bool
	transitions     map[transitionKey[L, S]]Transition[L, S]
	sinkLocation    *L
}

// NewAlternatingTimedAutomaton creates an automaton with at most one transition per
// (location, symbol). The optional sink location absorbs configurations without successors
// and must be neither initial, final nor the source of a transition
func NewAlternatingTimedAutomaton[L, S cmp.Ordered](alphabet []S, initialLocation L, finalLocations []L, transitions []Transition[L, S], sinkLocation *L) (*AlternatingTimedAutomaton[L, S], error) {
	automaton := &AlternatingTimedAutomaton[L, S]{
		alphabet:        lo.SliceToMap(alphabet, func(symbol S) (S, bool) { return symbol, true }),
		initialLocation: initialLocation,
		finalLocations:  lo.SliceToMap(finalLocations, func(location L) (L, bool) { return location, true }),
		transitions:     make(map[transitionKey[L, S]]Transition[L, S], len(transitions)),
		sinkLocation:    sinkLocation,
	}

	for _, transition := range transitions {
		if !automaton.alphabet[transition.Symbol] {
			return nil, automata.InvalidSymbolError{Symbol: fmt.Sprint(transition.Symbol)}
		}
		key := transitionKey[L, S]{source: transition.Source, symbol: transition.Symbol}
		if _, ok := automaton.transitions[key]; ok {
			return nil, fmt.Errorf("duplicate transition from %v with symbol %v", transition.Source, transition.Symbol)
		}
		if err := validateFormula(transition.Formula); err != nil {
			return nil, fmt.Errorf("invalid formula of transition %v: %w", transition, err)
		}
		if sinkLocation != nil && transition.Source == *sinkLocation {
			return nil, automata.InvalidLocationError{Location: fmt.Sprintf("sink location %v must not have outgoing transitions", *sinkLocation)}
		}
		automaton.transitions[key] = transition
	}

	if sinkLocation != nil {
		if *sinkLocation == initialLocation {
			return nil, automata.InvalidLocationError{Location: fmt.Sprintf("sink location %v must not be the initial location", *sinkLocation)}
		} else if automaton.finalLocations[*sinkLocation] {
			return nil, automata.InvalidLocationError{Location: fmt.Sprintf("sink location %v must not be final", *sinkLocation)}
		}
	}
	return automaton, nil
}

func (automaton *AlternatingTimedAutomaton[L, S]) Alphabet() []S {
	return slices.Sorted(maps.Keys(automaton.alphabet))
}

func (automaton *AlternatingTimedAutomaton[L, S]) InitialLocation() L {
	return automaton.initialLocation
}

func (automaton *AlternatingTimedAutomaton[L, S]) FinalLocations() []L {
	return slices.Sorted(maps.Keys(automaton.finalLocations))
}

// SinkLocation returns the sink location if the automaton has one
func (automaton *AlternatingTimedAutomaton[L, S]) SinkLocation() (L, bool) {
	if automaton.sinkLocation == nil {
		var zero L
		return zero, false
	}
	return *automaton.sinkLocation, true
}

// IsSinkLocation reports whether the location is the sink location of the automaton
func (automaton *AlternatingTimedAutomaton[L, S]) IsSinkLocation(location L) bool {
	return automaton.sinkLocation != nil && *automaton.sinkLocation == location
}

func (automaton *AlternatingTimedAutomaton[L, S]) Transitions() []Transition[L, S] {
	transitions := lo.Values(automaton.transitions)
	slices.SortFunc(transitions, func(a, b Transition[L, S]) int {
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
	return transitions
}

// Transition returns the transition formula of the location for the symbol
func (automaton *AlternatingTimedAutomaton[L, S]) Transition(location L, symbol S) (Formula[L], bool) {
	transition, ok := automaton.transitions[transitionKey[L, S]{source: location, symbol: symbol}]
	return transition.Formula, ok
}

// LargestConstant returns the largest constant of the clock constraints in the transitions
func (automaton *AlternatingTimedAutomaton[L, S]) LargestConstant() uint {
	largest := uint(0)
	for _, transition := range automaton.transitions {
		largest = max(largest, largestConstant(transition.Formula))
	}
	return largest
}

func (automaton *AlternatingTimedAutomaton[L, S]) InitialConfiguration() Configuration[L] {
	return Configuration[L]{{Location: automaton.initialLocation, Valuation: 0}}
}

// IsAcceptingConfiguration reports whether every location of the configuration is final
func (automaton *AlternatingTimedAutomaton[L, S]) IsAcceptingConfiguration(configuration Configuration[L]) bool {
	return lo.EveryBy(configuration, func(state State[L]) bool { return automaton.finalLocations[state.Location] })
}

// MakeSymbolStep computes every configuration that can follow the given one when reading
// symbol. A state without a transition for symbol imposes no obligation. If no state has a
// transition, or some state has no model, the result is {{(sink, 0)}} or, without a sink,
// the empty set
func (automaton *AlternatingTimedAutomaton[L, S]) MakeSymbolStep(configuration Configuration[L], symbol S) []Configuration[L] {
	if len(configuration) == 0 {
		return []Configuration[L]{{}}
	}

	models := make([][]Configuration[L], 0, len(configuration))
	for _, state := range configuration {
		formula, ok := automaton.Transition(state.Location, symbol)
		if !ok {
			continue
		}
		models = append(models, formula.MinimalModels(state.Valuation))
	}

	if len(models) == 0 || lo.SomeBy(models, func(stateModels []Configuration[L]) bool { return len(stateModels) == 0 }) {
		if automaton.sinkLocation != nil {
			return []Configuration[L]{{{Location: *automaton.sinkLocation, Valuation: 0}}}
		}
		return []Configuration[L]{}
	}

	// Pick one model per state and unite them
	configurations := models[0]
	for _, stateModels := range models[1:] {
		expanded := make([]Configuration[L], 0, len(configurations)*len(stateModels))
		for _, partial := range configurations {
			for _, model := range stateModels {
				expanded = append(expanded, partial.Union(model))
			}
		}
		configurations = expanded
	}
	return SortConfigurations(configurations)
}

// MakeTimeStep lets delta time units pass in every state
func (automaton *AlternatingTimedAutomaton[L, S]) MakeTimeStep(configuration Configuration[L], delta automata.Time) (Configuration[L], error) {
	if delta < 0 {
		return nil, automata.NegativeTimeDeltaError{Delta: delta}
	}
	return NewConfiguration(lo.Map(configuration, func(state State[L], _ int) State[L] {
		return State[L]{Location: state.Location, Valuation: state.Valuation + delta}
	})...), nil
}

// AcceptsWord reports whether the automaton accepts the timed word, which must start at
// time 0
func (automaton *AlternatingTimedAutomaton[L, S]) AcceptsWord(word automata.TimedWord[S]) (bool, error) {
	if err := word.Validate(); err != nil {
		return false, err
	} else if word[0].Time != 0 {
		return false, automata.InvalidTimedWordError{Reason: fmt.Sprintf("first symbol occurs at %v instead of 0", word[0].Time)}
	}

	configurations := automaton.MakeSymbolStep(automaton.InitialConfiguration(), word[0].Symbol)
	lastTime := word[0].Time
	for _, timedSymbol := range word[1:] {
		next := make([]Configuration[L], 0)
		for _, configuration := range configurations {
			ticked, err := automaton.MakeTimeStep(configuration, timedSymbol.Time-lastTime)
			if err != nil {
				return false, err
			}
			next = append(next, automaton.MakeSymbolStep(ticked, timedSymbol.Symbol)...)
		}
		configurations = SortConfigurations(next)
		lastTime = timedSymbol.Time
	}

	return lo.SomeBy(configurations, automaton.IsAcceptingConfiguration), nil
}

func (automaton *AlternatingTimedAutomaton[L, S]) String() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Alphabet: %v, initial location: %v, final locations: %v\n", automaton.Alphabet(), automaton.initialLocation, automaton.FinalLocations())
	for _, transition := range automaton.Transitions() {
		builder.WriteString(transition.String())
		builder.WriteString("\n")
	}
	return builder.String()
}
