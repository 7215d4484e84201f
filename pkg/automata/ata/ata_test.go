package ata

import (
	"testing"

	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func location(name string) Formula[string] {
	return LocationFormula[string]{Location: name}
}

func constraint(operator automata.ComparisonOperator, comparand uint) Formula[string] {
	return ClockConstraintFormula[string]{Constraint: automata.ClockConstraint{Operator: operator, Comparand: comparand}}
}

// newResponseAutomaton requires every a to be answered by a b within one time unit
func newResponseAutomaton(t *testing.T, sink *string) *AlternatingTimedAutomaton[string, string] {
	automaton, err := NewAlternatingTimedAutomaton(
		[]string{"a", "b"},
		"s0",
		[]string{"s0"},
		[]Transition[string, string]{
			{Source: "s0", Symbol: "a", Formula: CreateConjunction(location("s0"), ResetClockFormula[string]{Sub: location("s1")})},
			{Source: "s0", Symbol: "b", Formula: location("s0")},
			{Source: "s1", Symbol: "a", Formula: location("s1")},
			{Source: "s1", Symbol: "b", Formula: constraint(automata.LessEqual, 1)},
		},
		sink,
	)
	assert.Nil(t, err)
	return automaton
}

func TestFormulas(t *testing.T) {
	t.Run("Minimal models", func(t *testing.T) {
		//** Arrange
		g := gomega.NewWithT(t)
		s0, s1 := State[string]{"s0", 2}, State[string]{"s1", 2}

		//** Assert
		assert.Equal(t, []Configuration[string]{{}}, TrueFormula[string]{}.MinimalModels(2))
		assert.Empty(t, FalseFormula[string]{}.MinimalModels(2))
		assert.Equal(t, []Configuration[string]{{s0}}, location("s0").MinimalModels(2))
		assert.Equal(t, []Configuration[string]{{s0, s1}}, CreateConjunction(location("s0"), location("s1")).MinimalModels(2))
		g.Expect(CreateDisjunction(location("s0"), location("s1")).MinimalModels(2)).To(gomega.ConsistOf(Configuration[string]{s0}, Configuration[string]{s1}))
		assert.Equal(t, []Configuration[string]{{s0}}, CreateDisjunction(location("s0"), CreateConjunction(location("s0"), location("s1"))).MinimalModels(2))
		assert.Equal(t, []Configuration[string]{{{"s0", 0}}}, ResetClockFormula[string]{Sub: location("s0")}.MinimalModels(2))
		assert.Empty(t, constraint(automata.Less, 1).MinimalModels(2))
		assert.Equal(t, []Configuration[string]{{}}, constraint(automata.Less, 3).MinimalModels(2))
		assert.Empty(t, CreateConjunction(location("s0"), constraint(automata.Less, 1)).MinimalModels(2))
	})

	t.Run("Satisfaction", func(t *testing.T) {
		//** Arrange
		states := NewConfiguration(State[string]{"s0", 1}, State[string]{"s1", 0})

		//** Assert
		assert.True(t, location("s0").IsSatisfied(states, 1))
		assert.False(t, location("s0").IsSatisfied(states, 2))
		assert.True(t, ResetClockFormula[string]{Sub: location("s1")}.IsSatisfied(states, 5))
		assert.True(t, CreateDisjunction(location("s2"), location("s0")).IsSatisfied(states, 1))
		assert.False(t, CreateConjunction(location("s2"), location("s0")).IsSatisfied(states, 1))
		assert.True(t, constraint(automata.Greater, 0).IsSatisfied(nil, 0.5))
	})

	t.Run("Constants are simplified away", func(t *testing.T) {
		//** Arrange
		f := location("s0")

		//** Assert
		assert.Equal(t, f, CreateConjunction(TrueFormula[string]{}, f))
		assert.Equal(t, f, CreateConjunction(f, TrueFormula[string]{}))
		assert.Equal(t, FalseFormula[string]{}, CreateConjunction(f, FalseFormula[string]{}))
		assert.Equal(t, f, CreateDisjunction(FalseFormula[string]{}, f))
		assert.Equal(t, TrueFormula[string]{}, CreateDisjunction(f, TrueFormula[string]{}))
		assert.Len(t, CreateConjunction(CreateConjunction(f, location("s1")), location("s2")).(ConjunctionFormula[string]).Conjuncts, 3)
		assert.Equal(t, "(s0 ∨ x.s1)", CreateDisjunction(f, ResetClockFormula[string]{Sub: location("s1")}).String())
	})
}

func TestAlternatingTimedAutomaton(t *testing.T) {
	t.Run("Sink location is validated", func(t *testing.T) {
		//** Arrange
		var locationErr automata.InvalidLocationError
		var symbolErr automata.InvalidSymbolError
		transitions := []Transition[string, string]{{Source: "s0", Symbol: "a", Formula: location("s0")}}

		//** Act
		_, initialErr := NewAlternatingTimedAutomaton([]string{"a"}, "s0", nil, transitions, lo.ToPtr("s0"))
		_, finalErr := NewAlternatingTimedAutomaton([]string{"a"}, "s0", []string{"sink"}, transitions, lo.ToPtr("sink"))
		_, sourceErr := NewAlternatingTimedAutomaton([]string{"a"}, "s0", nil, append(transitions, Transition[string, string]{Source: "sink", Symbol: "a", Formula: location("sink")}), lo.ToPtr("sink"))
		_, alphabetErr := NewAlternatingTimedAutomaton([]string{"b"}, "s0", nil, transitions, nil)
		_, duplicateErr := NewAlternatingTimedAutomaton([]string{"a"}, "s0", nil, append(transitions, transitions...), nil)

		//** Assert
		assert.ErrorAs(t, initialErr, &locationErr)
		assert.ErrorAs(t, finalErr, &locationErr)
		assert.ErrorAs(t, sourceErr, &locationErr)
		assert.ErrorAs(t, alphabetErr, &symbolErr)
		assert.Error(t, duplicateErr)
	})

	t.Run("Sink location queries", func(t *testing.T) {
		//** Arrange
		withSink := newResponseAutomaton(t, lo.ToPtr("sink"))
		withoutSink := newResponseAutomaton(t, nil)

		//** Assert
		assert.True(t, withSink.IsSinkLocation("sink"))
		assert.False(t, withSink.IsSinkLocation("s0"))
		assert.False(t, withoutSink.IsSinkLocation("sink"))
	})

	t.Run("Clock constraint operators are validated", func(t *testing.T) {
		//** Arrange
		var operatorErr automata.InvalidClockComparisonOperatorError
		unknownOperator := automata.ComparisonOperator(42)
		nested := CreateConjunction(location("s0"), ResetClockFormula[string]{Sub: CreateDisjunction(location("s1"), constraint(unknownOperator, 1))})

		//** Act
		_, topLevelErr := NewAlternatingTimedAutomaton([]string{"a"}, "s0", nil, []Transition[string, string]{{Source: "s0", Symbol: "a", Formula: constraint(unknownOperator, 1)}}, nil)
		_, nestedErr := NewAlternatingTimedAutomaton([]string{"a"}, "s0", nil, []Transition[string, string]{{Source: "s0", Symbol: "a", Formula: nested}}, nil)
		_, validErr := NewAlternatingTimedAutomaton([]string{"a"}, "s0", nil, []Transition[string, string]{{Source: "s0", Symbol: "a", Formula: constraint(automata.Greater, 1)}}, nil)

		//** Assert
		assert.ErrorAs(t, topLevelErr, &operatorErr)
		assert.ErrorAs(t, nestedErr, &operatorErr)
		assert.Nil(t, validErr)
	})

	t.Run("Symbol steps", func(t *testing.T) {
		//** Arrange
		automaton := newResponseAutomaton(t, nil)
		withSink := newResponseAutomaton(t, lo.ToPtr("sink"))
		pending := NewConfiguration(State[string]{"s0", 2}, State[string]{"s1", 2})

		//** Act
		afterA := automaton.MakeSymbolStep(automaton.InitialConfiguration(), "a")
		late := automaton.MakeSymbolStep(pending, "b")
		lateWithSink := withSink.MakeSymbolStep(pending, "b")
		fromEmpty := automaton.MakeSymbolStep(Configuration[string]{}, "a")
		unknown := automaton.MakeSymbolStep(NewConfiguration(State[string]{"s9", 0}), "a")

		//** Assert
		assert.Equal(t, []Configuration[string]{{{"s0", 0}, {"s1", 0}}}, afterA)
		assert.Empty(t, late)
		assert.Equal(t, []Configuration[string]{{{"sink", 0}}}, lateWithSink)
		assert.Equal(t, []Configuration[string]{{}}, fromEmpty)
		assert.Empty(t, unknown)
		assert.True(t, automaton.IsAcceptingConfiguration(Configuration[string]{}))
		assert.False(t, withSink.IsAcceptingConfiguration(lateWithSink[0]))
	})

	t.Run("Time steps", func(t *testing.T) {
		//** Arrange
		automaton := newResponseAutomaton(t, nil)

		//** Act
		ticked, err := automaton.MakeTimeStep(NewConfiguration(State[string]{"s0", 0}, State[string]{"s1", 1}), 1.5)
		_, negativeErr := automaton.MakeTimeStep(automaton.InitialConfiguration(), -1)

		//** Assert
		assert.Nil(t, err)
		assert.Equal(t, Configuration[string]{{"s0", 1.5}, {"s1", 2.5}}, ticked)
		var deltaErr automata.NegativeTimeDeltaError
		assert.ErrorAs(t, negativeErr, &deltaErr)
	})

	t.Run("Accepting timed words", func(t *testing.T) {
		//** Arrange
		automaton := newResponseAutomaton(t, nil)

		//** Act
		answered, err := automaton.AcceptsWord(automata.TimedWord[string]{{Symbol: "a", Time: 0}, {Symbol: "b", Time: 0.5}})
		tooLate, _ := automaton.AcceptsWord(automata.TimedWord[string]{{Symbol: "a", Time: 0}, {Symbol: "b", Time: 2}})
		unanswered, _ := automaton.AcceptsWord(automata.TimedWord[string]{{Symbol: "a", Time: 0}, {Symbol: "a", Time: 1}})
		_, startErr := automaton.AcceptsWord(automata.TimedWord[string]{{Symbol: "a", Time: 1}})

		//** Assert
		assert.Nil(t, err)
		assert.True(t, answered)
		assert.False(t, tooLate)
		assert.False(t, unanswered)
		var wordErr automata.InvalidTimedWordError
		assert.ErrorAs(t, startErr, &wordErr)
	})

	t.Run("Largest constant", func(t *testing.T) {
		//** Arrange
		automaton := newResponseAutomaton(t, nil)

		//** Act
		largest := automaton.LargestConstant()

		//** Assert
		assert.Equal(t, uint(1), largest)
	})
}
