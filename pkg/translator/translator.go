package translator

import (
	"fmt"
	"slices"

	"github.com/limaJavier/tacos/pkg/arithmetic"
	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/limaJavier/tacos/pkg/automata/ata"
	"github.com/limaJavier/tacos/pkg/mtl"
	"github.com/samber/lo"
)

const (
	initialLocation = "l0"
	sinkLocation    = "sink"
)

// InitialLocation returns the name of the initial location of every translated automaton
func InitialLocation() string { return initialLocation }

// SinkLocation returns the name of the sink location of every translated automaton
func SinkLocation() string { return sinkLocation }

// Translate builds an alternating timed automaton accepting exactly the timed words (over the
// given alphabet) that satisfy the formula. An empty alphabet defaults to the propositions of
// the formula. Locations are the until and dual until subformulas of the formula's positive
// normal form, named after their string representation, plus the initial and sink locations
func Translate(formula mtl.Formula, alphabet []string) (*ata.AlternatingTimedAutomaton[string, string], error) {
	formula = formula.ToPositiveNormalForm()
	if len(alphabet) == 0 {
		alphabet = formula.Alphabet()
	}
	for _, reserved := range []string{initialLocation, sinkLocation} {
		if slices.Contains(alphabet, reserved) {
			return nil, automata.InvalidSymbolError{Symbol: reserved}
		}
	}

	untils := formula.SubformulasOfType(mtl.UntilOperator)
	dualUntils := formula.SubformulasOfType(mtl.DualUntilOperator)

	transitions := make([]ata.Transition[string, string], 0, len(alphabet)*(1+len(untils)+len(dualUntils)))
	for _, symbol := range alphabet {
		initial, err := Init(formula, symbol, true)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, ata.Transition[string, string]{Source: initialLocation, Symbol: symbol, Formula: initial})

		for _, until := range untils {
			left, right, err := initOperands(until, symbol)
			if err != nil {
				return nil, err
			}
			// (b ∧ x ∈ I) ∨ (a ∧ a U b)
			transitions = append(transitions, ata.Transition[string, string]{
				Source: until.String(),
				Symbol: symbol,
				Formula: ata.CreateDisjunction(
					ata.CreateConjunction(right, ContainsFormula(until.Interval())),
					ata.CreateConjunction(left, ata.Formula[string](ata.LocationFormula[string]{Location: until.String()})),
				),
			})
		}

		for _, dualUntil := range dualUntils {
			left, right, err := initOperands(dualUntil, symbol)
			if err != nil {
				return nil, err
			}
			// (b ∨ x ∉ I) ∧ (a ∨ a Ũ b)
			transitions = append(transitions, ata.Transition[string, string]{
				Source: dualUntil.String(),
				Symbol: symbol,
				Formula: ata.CreateConjunction(
					ata.CreateDisjunction(right, NegatedContainsFormula(dualUntil.Interval())),
					ata.CreateDisjunction(left, ata.Formula[string](ata.LocationFormula[string]{Location: dualUntil.String()})),
				),
			})
		}
	}

	finals := lo.Map(dualUntils, func(dualUntil mtl.Formula, _ int) string { return dualUntil.String() })
	return ata.NewAlternatingTimedAutomaton(alphabet, initialLocation, finals, transitions, lo.ToPtr(sinkLocation))
}

// Init computes the formula an automaton state has to satisfy when the formula is read
// with symbol. Temporal subformulas become locations, their clock is reset unless first is
// set. The formula must be in positive normal form
func Init(formula mtl.Formula, symbol string, first bool) (ata.Formula[string], error) {
	switch formula.Operator() {
	case mtl.TrueOperator:
		return ata.TrueFormula[string]{}, nil
	case mtl.FalseOperator:
		return ata.FalseFormula[string]{}, nil
	case mtl.UntilOperator, mtl.DualUntilOperator:
		location := ata.LocationFormula[string]{Location: formula.String()}
		if first {
			return location, nil
		}
		return ata.ResetClockFormula[string]{Sub: location}, nil
	case mtl.AtomicOperator:
		return constant(formula.Proposition() == symbol), nil
	case mtl.AndOperator, mtl.OrOperator:
		combine := lo.Ternary(formula.Operator() == mtl.AndOperator, ata.CreateConjunction[string], ata.CreateDisjunction[string])
		var combined ata.Formula[string] = constant(formula.Operator() == mtl.AndOperator)
		for _, operand := range formula.Operands() {
			initial, err := Init(operand, symbol, first)
			if err != nil {
				return nil, err
			}
			combined = combine(combined, initial)
		}
		return combined, nil
	}

	// Negation is only allowed in front of constants and propositions
	negated := formula.Operands()[0]
	switch negated.Operator() {
	case mtl.AtomicOperator:
		return constant(negated.Proposition() != symbol), nil
	case mtl.TrueOperator:
		return ata.FalseFormula[string]{}, nil
	case mtl.FalseOperator:
		return ata.TrueFormula[string]{}, nil
	default:
		return nil, fmt.Errorf("formula %v is not in positive normal form", formula)
	}
}

// ContainsFormula builds the clock constraints expressing x ∈ interval
func ContainsFormula(interval arithmetic.Interval) ata.Formula[string] {
	var lower, upper ata.Formula[string] = ata.TrueFormula[string]{}, ata.TrueFormula[string]{}
	switch interval.LowerType() {
	case arithmetic.Weak:
		lower = clockConstraint(automata.GreaterEqual, interval.Lower())
	case arithmetic.Strict:
		lower = clockConstraint(automata.Greater, interval.Lower())
	}
	switch interval.UpperType() {
	case arithmetic.Weak:
		upper = clockConstraint(automata.LessEqual, interval.Upper())
	case arithmetic.Strict:
		upper = clockConstraint(automata.Less, interval.Upper())
	}
	return ata.CreateConjunction(lower, upper)
}

// NegatedContainsFormula builds the clock constraints expressing x ∉ interval
func NegatedContainsFormula(interval arithmetic.Interval) ata.Formula[string] {
	var lower, upper ata.Formula[string] = ata.FalseFormula[string]{}, ata.FalseFormula[string]{}
	switch interval.LowerType() {
	case arithmetic.Weak:
		lower = clockConstraint(automata.Less, interval.Lower())
	case arithmetic.Strict:
		lower = clockConstraint(automata.LessEqual, interval.Lower())
	}
	switch interval.UpperType() {
	case arithmetic.Weak:
		upper = clockConstraint(automata.Greater, interval.Upper())
	case arithmetic.Strict:
		upper = clockConstraint(automata.GreaterEqual, interval.Upper())
	}
	return ata.CreateDisjunction(lower, upper)
}

func initOperands(formula mtl.Formula, symbol string) (left, right ata.Formula[string], err error) {
	operands := formula.Operands()
	if left, err = Init(operands[0], symbol, false); err != nil {
		return nil, nil, err
	}
	if right, err = Init(operands[1], symbol, false); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func clockConstraint(operator automata.ComparisonOperator, comparand uint) ata.Formula[string] {
	return ata.ClockConstraintFormula[string]{Constraint: automata.ClockConstraint{Operator: operator, Comparand: comparand}}
}

func constant(value bool) ata.Formula[string] {
	if value {
		return ata.TrueFormula[string]{}
	}
	return ata.FalseFormula[string]{}
}
