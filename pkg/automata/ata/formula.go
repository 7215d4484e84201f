package ata

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/limaJavier/tacos/pkg/arithmetic"
	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/samber/lo"
)

// Formula is a positive boolean formula over locations and clock constraints, used as the
// transition target of an alternating timed automaton
type Formula[L cmp.Ordered] interface {
	// IsSatisfied reports whether the set of states is a model of the formula when the
	// automaton's clock has the given valuation
	IsSatisfied(states Configuration[L], valuation automata.Time) bool
	// MinimalModels returns the subset-minimal sets of states satisfying the formula
	MinimalModels(valuation automata.Time) []Configuration[L]
	String() string
	isFormula()
}

type TrueFormula[L cmp.Ordered] struct{}

func (TrueFormula[L]) IsSatisfied(Configuration[L], automata.Time) bool { return true }

func (TrueFormula[L]) MinimalModels(automata.Time) []Configuration[L] {
	return []Configuration[L]{{}}
}

func (TrueFormula[L]) String() string { return "⊤" }

func (TrueFormula[L]) isFormula() {}

type FalseFormula[L cmp.Ordered] struct{}

func (FalseFormula[L]) IsSatisfied(Configuration[L], automata.Time) bool { return false }

func (FalseFormula[L]) MinimalModels(automata.Time) []Configuration[L] {
	return []Configuration[L]{}
}

func (FalseFormula[L]) String() string { return "⊥" }

func (FalseFormula[L]) isFormula() {}

// LocationFormula requires the automaton to move to the location, keeping its clock
type LocationFormula[L cmp.Ordered] struct {
	Location L
}

func (formula LocationFormula[L]) IsSatisfied(states Configuration[L], valuation automata.Time) bool {
	return lo.ContainsBy(states, func(state State[L]) bool {
		return state.Location == formula.Location && arithmetic.ApproxEqual(state.Valuation, valuation)
	})
}

func (formula LocationFormula[L]) MinimalModels(valuation automata.Time) []Configuration[L] {
	return []Configuration[L]{{State[L]{Location: formula.Location, Valuation: valuation}}}
}

func (formula LocationFormula[L]) String() string { return fmt.Sprint(formula.Location) }

func (LocationFormula[L]) isFormula() {}

type ClockConstraintFormula[L cmp.Ordered] struct {
	Constraint automata.ClockConstraint
}

func (formula ClockConstraintFormula[L]) IsSatisfied(_ Configuration[L], valuation automata.Time) bool {
	return formula.Constraint.IsSatisfied(valuation)
}

func (formula ClockConstraintFormula[L]) MinimalModels(valuation automata.Time) []Configuration[L] {
	if formula.Constraint.IsSatisfied(valuation) {
		return []Configuration[L]{{}}
	}
	return []Configuration[L]{}
}

func (formula ClockConstraintFormula[L]) String() string { return "x " + formula.Constraint.String() }

func (ClockConstraintFormula[L]) isFormula() {}

type ConjunctionFormula[L cmp.Ordered] struct {
	Conjuncts []Formula[L]
}

func (formula ConjunctionFormula[L]) IsSatisfied(states Configuration[L], valuation automata.Time) bool {
	return lo.EveryBy(formula.Conjuncts, func(conjunct Formula[L]) bool { return conjunct.IsSatisfied(states, valuation) })
}

func (formula ConjunctionFormula[L]) MinimalModels(valuation automata.Time) []Configuration[L] {
	models := []Configuration[L]{{}}
	for _, conjunct := range formula.Conjuncts {
		conjunctModels := conjunct.MinimalModels(valuation)
		crossed := make([]Configuration[L], 0, len(models)*len(conjunctModels))
		for _, model := range models {
			for _, conjunctModel := range conjunctModels {
				crossed = append(crossed, model.Union(conjunctModel))
			}
		}
		models = crossed
	}
	return minimize(models)
}

func (formula ConjunctionFormula[L]) String() string {
	return joinFormulas(formula.Conjuncts, " ∧ ")
}

func (ConjunctionFormula[L]) isFormula() {}

type DisjunctionFormula[L cmp.Ordered] struct {
	Disjuncts []Formula[L]
}

func (formula DisjunctionFormula[L]) IsSatisfied(states Configuration[L], valuation automata.Time) bool {
	return lo.SomeBy(formula.Disjuncts, func(disjunct Formula[L]) bool { return disjunct.IsSatisfied(states, valuation) })
}

func (formula DisjunctionFormula[L]) MinimalModels(valuation automata.Time) []Configuration[L] {
	return minimize(lo.FlatMap(formula.Disjuncts, func(disjunct Formula[L], _ int) []Configuration[L] {
		return disjunct.MinimalModels(valuation)
	}))
}

func (formula DisjunctionFormula[L]) String() string {
	return joinFormulas(formula.Disjuncts, " ∨ ")
}

func (DisjunctionFormula[L]) isFormula() {}

// ResetClockFormula evaluates its sub-formula with the clock reset to 0
type ResetClockFormula[L cmp.Ordered] struct {
	Sub Formula[L]
}

func (formula ResetClockFormula[L]) IsSatisfied(states Configuration[L], _ automata.Time) bool {
	return formula.Sub.IsSatisfied(states, 0)
}

func (formula ResetClockFormula[L]) MinimalModels(automata.Time) []Configuration[L] {
	return formula.Sub.MinimalModels(0)
}

func (formula ResetClockFormula[L]) String() string {
	return "x." + formula.Sub.String()
}

func (ResetClockFormula[L]) isFormula() {}

// CreateConjunction conjoins two formulas, absorbing constants and flattening nested
// conjunctions
func CreateConjunction[L cmp.Ordered](left, right Formula[L]) Formula[L] {
	if isFalse(left) || isFalse(right) {
		return FalseFormula[L]{}
	} else if isTrue(left) {
		return right
	} else if isTrue(right) {
		return left
	}
	return ConjunctionFormula[L]{Conjuncts: append(flatten(left, isConjunction), flatten(right, isConjunction)...)}
}

// CreateDisjunction disjoins two formulas, absorbing constants and flattening nested
// disjunctions
func CreateDisjunction[L cmp.Ordered](left, right Formula[L]) Formula[L] {
	if isTrue(left) || isTrue(right) {
		return TrueFormula[L]{}
	} else if isFalse(left) {
		return right
	} else if isFalse(right) {
		return left
	}
	return DisjunctionFormula[L]{Disjuncts: append(flatten(left, isDisjunction), flatten(right, isDisjunction)...)}
}

func isTrue[L cmp.Ordered](formula Formula[L]) bool {
	_, ok := formula.(TrueFormula[L])
	return ok
}

func isFalse[L cmp.Ordered](formula Formula[L]) bool {
	_, ok := formula.(FalseFormula[L])
	return ok
}

func isConjunction[L cmp.Ordered](formula Formula[L]) ([]Formula[L], bool) {
	conjunction, ok := formula.(ConjunctionFormula[L])
	return conjunction.Conjuncts, ok
}

func isDisjunction[L cmp.Ordered](formula Formula[L]) ([]Formula[L], bool) {
	disjunction, ok := formula.(DisjunctionFormula[L])
	return disjunction.Disjuncts, ok
}

func flatten[L cmp.Ordered](formula Formula[L], split func(Formula[L]) ([]Formula[L], bool)) []Formula[L] {
	if operands, ok := split(formula); ok {
		return operands
	}
	return []Formula[L]{formula}
}

func joinFormulas[L cmp.Ordered](formulas []Formula[L], separator string) string {
	return "(" + strings.Join(lo.Map(formulas, func(formula Formula[L], _ int) string { return formula.String() }), separator) + ")"
}

// minimize removes duplicates and every model that strictly contains another model
func minimize[L cmp.Ordered](models []Configuration[L]) []Configuration[L] {
	unique := SortConfigurations(models)
	return lo.Filter(unique, func(model Configuration[L], i int) bool {
		return !lo.SomeBy(unique, func(other Configuration[L]) bool {
			return len(other) < len(model) && other.IsSubsetOf(model)
		})
	})
}

func largestConstant[L cmp.Ordered](formula Formula[L]) uint {
	switch formula := formula.(type) {
	case ClockConstraintFormula[L]:
		return formula.Constraint.Comparand
	case ConjunctionFormula[L]:
		return lo.Max(lo.Map(formula.Conjuncts, func(conjunct Formula[L], _ int) uint { return largestConstant(conjunct) }))
	case DisjunctionFormula[L]:
		return lo.Max(lo.Map(formula.Disjuncts, func(disjunct Formula[L], _ int) uint { return largestConstant(disjunct) }))
	case ResetClockFormula[L]:
		return largestConstant(formula.Sub)
	default:
		return 0
	}
}

// validateFormula rejects clock constraints with an unknown comparison operator
func validateFormula[L cmp.Ordered](formula Formula[L]) error {
	switch formula := formula.(type) {
	case ClockConstraintFormula[L]:
		if !formula.Constraint.Operator.IsValid() {
			return automata.InvalidClockComparisonOperatorError{Operator: formula.Constraint.Operator.String()}
		}
	case ConjunctionFormula[L]:
		for _, conjunct := range formula.Conjuncts {
			if err := validateFormula(conjunct); err != nil {
				return err
			}
		}
	case DisjunctionFormula[L]:
		for _, disjunct := range formula.Disjuncts {
			if err := validateFormula(disjunct); err != nil {
				return err
			}
		}
	case ResetClockFormula[L]:
		return validateFormula(formula.Sub)
	}
	return nil
}
