package automata

import (
	"fmt"
	"log"
	"strings"

	"github.com/samber/lo"
)

type ComparisonOperator int

const (
	Less ComparisonOperator = iota
	LessEqual
	Equal
	GreaterEqual
	Greater
)

var operatorSymbols = map[ComparisonOperator]string{
	Less:         "<",
	LessEqual:    "≤",
	Equal:        "=",
	GreaterEqual: "≥",
	Greater:      ">",
}

var operatorAliases = map[string]ComparisonOperator{
	"<":  Less,
	"<=": LessEqual,
	"≤":  LessEqual,
	"=":  Equal,
	"==": Equal,
	">=": GreaterEqual,
	"≥":  GreaterEqual,
	">":  Greater,
}

// ParseComparisonOperator maps a textual operator (e.g. "<=") to its ComparisonOperator
func ParseComparisonOperator(symbol string) (ComparisonOperator, error) {
	operator, ok := operatorAliases[strings.TrimSpace(symbol)]
	if !ok {
		return 0, InvalidClockComparisonOperatorError{Operator: symbol}
	}
	return operator, nil
}

func (operator ComparisonOperator) IsValid() bool {
	_, ok := operatorSymbols[operator]
	return ok
}

func (operator ComparisonOperator) String() string {
	symbol, ok := operatorSymbols[operator]
	if !ok {
		return fmt.Sprintf("operator(%d)", int(operator))
	}
	return symbol
}

// ClockConstraint compares a (not yet specified) clock against an integer constant
type ClockConstraint struct {
	Operator  ComparisonOperator
	Comparand uint
}

func NewClockConstraint(operator ComparisonOperator, comparand uint) (ClockConstraint, error) {
	if !operator.IsValid() {
		return ClockConstraint{}, InvalidClockComparisonOperatorError{Operator: operator.String()}
	}
	return ClockConstraint{Operator: operator, Comparand: comparand}, nil
}

func (constraint ClockConstraint) IsSatisfied(valuation Time) bool {
	comparand := Time(constraint.Comparand)
	switch constraint.Operator {
	case Less:
		return valuation < comparand
	case LessEqual:
		return valuation <= comparand
	case Equal:
		return valuation == comparand
	case GreaterEqual:
		return valuation >= comparand
	case Greater:
		return valuation > comparand
	default:
		log.Panicf("cannot evaluate clock constraint: %v", InvalidClockComparisonOperatorError{Operator: constraint.Operator.String()})
		return false
	}
}

func (constraint ClockConstraint) String() string {
	return fmt.Sprintf("%v %d", constraint.Operator, constraint.Comparand)
}

// AtomicClockConstraint binds a ClockConstraint to a clock name
type AtomicClockConstraint struct {
	Clock      string
	Constraint ClockConstraint
}

func (constraint AtomicClockConstraint) IsSatisfied(valuations ClockSetValuation) bool {
	clock, ok := valuations[constraint.Clock]
	if !ok {
		return false
	}
	return constraint.Constraint.IsSatisfied(clock.Valuation())
}

func (constraint AtomicClockConstraint) String() string {
	return fmt.Sprintf("%s %v", constraint.Clock, constraint.Constraint)
}

// IsGuardSatisfied reports whether every constraint of the guard holds under valuations
func IsGuardSatisfied(guard []AtomicClockConstraint, valuations ClockSetValuation) bool {
	return lo.EveryBy(guard, func(constraint AtomicClockConstraint) bool {
		return constraint.IsSatisfied(valuations)
	})
}

// LargestComparand returns the largest constant mentioned by the given constraints
func LargestComparand(constraints []AtomicClockConstraint) uint {
	return lo.Reduce(constraints, func(largest uint, constraint AtomicClockConstraint, _ int) uint {
		return max(largest, constraint.Constraint.Comparand)
	}, 0)
}
