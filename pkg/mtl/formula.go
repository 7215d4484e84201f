package mtl

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/limaJavier/tacos/pkg/arithmetic"
	"github.com/samber/lo"
)

type AtomicProposition = string

type TimeInterval = arithmetic.Interval

type Operator int

const (
	TrueOperator Operator = iota
	FalseOperator
	AtomicOperator
	AndOperator
	OrOperator
	NotOperator
	UntilOperator
	DualUntilOperator
)

var operatorNames = map[Operator]string{
	TrueOperator:      "true",
	FalseOperator:     "false",
	AtomicOperator:    "ap",
	AndOperator:       "and",
	OrOperator:        "or",
	NotOperator:       "not",
	UntilOperator:     "until",
	DualUntilOperator: "dual_until",
}

func (operator Operator) String() string {
	return operatorNames[operator]
}

// Formula is an immutable metric temporal logic formula
type Formula struct {
	operator    Operator
	proposition AtomicProposition
	interval    TimeInterval
	operands    []Formula
}

func True() Formula { return Formula{operator: TrueOperator} }

func False() Formula { return Formula{operator: FalseOperator} }

func AP(proposition AtomicProposition) Formula {
	return Formula{operator: AtomicOperator, proposition: proposition}
}

func And(operands ...Formula) Formula {
	return Formula{operator: AndOperator, operands: slices.Clone(operands)}
}

func Or(operands ...Formula) Formula {
	return Formula{operator: OrOperator, operands: slices.Clone(operands)}
}

func Not(operand Formula) Formula {
	return Formula{operator: NotOperator, operands: []Formula{operand}}
}

func Until(left, right Formula, interval TimeInterval) Formula {
	return Formula{operator: UntilOperator, interval: interval, operands: []Formula{left, right}}
}

func DualUntil(left, right Formula, interval TimeInterval) Formula {
	return Formula{operator: DualUntilOperator, interval: interval, operands: []Formula{left, right}}
}

// Finally is ⊤ U_I operand
func Finally(operand Formula, interval TimeInterval) Formula {
	return Until(True(), operand, interval)
}

// Globally is ⊥ Ũ_I operand
func Globally(operand Formula, interval TimeInterval) Formula {
	return DualUntil(False(), operand, interval)
}

func Implies(premise, conclusion Formula) Formula {
	return Or(Not(premise), conclusion)
}

func (formula Formula) Operator() Operator { return formula.operator }

func (formula Formula) Operands() []Formula { return slices.Clone(formula.operands) }

func (formula Formula) Interval() TimeInterval { return formula.interval }

func (formula Formula) Proposition() AtomicProposition { return formula.proposition }

// ToPositiveNormalForm pushes every negation down to the atomic propositions
func (formula Formula) ToPositiveNormalForm() Formula {
	switch formula.operator {
	case TrueOperator, FalseOperator, AtomicOperator:
		return formula
	case AndOperator, OrOperator, UntilOperator, DualUntilOperator:
		return Formula{
			operator: formula.operator,
			interval: formula.interval,
			operands: lo.Map(formula.operands, func(operand Formula, _ int) Formula { return operand.ToPositiveNormalForm() }),
		}
	}

	// Negation
	negated := formula.operands[0]
	negateAll := func() []Formula {
		return lo.Map(negated.operands, func(operand Formula, _ int) Formula { return Not(operand).ToPositiveNormalForm() })
	}
	switch negated.operator {
	case TrueOperator:
		return False()
	case FalseOperator:
		return True()
	case AtomicOperator:
		return formula
	case NotOperator:
		return negated.operands[0].ToPositiveNormalForm()
	case AndOperator:
		return Or(negateAll()...)
	case OrOperator:
		return And(negateAll()...)
	case UntilOperator:
		operands := negateAll()
		return DualUntil(operands[0], operands[1], negated.interval)
	default:
		operands := negateAll()
		return Until(operands[0], operands[1], negated.interval)
	}
}

// Alphabet returns the atomic propositions of the formula in ascending order
func (formula Formula) Alphabet() []AtomicProposition {
	propositions := lo.Uniq(lo.Map(formula.SubformulasOfType(AtomicOperator), func(ap Formula, _ int) AtomicProposition { return ap.proposition }))
	slices.Sort(propositions)
	return propositions
}

// SubformulasOfType returns the distinct subformulas (the formula included) with the given
// operator in ascending order
func (formula Formula) SubformulasOfType(operator Operator) []Formula {
	subformulas := make([]Formula, 0)
	var collect func(current Formula)
	collect = func(current Formula) {
		if current.operator == operator {
			subformulas = append(subformulas, current)
		}
		for _, operand := range current.operands {
			collect(operand)
		}
	}
	collect(formula)

	slices.SortFunc(subformulas, Formula.Compare)
	return slices.CompactFunc(subformulas, Formula.Equal)
}

// LargestConstant returns the largest finite interval bound used by any until operator
func (formula Formula) LargestConstant() uint {
	var largest uint
	if formula.operator == UntilOperator || formula.operator == DualUntilOperator {
		if formula.interval.LowerType() != arithmetic.Infty {
			largest = max(largest, formula.interval.Lower())
		}
		if formula.interval.UpperType() != arithmetic.Infty {
			largest = max(largest, formula.interval.Upper())
		}
	}
	for _, operand := range formula.operands {
		largest = max(largest, operand.LargestConstant())
	}
	return largest
}

func (formula Formula) Compare(other Formula) int {
	if c := cmp.Compare(formula.operator, other.operator); c != 0 {
		return c
	}
	if c := cmp.Compare(formula.proposition, other.proposition); c != 0 {
		return c
	}
	if c := formula.interval.Compare(other.interval); c != 0 {
		return c
	}
	return slices.CompareFunc(formula.operands, other.operands, Formula.Compare)
}

func (formula Formula) Equal(other Formula) bool {
	return formula.Compare(other) == 0
}

func (formula Formula) String() string {
	switch formula.operator {
	case TrueOperator:
		return "⊤"
	case FalseOperator:
		return "⊥"
	case AtomicOperator:
		return formula.proposition
	case NotOperator:
		return "¬" + formula.operands[0].String()
	case AndOperator, OrOperator:
		separator := lo.Ternary(formula.operator == AndOperator, " ∧ ", " ∨ ")
		return "(" + strings.Join(lo.Map(formula.operands, func(operand Formula, _ int) string { return operand.String() }), separator) + ")"
	}

	symbol := lo.Ternary(formula.operator == UntilOperator, "U", "~U")
	if !formula.interval.IsUnbounded() {
		symbol += formula.interval.String()
	}
	return fmt.Sprintf("(%v %s %v)", formula.operands[0], symbol, formula.operands[1])
}
