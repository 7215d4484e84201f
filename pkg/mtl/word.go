package mtl

import (
	"slices"

	"github.com/samber/lo"
)

// TimedLetter is a set of propositions holding at an absolute point in time
type TimedLetter struct {
	Propositions []AtomicProposition
	Time         float64
}

// Word is a finite timed word over sets of atomic propositions
type Word []TimedLetter

// Satisfies evaluates the formula at the first position of the word
func (word Word) Satisfies(formula Formula) bool {
	return word.SatisfiesAt(formula, 0)
}

// SatisfiesAt evaluates the formula at position i using the pointwise semantics. Until and
// dual until only consider strictly later positions
func (word Word) SatisfiesAt(formula Formula, i int) bool {
	switch formula.operator {
	case TrueOperator:
		return true
	case FalseOperator:
		return false
	case AtomicOperator:
		return i < len(word) && slices.Contains(word[i].Propositions, formula.proposition)
	case AndOperator:
		return lo.EveryBy(formula.operands, func(operand Formula) bool { return word.SatisfiesAt(operand, i) })
	case OrOperator:
		return lo.SomeBy(formula.operands, func(operand Formula) bool { return word.SatisfiesAt(operand, i) })
	case NotOperator:
		return !word.SatisfiesAt(formula.operands[0], i)
	case UntilOperator:
		left, right := formula.operands[0], formula.operands[1]
		for j := i + 1; j < len(word); j++ {
			if word.SatisfiesAt(right, j) && formula.interval.Contains(word[j].Time-word[i].Time) {
				return true
			}
			if !word.SatisfiesAt(left, j) {
				return false
			}
		}
		return false
	default:
		// a Ũ b is ¬(¬a U ¬b)
		left, right := formula.operands[0], formula.operands[1]
		for j := i + 1; j < len(word); j++ {
			if !word.SatisfiesAt(right, j) && formula.interval.Contains(word[j].Time-word[i].Time) {
				return false
			}
			if word.SatisfiesAt(left, j) {
				return true
			}
		}
		return true
	}
}
