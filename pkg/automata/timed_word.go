package automata

import (
	"fmt"
	"strings"
)

type TimedSymbol[S any] struct {
	Symbol S
	Time   Time
}

// TimedWord is a finite sequence of symbols with absolute, non-decreasing timestamps
type TimedWord[S any] []TimedSymbol[S]

// Validate checks that the word is non-empty and that its timestamps are non-negative and
// non-decreasing
func (word TimedWord[S]) Validate() error {
	if len(word) == 0 {
		return InvalidTimedWordError{Reason: "word is empty"}
	}
	if word[0].Time < 0 {
		return InvalidTimedWordError{Reason: fmt.Sprintf("first symbol occurs at negative time %v", word[0].Time)}
	}
	for i := 1; i < len(word); i++ {
		if word[i].Time < word[i-1].Time {
			return InvalidTimedWordError{Reason: fmt.Sprintf("time decreases at position %d", i)}
		}
	}
	return nil
}

func (word TimedWord[S]) String() string {
	parts := make([]string, len(word))
	for i, symbol := range word {
		parts[i] = fmt.Sprintf("(%v, %g)", symbol.Symbol, symbol.Time)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
