package search

import (
	"cmp"
	"fmt"

	"github.com/limaJavier/tacos/pkg/automata/ata"
	"github.com/limaJavier/tacos/pkg/automata/ta"
)

// Plant is the system under control as seen by the search. *ta.TimedAutomaton[L, string]
// implements it, richer plant representations only need to provide the same successor
// computation
type Plant[L cmp.Ordered] interface {
	InitialConfiguration() ta.Configuration[L]
	IsAcceptingConfiguration(configuration ta.Configuration[L]) bool
	Alphabet() []string
	MakeSymbolStep(configuration ta.Configuration[L], symbol string) []ta.Configuration[L]
	LargestConstant() uint
}

// Successor is a canonical word reached by taking an action
type Successor[L cmp.Ordered] struct {
	Action string
	Word   CanonicalWord[L]
}

// NextCanonicalWords computes the canonical words reachable from the pair of configurations by
// taking one action of the plant. The automaton reads the action itself or, with
// useLocationConstraints, the name of the plant's target location
func NextCanonicalWords[L cmp.Ordered](plant Plant[L], automaton *ata.AlternatingTimedAutomaton[string, string], plantConfiguration ta.Configuration[L], automatonConfiguration ata.Configuration[string], largestConstant uint, useLocationConstraints bool) ([]Successor[L], error) {
	successors := make([]Successor[L], 0)
	for _, action := range plant.Alphabet() {
		for _, plantSuccessor := range plant.MakeSymbolStep(plantConfiguration, action) {
			symbol := action
			if useLocationConstraints {
				symbol = fmt.Sprint(plantSuccessor.Location)
			}
			for _, automatonSuccessor := range automaton.MakeSymbolStep(automatonConfiguration, symbol) {
				word, err := GetCanonicalWord(plantSuccessor, automatonSuccessor, largestConstant)
				if err != nil {
					return nil, err
				}
				successors = append(successors, Successor[L]{Action: action, Word: word})
			}
		}
	}
	return successors, nil
}
