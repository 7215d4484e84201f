package search

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// TimeSuccessor returns the canonical word reached by letting the least amount of time pass
// that changes some region. If the first partition is integral, its symbols leave their
// integral value. Otherwise the partition with the largest fractional part reaches the next
// integer and becomes the first partition. Symbols reaching the maximal region join the
// trailing partition, a word with only maximal symbols is its own successor
func TimeSuccessor[L cmp.Ordered](word CanonicalWord[L], largestConstant uint) CanonicalWord[L] {
	maxRegion := 2*largestConstant + 1
	isMaxed := func(symbol RegionSymbol[L]) bool { return symbol.Region >= maxRegion }

	maxed := lo.Filter(lo.Flatten(word), func(symbol RegionSymbol[L], _ int) bool { return isMaxed(symbol) })
	remaining := lo.FilterMap(word, func(partition Partition[L], _ int) (Partition[L], bool) {
		kept := lo.Reject(partition, func(symbol RegionSymbol[L], _ int) bool { return isMaxed(symbol) })
		return kept, len(kept) > 0
	})

	successor := make(CanonicalWord[L], 0, len(word)+1)
	if len(remaining) > 0 {
		if remaining[0][0].Region%2 == 0 {
			incremented := lo.Map(remaining[0], func(symbol RegionSymbol[L], _ int) RegionSymbol[L] { return symbol.incremented() })
			stillFractional := lo.Reject(incremented, func(symbol RegionSymbol[L], _ int) bool { return isMaxed(symbol) })
			maxed = append(maxed, lo.Filter(incremented, func(symbol RegionSymbol[L], _ int) bool { return isMaxed(symbol) })...)
			if len(stillFractional) > 0 {
				successor = append(successor, NewPartition(stillFractional...))
			}
			successor = append(successor, remaining[1:]...)
		} else {
			last := remaining[len(remaining)-1]
			successor = append(successor, NewPartition(lo.Map(last, func(symbol RegionSymbol[L], _ int) RegionSymbol[L] { return symbol.incremented() })...))
			successor = append(successor, remaining[:len(remaining)-1]...)
		}
	}

	if len(maxed) > 0 {
		successor = append(successor, NewPartition(maxed...))
	}
	return successor
}

// NthTimeSuccessor applies TimeSuccessor n times
func NthTimeSuccessor[L cmp.Ordered](word CanonicalWord[L], n uint, largestConstant uint) CanonicalWord[L] {
	successor := slices.Clone(word)
	for range n {
		successor = TimeSuccessor(successor, largestConstant)
	}
	return successor
}

// TimeSuccessors returns the word followed by its time successors until they stop changing
func TimeSuccessors[L cmp.Ordered](word CanonicalWord[L], largestConstant uint) []CanonicalWord[L] {
	successors := []CanonicalWord[L]{word}
	for {
		next := TimeSuccessor(successors[len(successors)-1], largestConstant)
		if next.Equal(successors[len(successors)-1]) {
			return successors
		}
		successors = append(successors, next)
	}
}
