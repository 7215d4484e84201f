package search

import (
	"cmp"

	"github.com/samber/lo"
)

// IsMonotonicallyDominated reports whether w2 contains w1 partition-wise: the partitions of w1
// can be matched, in order, to increasing partitions of w2 that include them. Every obligation
// encoded in w1 is then also present in w2
func IsMonotonicallyDominated[L cmp.Ordered](w1, w2 CanonicalWord[L]) bool {
	next := 0
	for _, partition := range w1 {
		for next < len(w2) && !partition.IsSubsetOf(w2[next]) {
			next++
		}
		if next == len(w2) {
			return false
		}
		next++
	}
	return true
}

// IsSetMonotonicallyDominated reports whether every word of set2 dominates some word of set1
func IsSetMonotonicallyDominated[L cmp.Ordered](set1, set2 []CanonicalWord[L]) bool {
	return lo.EveryBy(set2, func(w2 CanonicalWord[L]) bool {
		return lo.SomeBy(set1, func(w1 CanonicalWord[L]) bool { return IsMonotonicallyDominated(w1, w2) })
	})
}
