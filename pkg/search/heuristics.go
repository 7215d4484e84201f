package search

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Cost orders the expansion of nodes, lower costs are expanded first. Costs of composite
// heuristics are compared lexicographically
type Cost []int64

func CompareCosts(a, b Cost) int {
	return slices.Compare(a, b)
}

type Heuristic[L cmp.Ordered] interface {
	ComputeCost(node *Node[L]) Cost
}

const (
	BfsHeuristicName                     = "bfs"
	DfsHeuristicName                     = "dfs"
	TimeHeuristicName                    = "time"
	RandomHeuristicName                  = "random"
	NumCanonicalWordsHeuristicName       = "num_words"
	PreferEnvironmentActionHeuristicName = "prefer_environment"
)

// BfsHeuristic expands shallow nodes first
type BfsHeuristic[L cmp.Ordered] struct{}

func (BfsHeuristic[L]) ComputeCost(node *Node[L]) Cost {
	return Cost{int64(node.Depth())}
}

// DfsHeuristic expands deep nodes first
type DfsHeuristic[L cmp.Ordered] struct{}

func (DfsHeuristic[L]) ComputeCost(node *Node[L]) Cost {
	return Cost{-int64(node.Depth())}
}

// TimeHeuristic expands nodes reachable within few region increments first
type TimeHeuristic[L cmp.Ordered] struct{}

func (TimeHeuristic[L]) ComputeCost(node *Node[L]) Cost {
	return Cost{int64(node.MinTotalRegionIncrements())}
}

// RandomHeuristic gives each node a pseudo-random cost derived from the seed and the node
type RandomHeuristic[L cmp.Ordered] struct {
	seed int64
}

func NewRandomHeuristic[L cmp.Ordered](seed int64) RandomHeuristic[L] {
	return RandomHeuristic[L]{seed: seed}
}

func (heuristic RandomHeuristic[L]) Seed() int64 {
	return heuristic.seed
}

func (heuristic RandomHeuristic[L]) ComputeCost(node *Node[L]) Cost {
	hash := fnv.New64a()
	_ = binary.Write(hash, binary.LittleEndian, heuristic.seed)
	_, _ = hash.Write([]byte(node.Key()))
	return Cost{int64(hash.Sum64() >> 1)}
}

// NumCanonicalWordsHeuristic expands nodes with few canonical words first
type NumCanonicalWordsHeuristic[L cmp.Ordered] struct{}

func (NumCanonicalWordsHeuristic[L]) ComputeCost(node *Node[L]) Cost {
	return Cost{int64(len(node.words))}
}

// PreferEnvironmentActionHeuristic expands nodes reached by an environment action first
type PreferEnvironmentActionHeuristic[L cmp.Ordered] struct {
	environmentActions map[string]bool
}

func NewPreferEnvironmentActionHeuristic[L cmp.Ordered](environmentActions []string) PreferEnvironmentActionHeuristic[L] {
	return PreferEnvironmentActionHeuristic[L]{
		environmentActions: lo.SliceToMap(environmentActions, func(action string) (string, bool) { return action, true }),
	}
}

func (heuristic PreferEnvironmentActionHeuristic[L]) ComputeCost(node *Node[L]) Cost {
	if lo.SomeBy(node.IncomingActions(), func(action TimedAction) bool { return heuristic.environmentActions[action.Action] }) {
		return Cost{0}
	}
	return Cost{1}
}

// CompositeHeuristic concatenates the costs of its heuristics
type CompositeHeuristic[L cmp.Ordered] struct {
	heuristics []Heuristic[L]
}

func NewCompositeHeuristic[L cmp.Ordered](heuristics ...Heuristic[L]) CompositeHeuristic[L] {
	return CompositeHeuristic[L]{heuristics: heuristics}
}

func (heuristic CompositeHeuristic[L]) ComputeCost(node *Node[L]) Cost {
	cost := make(Cost, 0, len(heuristic.heuristics))
	for _, sub := range heuristic.heuristics {
		cost = append(cost, sub.ComputeCost(node)...)
	}
	return cost
}

// NewHeuristic builds the heuristic with the given name, a comma-separated list of names
// builds a composite heuristic
func NewHeuristic[L cmp.Ordered](name string, environmentActions []string, seed int64) (Heuristic[L], error) {
	names := lo.Map(strings.Split(name, ","), func(name string, _ int) string { return strings.TrimSpace(name) })
	if len(names) > 1 {
		heuristics := make([]Heuristic[L], 0, len(names))
		for _, name := range names {
			heuristic, err := NewHeuristic[L](name, environmentActions, seed)
			if err != nil {
				return nil, err
			}
			heuristics = append(heuristics, heuristic)
		}
		return NewCompositeHeuristic(heuristics...), nil
	}

	switch names[0] {
	case BfsHeuristicName:
		return BfsHeuristic[L]{}, nil
	case DfsHeuristicName:
		return DfsHeuristic[L]{}, nil
	case TimeHeuristicName:
		return TimeHeuristic[L]{}, nil
	case RandomHeuristicName:
		return NewRandomHeuristic[L](seed), nil
	case NumCanonicalWordsHeuristicName:
		return NumCanonicalWordsHeuristic[L]{}, nil
	case PreferEnvironmentActionHeuristicName:
		return NewPreferEnvironmentActionHeuristic[L](environmentActions), nil
	default:
		return nil, fmt.Errorf("unknown heuristic %q", names[0])
	}
}
