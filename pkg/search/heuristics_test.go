package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// heuristicTree builds root -(0,c)-> shallow -(3,e)-> deep and root -(1,e)-> other
func heuristicTree(t *testing.T) (root, shallow, deep, other *Node[string]) {
	tree := newTree[string]()
	create := func(words ...CanonicalWord[string]) *Node[string] {
		node, _ := tree.getOrCreate(words)
		return node
	}
	root = create(word(partition(clockSymbol("l0", "x", 0))))
	shallow = create(word(partition(clockSymbol("l0", "x", 0), stateSymbol("a", 0))))
	deep = create(word(partition(clockSymbol("l1", "x", 0))), word(partition(clockSymbol("l1", "x", 0), stateSymbol("a", 0))))
	other = create(word(partition(clockSymbol("l2", "x", 1))))
	root.makeRoot()
	assert.Nil(t, root.addChild(TimedAction{Increment: 0, Action: "c"}, shallow))
	assert.Nil(t, shallow.addChild(TimedAction{Increment: 3, Action: "e"}, deep))
	assert.Nil(t, root.addChild(TimedAction{Increment: 1, Action: "e"}, other))
	return root, shallow, deep, other
}

func TestHeuristics(t *testing.T) {
	root, shallow, deep, other := heuristicTree(t)

	t.Run("Breadth first", func(t *testing.T) {
		//** Arrange
		heuristic := BfsHeuristic[string]{}

		//** Assert
		assert.Equal(t, Cost{0}, heuristic.ComputeCost(root))
		assert.Equal(t, Cost{1}, heuristic.ComputeCost(shallow))
		assert.Equal(t, Cost{2}, heuristic.ComputeCost(deep))
	})

	t.Run("Depth first", func(t *testing.T) {
		//** Arrange
		heuristic := DfsHeuristic[string]{}

		//** Assert
		assert.Negative(t, CompareCosts(heuristic.ComputeCost(deep), heuristic.ComputeCost(shallow)))
		assert.Negative(t, CompareCosts(heuristic.ComputeCost(shallow), heuristic.ComputeCost(root)))
	})

	t.Run("Time", func(t *testing.T) {
		//** Arrange
		heuristic := TimeHeuristic[string]{}

		//** Assert
		assert.Equal(t, Cost{0}, heuristic.ComputeCost(root))
		assert.Equal(t, Cost{0}, heuristic.ComputeCost(shallow))
		assert.Equal(t, Cost{3}, heuristic.ComputeCost(deep))
		assert.Equal(t, Cost{1}, heuristic.ComputeCost(other))
	})

	t.Run("Random costs are reproducible", func(t *testing.T) {
		//** Arrange
		first := NewRandomHeuristic[string](42)
		second := NewRandomHeuristic[string](42)

		//** Assert
		assert.Equal(t, int64(42), first.Seed())
		for _, node := range []*Node[string]{root, shallow, deep, other} {
			cost := first.ComputeCost(node)
			assert.Equal(t, cost, second.ComputeCost(node))
			assert.GreaterOrEqual(t, cost[0], int64(0))
		}
		assert.NotEqual(t, first.ComputeCost(root), first.ComputeCost(deep))
	})

	t.Run("Number of canonical words", func(t *testing.T) {
		//** Arrange
		heuristic := NumCanonicalWordsHeuristic[string]{}

		//** Assert
		assert.Equal(t, Cost{1}, heuristic.ComputeCost(shallow))
		assert.Equal(t, Cost{2}, heuristic.ComputeCost(deep))
	})

	t.Run("Environment actions first", func(t *testing.T) {
		//** Arrange
		heuristic := NewPreferEnvironmentActionHeuristic[string]([]string{"e"})

		//** Assert
		assert.Equal(t, Cost{1}, heuristic.ComputeCost(root))
		assert.Equal(t, Cost{1}, heuristic.ComputeCost(shallow))
		assert.Equal(t, Cost{0}, heuristic.ComputeCost(deep))
		assert.Equal(t, Cost{0}, heuristic.ComputeCost(other))
	})

	t.Run("Composite costs are compared lexicographically", func(t *testing.T) {
		//** Arrange
		heuristic := NewCompositeHeuristic[string](PreferEnvironmentActionHeuristic[string]{}, BfsHeuristic[string]{})

		//** Act
		cost := heuristic.ComputeCost(deep)

		//** Assert
		assert.Equal(t, Cost{1, 2}, cost)
		assert.Negative(t, CompareCosts(Cost{0, 5}, Cost{1, 0}))
		assert.Negative(t, CompareCosts(Cost{1, 0}, Cost{1, 1}))
		assert.Zero(t, CompareCosts(Cost{2, 3}, Cost{2, 3}))
	})

	t.Run("Heuristics by name", func(t *testing.T) {
		//** Act
		bfs, bfsErr := NewHeuristic[string]("bfs", nil, 1)
		random, randomErr := NewHeuristic[string]("random", nil, 7)
		composite, compositeErr := NewHeuristic[string]("prefer_environment, time", []string{"e"}, 1)
		_, unknownErr := NewHeuristic[string]("astar", nil, 1)
		_, nestedUnknownErr := NewHeuristic[string]("bfs,astar", nil, 1)

		//** Assert
		assert.Nil(t, bfsErr)
		assert.Nil(t, randomErr)
		assert.Nil(t, compositeErr)
		assert.IsType(t, BfsHeuristic[string]{}, bfs)
		assert.Equal(t, int64(7), random.(RandomHeuristic[string]).Seed())
		assert.Equal(t, Cost{0, 1}, composite.ComputeCost(other))
		assert.Equal(t, Cost{1, 0}, composite.ComputeCost(shallow))
		assert.Error(t, unknownErr)
		assert.Error(t, nestedUnknownErr)
	})
}
