package controller

import (
	"context"
	"testing"

	"github.com/limaJavier/tacos/pkg/arithmetic"
	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/limaJavier/tacos/pkg/automata/ta"
	"github.com/limaJavier/tacos/pkg/mtl"
	"github.com/limaJavier/tacos/pkg/search"
	"github.com/limaJavier/tacos/pkg/translator"
	"github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func constraint(clock string, operator automata.ComparisonOperator, comparand uint) automata.AtomicClockConstraint {
	return automata.AtomicClockConstraint{Clock: clock, Constraint: automata.ClockConstraint{Operator: operator, Comparand: comparand}}
}

// labeledSearch solves the problem of a plant that fails once x exceeds 1 unless the controller
// resets x, which it may only do while resetGuard holds
func labeledSearch(t *testing.T, resetGuard []automata.AtomicClockConstraint) *search.TreeSearch[string] {
	plant, err := ta.NewTimedAutomaton(
		[]string{"l0"},
		[]string{"fail", "reset"},
		"l0",
		[]string{"l0"},
		[]string{"x"},
		[]ta.Transition[string, string]{
			{Source: "l0", Symbol: "fail", Target: "l0", Guard: []automata.AtomicClockConstraint{constraint("x", automata.Greater, 1)}},
			{Source: "l0", Symbol: "reset", Target: "l0", Guard: resetGuard, Resets: []string{"x"}},
		},
	)
	assert.Nil(t, err)
	automaton, err := translator.Translate(mtl.Finally(mtl.AP("fail"), arithmetic.NewUnboundedInterval()), []string{"fail", "reset"})
	assert.Nil(t, err)

	config := search.DefaultConfig()
	config.Threads = 1
	treeSearch, err := search.NewTreeSearch[string](plant, automaton, []string{"reset"}, []string{"fail"}, config)
	assert.Nil(t, err)
	assert.Nil(t, treeSearch.BuildTree(context.Background(), false))
	treeSearch.Label()
	return treeSearch
}

func word(partitions ...search.Partition[string]) search.CanonicalWord[string] {
	return search.CanonicalWord[string](partitions)
}

func clock(name string, region ta.RegionIndex) search.Partition[string] {
	return search.NewPartition(search.PlantRegionState("s0", name, region))
}

func TestGuards(t *testing.T) {
	t.Run("Single increments describe one region", func(t *testing.T) {
		//** Arrange
		regions := word(clock("c1", 0), clock("c2", 1))

		//** Act
		guards := Guards(regions, []uint{1}, 3)

		//** Assert
		assert.Equal(t, [][]automata.AtomicClockConstraint{{
			constraint("c1", automata.Greater, 0),
			constraint("c1", automata.Less, 1),
			constraint("c2", automata.Greater, 0),
			constraint("c2", automata.Less, 1),
		}}, guards)
	})

	t.Run("Consecutive increments are merged", func(t *testing.T) {
		//** Arrange
		regions := word(clock("c1", 0), clock("c2", 1))

		//** Act
		guards := Guards(regions, []uint{2, 1}, 3)

		//** Assert
		assert.Equal(t, [][]automata.AtomicClockConstraint{{
			constraint("c1", automata.Greater, 0),
			constraint("c2", automata.Greater, 0),
			constraint("c2", automata.LessEqual, 1),
			constraint("c1", automata.Less, 1),
		}}, guards)
	})

	t.Run("Gaps split the guards", func(t *testing.T) {
		//** Arrange
		regions := word(search.NewPartition(search.PlantRegionState("l0", "x", 0)))

		//** Act
		guards := Guards(regions, []uint{5, 0, 2, 3, 3}, 1)

		//** Assert
		assert.Equal(t, [][]automata.AtomicClockConstraint{
			{constraint("x", automata.Equal, 0)},
			{constraint("x", automata.GreaterEqual, 1)},
			{constraint("x", automata.Greater, 1)},
		}, guards)
	})
}

func TestCreate(t *testing.T) {
	t.Run("Minimized controllers reset as early as possible", func(t *testing.T) {
		//** Arrange
		treeSearch := labeledSearch(t, nil)

		//** Act
		controller, err := Create[string](treeSearch, true)

		//** Assert
		assert.Nil(t, err)
		assert.Equal(t, []string{"reset"}, controller.Alphabet())
		assert.Equal(t, []string{"x"}, controller.Clocks())
		assert.Len(t, controller.Locations(), 2)
		assert.Equal(t, controller.Locations(), controller.FinalLocations())
		assert.Equal(t, treeSearch.Root().Key(), controller.InitialLocation())
		transitions := controller.Transitions()
		gomega.NewWithT(t).Expect(transitions).To(gomega.HaveLen(2))
		for _, transition := range transitions {
			assert.Equal(t, "reset", transition.Symbol)
			assert.Equal(t, []automata.AtomicClockConstraint{constraint("x", automata.Equal, 0)}, transition.Guard)
		}
	})

	t.Run("Full controllers keep every good action", func(t *testing.T) {
		//** Arrange
		treeSearch := labeledSearch(t, nil)

		//** Act
		controller, err := Create[string](treeSearch, false)

		//** Assert
		assert.Nil(t, err)
		assert.Equal(t, []string{"reset"}, controller.Alphabet())
		rootGuards := lo.FilterMap(controller.Transitions(), func(transition ta.Transition[string, string], _ int) ([]automata.AtomicClockConstraint, bool) {
			return transition.Guard, transition.Source == treeSearch.Root().Key()
		})
		gomega.NewWithT(t).Expect(rootGuards).To(gomega.ConsistOf(
			[]automata.AtomicClockConstraint{constraint("x", automata.Equal, 0)},
			[]automata.AtomicClockConstraint{constraint("x", automata.Greater, 0), constraint("x", automata.Less, 1)},
			[]automata.AtomicClockConstraint{constraint("x", automata.Equal, 1)},
			[]automata.AtomicClockConstraint{constraint("x", automata.Greater, 1)},
		))
	})

	t.Run("Unsolved searches have no controller", func(t *testing.T) {
		//** Arrange
		treeSearch := labeledSearch(t, []automata.AtomicClockConstraint{constraint("x", automata.Greater, 1)})

		//** Act
		_, err := Create[string](treeSearch, true)

		//** Assert
		assert.ErrorIs(t, err, ErrNoController)
	})
}
