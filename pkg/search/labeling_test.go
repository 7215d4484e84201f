package search

import (
	"log/slog"
	"testing"

	"github.com/limaJavier/tacos/pkg/pool"
	"github.com/stretchr/testify/assert"
)

// newLabelingSearch returns a search without plant that only manipulates hand-built trees.
// Action c belongs to the controller, action e to the environment
func newLabelingSearch(config Config) *TreeSearch[string] {
	return &TreeSearch[string]{
		tree:               newTree[string](),
		controllerActions:  map[string]bool{"c": true},
		environmentActions: map[string]bool{"e": true},
		config:             config,
		pool:               pool.NewThreadPool(1, CompareCosts),
		logger:             slog.Default(),
	}
}

// leaf creates a node whose only word places the plant in location
func leaf(search *TreeSearch[string], location string) *Node[string] {
	node, _ := search.tree.getOrCreate([]CanonicalWord[string]{word(partition(clockSymbol(location, "x", 0)))})
	return node
}

func expanded(node *Node[string], state NodeState, reason LabelReason) *Node[string] {
	node.setState(state, reason)
	node.finishExpansion()
	return node
}

func link(t *testing.T, parent *Node[string], increment uint, action string, children ...*Node[string]) {
	for _, child := range children {
		assert.Nil(t, parent.addChild(TimedAction{Increment: increment, Action: action}, child))
	}
}

func TestDecideLabel(t *testing.T) {
	search := newLabelingSearch(DefaultConfig())
	c := func(increment uint) TimedAction { return TimedAction{Increment: increment, Action: "c"} }
	e := func(increment uint) TimedAction { return TimedAction{Increment: increment, Action: "e"} }

	cases := []struct {
		name   string
		labels map[TimedAction]NodeLabel
		label  NodeLabel
		reason LabelReason
	}{
		{"Good controller action before bad environment action", map[TimedAction]NodeLabel{c(0): LabelGood, e(1): LabelBad}, LabelGood, ReasonGoodControllerActionFirst},
		{"Simultaneous actions favor the environment", map[TimedAction]NodeLabel{c(1): LabelGood, e(1): LabelBad}, LabelBad, ReasonBadEnvironmentActionFirst},
		{"Only good environment actions", map[TimedAction]NodeLabel{c(0): LabelBad, e(2): LabelGood}, LabelGood, ReasonNoBadEnvironmentAction},
		{"Only bad controller actions", map[TimedAction]NodeLabel{c(0): LabelBad, c(3): LabelBad}, LabelBad, ReasonAllControllerActionsBad},
		{"Unknown controller action may still win", map[TimedAction]NodeLabel{c(0): LabelUnknown, e(1): LabelBad}, LabelUnknown, ReasonUnknown},
		{"Unknown controller action comes too late", map[TimedAction]NodeLabel{c(0): LabelUnknown, e(0): LabelBad}, LabelBad, ReasonBadEnvironmentActionFirst},
		{"Unknown environment action may still win", map[TimedAction]NodeLabel{c(0): LabelGood, e(0): LabelUnknown}, LabelUnknown, ReasonUnknown},
		{"Unknown environment action comes too late", map[TimedAction]NodeLabel{c(0): LabelGood, e(1): LabelUnknown}, LabelGood, ReasonGoodControllerActionFirst},
		{"Bad controller action before good one", map[TimedAction]NodeLabel{c(0): LabelBad, c(2): LabelGood, e(2): LabelBad}, LabelBad, ReasonBadEnvironmentActionFirst},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			//** Act
			label, reason := search.decideLabel(tc.labels)

			//** Assert
			assert.Equal(t, tc.label, label)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestLabelGraph(t *testing.T) {
	t.Run("Nondeterministic outcomes are aggregated", func(t *testing.T) {
		//** Arrange
		search := newLabelingSearch(DefaultConfig())
		root := expanded(leaf(search, "root"), StateUnknown, ReasonUnknown)
		good := expanded(leaf(search, "good"), StateGood, ReasonNoAutomatonSuccessor)
		bad := expanded(leaf(search, "bad"), StateBad, ReasonBadNode)
		unknown := leaf(search, "unknown")
		link(t, root, 0, "e", good, unknown)
		link(t, root, 1, "e", good, bad)
		link(t, root, 2, "c", good)

		//** Act
		labels := search.actionLabels(root, func(node *Node[string]) NodeLabel {
			if label, _, ok := labelByState(node.State(), node.StateReason()); ok {
				return label
			}
			return LabelUnknown
		})

		//** Assert
		assert.Equal(t, map[TimedAction]NodeLabel{
			{Increment: 0, Action: "e"}: LabelUnknown,
			{Increment: 1, Action: "e"}: LabelBad,
			{Increment: 2, Action: "c"}: LabelGood,
		}, labels)
	})

	t.Run("Cycles are good for the controller", func(t *testing.T) {
		//** Arrange
		search := newLabelingSearch(DefaultConfig())
		root := expanded(leaf(search, "root"), StateUnknown, ReasonUnknown)
		loop := expanded(leaf(search, "loop"), StateUnknown, ReasonUnknown)
		bad := expanded(leaf(search, "bad"), StateBad, ReasonBadNode)
		link(t, root, 0, "c", loop)
		link(t, loop, 0, "c", root)
		link(t, loop, 2, "e", bad)

		//** Act
		label := search.Label()

		//** Assert
		assert.Equal(t, LabelGood, label)
		assert.Equal(t, LabelGood, loop.Label())
		assert.Equal(t, ReasonGoodControllerActionFirst, root.LabelReason())
		assert.Equal(t, LabelBad, bad.Label())
		assert.True(t, search.ControllerExists())
	})

	t.Run("Bad environment actions win ties", func(t *testing.T) {
		//** Arrange
		search := newLabelingSearch(DefaultConfig())
		root := expanded(leaf(search, "root"), StateUnknown, ReasonUnknown)
		safe := expanded(leaf(search, "safe"), StateGood, ReasonMonotonicDomination)
		bad := expanded(leaf(search, "bad"), StateBad, ReasonBadNode)
		link(t, root, 1, "c", safe)
		link(t, root, 1, "e", bad)

		//** Act
		label := search.Label()

		//** Assert
		assert.Equal(t, LabelBad, label)
		assert.Equal(t, ReasonBadEnvironmentActionFirst, root.LabelReason())
		assert.False(t, search.ControllerExists())
	})

	t.Run("Dead nodes are good", func(t *testing.T) {
		//** Arrange
		search := newLabelingSearch(DefaultConfig())
		root := expanded(leaf(search, "root"), StateUnknown, ReasonUnknown)
		dead := expanded(leaf(search, "dead"), StateDead, ReasonDeadNode)
		link(t, root, 0, "e", dead)

		//** Act
		label := search.Label()

		//** Assert
		assert.Equal(t, LabelGood, label)
		assert.Equal(t, ReasonNoBadEnvironmentAction, root.LabelReason())
		assert.Equal(t, ReasonDeadNode, dead.LabelReason())
	})

	t.Run("Unexpanded nodes stay unknown", func(t *testing.T) {
		//** Arrange
		search := newLabelingSearch(DefaultConfig())
		root := expanded(leaf(search, "root"), StateUnknown, ReasonUnknown)
		pending := leaf(search, "pending")
		link(t, root, 0, "e", pending)

		//** Act
		label := search.Label()

		//** Assert
		assert.Equal(t, LabelUnknown, label)
		assert.Equal(t, LabelUnknown, root.Label())
		assert.Equal(t, ReasonUnknown, root.LabelReason())
	})

	t.Run("Labels are final", func(t *testing.T) {
		//** Arrange
		node := newNode[string](0, nil, "")

		//** Act
		first := node.setLabel(LabelBad, ReasonBadNode)
		second := node.setLabel(LabelGood, ReasonDeadNode)

		//** Assert
		assert.True(t, first)
		assert.False(t, second)
		assert.Equal(t, LabelBad, node.Label())
		assert.Equal(t, ReasonBadNode, node.LabelReason())
	})
}

func TestPropagateLabels(t *testing.T) {
	t.Run("Labels travel to the ancestors", func(t *testing.T) {
		//** Arrange
		search := newLabelingSearch(DefaultConfig())
		root := expanded(leaf(search, "root"), StateUnknown, ReasonUnknown)
		middle := expanded(leaf(search, "middle"), StateUnknown, ReasonUnknown)
		sibling := leaf(search, "sibling")
		bad := leaf(search, "bad")
		link(t, root, 0, "c", middle)
		link(t, root, 1, "e", sibling)
		link(t, middle, 0, "e", bad)

		//** Act
		expanded(bad, StateBad, ReasonBadNode)
		search.propagateLabels(bad)

		//** Assert
		assert.Equal(t, LabelBad, bad.Label())
		assert.Equal(t, LabelBad, middle.Label())
		assert.Equal(t, ReasonBadEnvironmentActionFirst, middle.LabelReason())
		assert.Equal(t, LabelUnknown, root.Label())
		assert.Equal(t, LabelUnknown, sibling.Label())
	})

	t.Run("Unexpanded parents wait for their own expansion", func(t *testing.T) {
		//** Arrange
		search := newLabelingSearch(DefaultConfig())
		root := leaf(search, "root")
		bad := expanded(leaf(search, "bad"), StateBad, ReasonBadNode)
		link(t, root, 0, "e", bad)

		//** Act
		search.propagateLabels(bad)
		before := root.Label()
		expanded(root, StateUnknown, ReasonUnknown)
		search.propagateLabels(root)

		//** Assert
		assert.Equal(t, LabelUnknown, before)
		assert.Equal(t, LabelBad, root.Label())
	})

	t.Run("Labeling the root cancels the pool", func(t *testing.T) {
		//** Arrange
		config := DefaultConfig()
		config.IncrementalLabeling = true
		config.TerminateEarly = true
		search := newLabelingSearch(config)
		root := expanded(leaf(search, "root"), StateUnknown, ReasonUnknown)
		good := expanded(leaf(search, "good"), StateGood, ReasonNoAutomatonSuccessor)
		link(t, root, 0, "c", good)

		//** Act
		search.propagateLabels(good)
		err := search.pool.AddJob(Cost{0}, func() {})

		//** Assert
		assert.Equal(t, LabelGood, root.Label())
		assert.ErrorIs(t, err, pool.ErrQueueClosed)
	})
}
