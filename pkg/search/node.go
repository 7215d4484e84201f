package search

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

type NodeID int

type NodeState int32

const (
	StateUnknown NodeState = iota
	StateGood
	StateBad
	StateDead
)

func (state NodeState) String() string {
	switch state {
	case StateGood:
		return "GOOD"
	case StateBad:
		return "BAD"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

type NodeLabel int32

const (
	LabelUnknown NodeLabel = iota
	LabelGood
	LabelBad
)

func (label NodeLabel) String() string {
	switch label {
	case LabelGood:
		return "GOOD"
	case LabelBad:
		return "BAD"
	default:
		return "UNKNOWN"
	}
}

type LabelReason int32

const (
	ReasonUnknown LabelReason = iota
	ReasonBadNode
	ReasonDeadNode
	ReasonEmptyWordSet
	ReasonNoAutomatonSuccessor
	ReasonMonotonicDomination
	ReasonGoodControllerActionFirst
	ReasonNoBadEnvironmentAction
	ReasonAllControllerActionsBad
	ReasonBadEnvironmentActionFirst
)

func (reason LabelReason) String() string {
	switch reason {
	case ReasonBadNode:
		return "bad node"
	case ReasonDeadNode:
		return "dead node"
	case ReasonEmptyWordSet:
		return "empty word set"
	case ReasonNoAutomatonSuccessor:
		return "no automaton successor"
	case ReasonMonotonicDomination:
		return "monotonic domination"
	case ReasonGoodControllerActionFirst:
		return "good controller action first"
	case ReasonNoBadEnvironmentAction:
		return "no bad environment action"
	case ReasonAllControllerActionsBad:
		return "all controller actions bad"
	case ReasonBadEnvironmentActionFirst:
		return "bad environment action first"
	default:
		return "unknown"
	}
}

type ExpansionState int32

const (
	Unexpanded ExpansionState = iota
	Expanding
	Expanded
)

// TimedAction is an action taken after the plant's regions changed Increment times
type TimedAction struct {
	Increment uint
	Action    string
}

func (action TimedAction) Compare(other TimedAction) int {
	if c := cmp.Compare(action.Increment, other.Increment); c != 0 {
		return c
	}
	return cmp.Compare(action.Action, other.Action)
}

func (action TimedAction) String() string {
	return fmt.Sprintf("(%d, %s)", action.Increment, action.Action)
}

// Node is a set of canonical words sharing the same plant regions. Its children are grouped
// by timed action, several children for the same timed action are the possible outcomes of a
// nondeterministic plant
type Node[L cmp.Ordered] struct {
	id    NodeID
	words []CanonicalWord[L]
	key   string

	state       atomic.Int32
	stateReason atomic.Int32
	label       atomic.Int32
	labelReason atomic.Int32
	expansion   atomic.Int32

	mutex                    sync.RWMutex
	children                 map[TimedAction][]NodeID
	parents                  []NodeID
	incomingActions          []TimedAction
	depth                    int
	minTotalRegionIncrements uint
}

func newNode[L cmp.Ordered](id NodeID, words []CanonicalWord[L], key string) *Node[L] {
	return &Node[L]{
		id:                       id,
		words:                    words,
		key:                      key,
		children:                 make(map[TimedAction][]NodeID),
		depth:                    math.MaxInt,
		minTotalRegionIncrements: math.MaxUint,
	}
}

func (node *Node[L]) ID() NodeID { return node.id }

func (node *Node[L]) Words() []CanonicalWord[L] { return slices.Clone(node.words) }

func (node *Node[L]) Key() string { return node.key }

func (node *Node[L]) State() NodeState { return NodeState(node.state.Load()) }

func (node *Node[L]) StateReason() LabelReason { return LabelReason(node.stateReason.Load()) }

func (node *Node[L]) Label() NodeLabel { return NodeLabel(node.label.Load()) }

func (node *Node[L]) LabelReason() LabelReason { return LabelReason(node.labelReason.Load()) }

func (node *Node[L]) Expansion() ExpansionState { return ExpansionState(node.expansion.Load()) }

func (node *Node[L]) IsExpanded() bool { return node.Expansion() == Expanded }

// Children returns the children of the node by timed action
func (node *Node[L]) Children() map[TimedAction][]NodeID {
	node.mutex.RLock()
	defer node.mutex.RUnlock()
	children := make(map[TimedAction][]NodeID, len(node.children))
	for action, ids := range node.children {
		children[action] = slices.Clone(ids)
	}
	return children
}

// ChildActions returns the timed actions with at least one child, in increasing order
func (node *Node[L]) ChildActions() []TimedAction {
	node.mutex.RLock()
	defer node.mutex.RUnlock()
	return slices.SortedFunc(maps.Keys(node.children), TimedAction.Compare)
}

func (node *Node[L]) Parents() []NodeID {
	node.mutex.RLock()
	defer node.mutex.RUnlock()
	return slices.Clone(node.parents)
}

func (node *Node[L]) IncomingActions() []TimedAction {
	node.mutex.RLock()
	defer node.mutex.RUnlock()
	return slices.Clone(node.incomingActions)
}

// Depth is the length of the shortest known path from the root
func (node *Node[L]) Depth() int {
	node.mutex.RLock()
	defer node.mutex.RUnlock()
	return node.depth
}

// MinTotalRegionIncrements is the smallest sum of increments on a known path from the root
func (node *Node[L]) MinTotalRegionIncrements() uint {
	node.mutex.RLock()
	defer node.mutex.RUnlock()
	return node.minTotalRegionIncrements
}

func (node *Node[L]) String() string {
	return fmt.Sprintf("%d: %s", node.id, node.key)
}

// addChild links child under action. Each lock is held on its own so that two nodes adding
// each other concurrently cannot deadlock
func (node *Node[L]) addChild(action TimedAction, child *Node[L]) error {
	node.mutex.Lock()
	if slices.Contains(node.children[action], child.id) {
		node.mutex.Unlock()
		return fmt.Errorf("node %d already has child %d for action %v", node.id, child.id, action)
	}
	node.children[action] = append(node.children[action], child.id)
	depth, increments := node.depth, node.minTotalRegionIncrements
	node.mutex.Unlock()

	child.mutex.Lock()
	defer child.mutex.Unlock()
	child.parents = append(child.parents, node.id)
	child.incomingActions = append(child.incomingActions, action)
	child.depth = min(child.depth, depth+1)
	child.minTotalRegionIncrements = min(child.minTotalRegionIncrements, increments+action.Increment)
	return nil
}

func (node *Node[L]) makeRoot() {
	node.mutex.Lock()
	defer node.mutex.Unlock()
	node.depth = 0
	node.minTotalRegionIncrements = 0
}

func (node *Node[L]) claimExpansion() bool {
	return node.expansion.CompareAndSwap(int32(Unexpanded), int32(Expanding))
}

func (node *Node[L]) finishExpansion() {
	node.expansion.Store(int32(Expanded))
}

func (node *Node[L]) setState(state NodeState, reason LabelReason) {
	node.stateReason.Store(int32(reason))
	node.state.Store(int32(state))
}

// setLabel labels the node once, later labels are ignored
func (node *Node[L]) setLabel(label NodeLabel, reason LabelReason) bool {
	if !node.label.CompareAndSwap(int32(LabelUnknown), int32(label)) {
		return false
	}
	node.labelReason.Store(int32(reason))
	return true
}
