package controller

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/limaJavier/tacos/pkg/automata/ta"
	"github.com/limaJavier/tacos/pkg/search"
	"github.com/samber/lo"
)

var ErrNoController = errors.New("root of the search tree is not labeled good")

// Tree is the part of a labeled search a controller is extracted from
type Tree[L cmp.Ordered] interface {
	Root() *search.Node[L]
	Node(id search.NodeID) *search.Node[L]
	LargestConstant() uint
	IsControllerAction(action string) bool
}

type edge struct {
	action string
	target search.NodeID
}

type builder[L cmp.Ordered] struct {
	tree       Tree[L]
	minimize   bool
	controller *ta.TimedAutomaton[string, string]
	logger     *slog.Logger
}

// Create builds a timed automaton from the good nodes of a labeled search tree. With minimize
// only the first good controller action of every node is kept
func Create[L cmp.Ordered](tree Tree[L], minimize bool) (*ta.TimedAutomaton[string, string], error) {
	//** Initialize controller
	root := tree.Root()
	if root.Label() != search.LabelGood {
		return nil, ErrNoController
	}

	controller, err := ta.NewTimedAutomaton([]string{root.Key()}, []string{}, root.Key(), []string{root.Key()}, []string{}, nil)
	if err != nil {
		return nil, err
	}
	builder := &builder[L]{
		tree:       tree,
		minimize:   minimize,
		controller: controller,
		logger:     slog.Default().With(slog.String("component", "controller")),
	}

	//** Traverse good nodes
	visited := map[search.NodeID]bool{root.ID(): true}
	pending := []*search.Node[L]{root}
	for len(pending) > 0 {
		node := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		targets, err := builder.addNode(node)
		if err != nil {
			return nil, err
		}
		for _, target := range targets {
			if !visited[target.ID()] {
				visited[target.ID()] = true
				pending = append(pending, target)
			}
		}
	}

	builder.logger.Info("Controller created", "locations", len(controller.Locations()), "transitions", len(controller.Transitions()))
	return controller, nil
}

// goodActions returns the timed actions of the node whose outcomes are all good, in increasing
// order
func (builder *builder[L]) goodActions(node *search.Node[L]) []search.TimedAction {
	children := node.Children()
	good := lo.Filter(node.ChildActions(), func(action search.TimedAction, _ int) bool {
		return lo.EveryBy(children[action], func(id search.NodeID) bool { return builder.tree.Node(id).Label() == search.LabelGood })
	})
	if !builder.minimize {
		return good
	}
	if first := slices.IndexFunc(good, func(action search.TimedAction) bool { return builder.tree.IsControllerAction(action.Action) }); first >= 0 {
		return good[:first+1]
	}
	return good
}

// addNode adds the transitions leaving the node and returns their targets
func (builder *builder[L]) addNode(node *search.Node[L]) ([]*search.Node[L], error) {
	words := node.Words()
	if len(words) == 0 {
		return nil, nil
	}
	regions := search.RegA(words[0])
	children := node.Children()

	//** Collect increments per edge
	increments := make(map[edge][]uint)
	for _, action := range builder.goodActions(node) {
		for _, id := range children[action] {
			key := edge{action: action.Action, target: id}
			increments[key] = append(increments[key], action.Increment)
		}
	}

	edges := slices.SortedFunc(maps.Keys(increments), func(a, b edge) int {
		if c := cmp.Compare(a.action, b.action); c != 0 {
			return c
		}
		return cmp.Compare(a.target, b.target)
	})
	//** Add transitions
	targets := make([]*search.Node[L], 0, len(edges))
	for _, key := range edges {
		target := builder.tree.Node(key.target)
		builder.controller.AddFinalLocation(target.Key())
		builder.controller.AddAction(key.action)
		for _, guard := range Guards(regions, increments[key], builder.tree.LargestConstant()) {
			for _, constraint := range guard {
				builder.controller.AddClock(constraint.Clock)
			}
			transition := ta.Transition[string, string]{Source: node.Key(), Symbol: key.action, Target: target.Key(), Guard: guard}
			if err := builder.controller.AddTransition(transition); err != nil {
				return nil, fmt.Errorf("cannot add controller transition for node %d: %w", node.ID(), err)
			}
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// Guards turns the region increments at which an action is taken into guards. Consecutive
// increments are merged into one guard bounded by the first and the last of them
func Guards[L cmp.Ordered](regions search.CanonicalWord[L], increments []uint, largestConstant uint) [][]automata.AtomicClockConstraint {
	increments = slices.Compact(slices.Sorted(slices.Values(increments)))
	guards := make([][]automata.AtomicClockConstraint, 0)
	for start := 0; start < len(increments); {
		end := start
		for end+1 < len(increments) && increments[end+1] == increments[end]+1 {
			end++
		}
		if start == end {
			guards = append(guards, constraintsAt(regions, increments[start], largestConstant, ta.BothBounds))
		} else {
			guards = append(guards, append(
				constraintsAt(regions, increments[start], largestConstant, ta.LowerBound),
				constraintsAt(regions, increments[end], largestConstant, ta.UpperBound)...,
			))
		}
		start = end + 1
	}
	return guards
}

// constraintsAt describes the plant regions reached after increment region changes
func constraintsAt[L cmp.Ordered](regions search.CanonicalWord[L], increment uint, largestConstant uint, bound ta.ConstraintBoundType) []automata.AtomicClockConstraint {
	maxIndex := ta.NewRegions(largestConstant).MaxRegionIndex()
	constraints := make([]automata.AtomicClockConstraint, 0)
	for _, partition := range search.NthTimeSuccessor(regions, increment, largestConstant) {
		for _, symbol := range partition {
			for _, constraint := range ta.ClockConstraintsFromRegionIndex(symbol.Region, maxIndex, bound) {
				constraints = append(constraints, automata.AtomicClockConstraint{Clock: symbol.Clock, Constraint: constraint})
			}
		}
	}
	return constraints
}
