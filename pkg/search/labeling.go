package search

import (
	"math"
)

const never = uint(math.MaxUint)

// labelByState labels nodes whose expansion already decided the outcome
func labelByState(state NodeState, reason LabelReason) (NodeLabel, LabelReason, bool) {
	switch state {
	case StateGood:
		return LabelGood, reason, true
	case StateDead:
		return LabelGood, ReasonDeadNode, true
	case StateBad:
		return LabelBad, reason, true
	default:
		return LabelUnknown, ReasonUnknown, false
	}
}

// actionLabels aggregates the labels of the outcomes of every timed action of the node. An
// action is good when all its outcomes are good and bad as soon as one outcome is bad
func (search *TreeSearch[L]) actionLabels(node *Node[L], labelOf func(*Node[L]) NodeLabel) map[TimedAction]NodeLabel {
	labels := make(map[TimedAction]NodeLabel)
	for action, ids := range node.Children() {
		label := LabelGood
		for _, id := range ids {
			switch labelOf(search.tree.Node(id)) {
			case LabelBad:
				label = LabelBad
			case LabelUnknown:
				if label == LabelGood {
					label = LabelUnknown
				}
			}
		}
		labels[action] = label
	}
	return labels
}

// decideLabel applies the game rules to the labels of the timed actions of a node. The
// controller wins if it can take a good action strictly before the environment can take a bad
// one, the environment wins if it can take a bad action no later than any good controller
// action. Without bad environment actions the node is good if the environment can act at all.
// Unknown labels may turn either way, LabelUnknown is returned when they matter
func (search *TreeSearch[L]) decideLabel(labels map[TimedAction]NodeLabel) (NodeLabel, LabelReason) {
	firstGoodController, firstOpenController := never, never
	firstBadEnvironment, firstOpenEnvironment := never, never
	hasEnvironmentAction, complete := false, true

	for action, label := range labels {
		if label == LabelUnknown {
			complete = false
		}
		if search.controllerActions[action.Action] {
			if label == LabelGood {
				firstGoodController = min(firstGoodController, action.Increment)
			}
			if label != LabelBad {
				firstOpenController = min(firstOpenController, action.Increment)
			}
		} else {
			hasEnvironmentAction = true
			if label == LabelBad {
				firstBadEnvironment = min(firstBadEnvironment, action.Increment)
			}
			if label != LabelGood {
				firstOpenEnvironment = min(firstOpenEnvironment, action.Increment)
			}
		}
	}

	switch {
	case firstGoodController < firstOpenEnvironment:
		return LabelGood, ReasonGoodControllerActionFirst
	case firstBadEnvironment != never && firstBadEnvironment <= firstOpenController:
		return LabelBad, ReasonBadEnvironmentActionFirst
	case !complete:
		return LabelUnknown, ReasonUnknown
	case hasEnvironmentAction:
		return LabelGood, ReasonNoBadEnvironmentAction
	default:
		return LabelBad, ReasonAllControllerActionsBad
	}
}

func (search *TreeSearch[L]) assignLabel(node *Node[L], label NodeLabel, reason LabelReason) {
	if node.setLabel(label, reason) {
		nodesLabeled.WithLabelValues(label.String()).Inc()
		search.logger.Debug("Labeled node", "node", node.id, "label", label, "reason", reason)
	}
}

// labelGraph labels the node and its unlabeled descendants bottom-up. A node met again on the
// current path counts as good: the controller can keep the play in the cycle forever
func (search *TreeSearch[L]) labelGraph(node *Node[L], onPath map[NodeID]bool) NodeLabel {
	if label := node.Label(); label != LabelUnknown {
		return label
	}
	if label, reason, ok := labelByState(node.State(), node.StateReason()); ok {
		search.assignLabel(node, label, reason)
		return label
	}
	if onPath[node.id] {
		return LabelGood
	}
	if !node.IsExpanded() {
		return LabelUnknown
	}

	onPath[node.id] = true
	labels := search.actionLabels(node, func(child *Node[L]) NodeLabel { return search.labelGraph(child, onPath) })
	delete(onPath, node.id)

	label, reason := search.decideLabel(labels)
	if label != LabelUnknown {
		search.assignLabel(node, label, reason)
	}
	return label
}

// tryLabel labels the node if its state or the labels of its children already decide it
func (search *TreeSearch[L]) tryLabel(node *Node[L]) bool {
	if label, reason, ok := labelByState(node.State(), node.StateReason()); ok {
		search.assignLabel(node, label, reason)
		return true
	}
	if !node.IsExpanded() {
		return false
	}
	label, reason := search.decideLabel(search.actionLabels(node, (*Node[L]).Label))
	if label == LabelUnknown {
		return false
	}
	search.assignLabel(node, label, reason)
	return true
}

// propagateLabels labels the origin if possible and then every ancestor whose label follows
func (search *TreeSearch[L]) propagateLabels(origin *Node[L]) {
	worklist := []*Node[L]{origin}
	for len(worklist) > 0 {
		node := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if node.Label() == LabelUnknown {
			if !search.tryLabel(node) {
				continue
			}
		} else if node != origin {
			continue
		}
		for _, parent := range node.Parents() {
			worklist = append(worklist, search.tree.Node(parent))
		}
	}

	if search.config.TerminateEarly && search.Root().Label() != LabelUnknown {
		search.pool.Cancel()
	}
}

// runLabeler serializes incremental labeling while workers expand nodes
func (search *TreeSearch[L]) runLabeler(events <-chan *Node[L], done chan<- struct{}) {
	defer close(done)
	for node := range events {
		search.propagateLabels(node)
	}
}
