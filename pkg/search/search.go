package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/limaJavier/tacos/pkg/automata/ata"
	"github.com/limaJavier/tacos/pkg/pool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const labelEventBuffer = 1024

var tracer = otel.Tracer("github.com/limaJavier/tacos/pkg/search")

// TreeSearch explores the region abstraction of a plant synchronized with an automaton for the
// negated objective. A node is bad when both accept, the controller looks for a strategy that
// keeps every play away from bad nodes
type TreeSearch[L cmp.Ordered] struct {
	id                 string
	plant              Plant[L]
	automaton          *ata.AlternatingTimedAutomaton[string, string]
	controllerActions  map[string]bool
	environmentActions map[string]bool
	largestConstant    uint
	config             Config
	heuristic          Heuristic[L]
	tree               *Tree[L]
	pool               *pool.ThreadPool[Cost]
	logger             *slog.Logger
	events             chan *Node[L]

	errMutex sync.Mutex
	err      error
}

// NewTreeSearch creates a search whose root abstracts the initial configurations. Every plant
// action must be either a controller or an environment action
func NewTreeSearch[L cmp.Ordered](plant Plant[L], automaton *ata.AlternatingTimedAutomaton[string, string], controllerActions, environmentActions []string, config Config) (*TreeSearch[L], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if shared := lo.Intersect(controllerActions, environmentActions); len(shared) > 0 {
		return nil, fmt.Errorf("actions %v are both controller and environment actions", shared)
	}
	for _, action := range plant.Alphabet() {
		if !slices.Contains(controllerActions, action) && !slices.Contains(environmentActions, action) {
			return nil, fmt.Errorf("plant action is neither a controller nor an environment action: %w", automata.InvalidSymbolError{Symbol: action})
		}
	}

	largestConstant := max(plant.LargestConstant(), automaton.LargestConstant())
	if config.LargestConstant != nil {
		if *config.LargestConstant < largestConstant {
			return nil, fmt.Errorf("largest constant %d is below the constants of the problem (%d)", *config.LargestConstant, largestConstant)
		}
		largestConstant = *config.LargestConstant
	}

	heuristic, err := NewHeuristic[L](config.Heuristic, environmentActions, config.Seed)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	search := &TreeSearch[L]{
		id:                 id,
		plant:              plant,
		automaton:          automaton,
		controllerActions:  lo.SliceToMap(controllerActions, func(action string) (string, bool) { return action, true }),
		environmentActions: lo.SliceToMap(environmentActions, func(action string) (string, bool) { return action, true }),
		largestConstant:    largestConstant,
		config:             config,
		heuristic:          heuristic,
		tree:               newTree[L](),
		pool:               pool.NewThreadPool(config.Threads, CompareCosts),
		logger:             slog.Default().With(slog.String("component", "search"), slog.String("search_id", id)),
	}

	word, err := GetCanonicalWord(plant.InitialConfiguration(), automaton.InitialConfiguration(), largestConstant)
	if err != nil {
		return nil, err
	}
	root, _ := search.tree.getOrCreate([]CanonicalWord[L]{word})
	root.makeRoot()
	nodesCreated.Inc()
	if err := search.enqueue(root); err != nil {
		return nil, err
	}
	return search, nil
}

func (search *TreeSearch[L]) ID() string { return search.id }

func (search *TreeSearch[L]) Root() *Node[L] { return search.tree.Root() }

func (search *TreeSearch[L]) Node(id NodeID) *Node[L] { return search.tree.Node(id) }

func (search *TreeSearch[L]) Nodes() []*Node[L] { return search.tree.Nodes() }

func (search *TreeSearch[L]) Size() int { return search.tree.Size() }

func (search *TreeSearch[L]) LargestConstant() uint { return search.largestConstant }

func (search *TreeSearch[L]) Config() Config { return search.config }

func (search *TreeSearch[L]) Heuristic() Heuristic[L] { return search.heuristic }

func (search *TreeSearch[L]) IsControllerAction(action string) bool {
	return search.controllerActions[action]
}

func (search *TreeSearch[L]) ControllerActions() []string {
	return slices.Sorted(maps.Keys(search.controllerActions))
}

// ControllerExists reports whether the root is labeled good
func (search *TreeSearch[L]) ControllerExists() bool {
	return search.Root().Label() == LabelGood
}

func (search *TreeSearch[L]) Verdict() NodeLabel {
	return search.Root().Label()
}

// Err returns the first error raised while expanding nodes
func (search *TreeSearch[L]) Err() error {
	search.errMutex.Lock()
	defer search.errMutex.Unlock()
	return search.err
}

// BuildTree expands nodes until none is left, the root is labeled with TerminateEarly, an
// expansion fails or the context is done. The multi-threaded mode can only run once
func (search *TreeSearch[L]) BuildTree(ctx context.Context, multiThreaded bool) error {
	mode := "single"
	if multiThreaded {
		mode = "multi"
	}
	ctx, span := tracer.Start(ctx, "search.BuildTree", trace.WithAttributes(
		attribute.String("search.id", search.id),
		attribute.String("search.mode", mode),
		attribute.Int("search.threads", search.config.Threads),
		attribute.Int("search.largest_constant", int(search.largestConstant)),
	))
	defer span.End()
	timer := prometheus.NewTimer(buildDuration.WithLabelValues(mode))
	defer timer.ObserveDuration()

	search.logger.Info("Building search tree", "mode", mode, "largest_constant", search.largestConstant, "heuristic", search.config.Heuristic)

	var err error
	if multiThreaded {
		err = search.buildConcurrently(ctx)
	} else {
		err = search.buildSequentially(ctx)
	}
	if err == nil {
		err = search.Err()
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		search.logger.Error("Search tree construction failed", "error", err)
		return err
	}

	span.SetAttributes(attribute.Int("search.nodes", search.Size()))
	search.logger.Info("Search tree built", "nodes", search.Size())
	return nil
}

func (search *TreeSearch[L]) buildConcurrently(ctx context.Context) error {
	if search.config.IncrementalLabeling {
		events := make(chan *Node[L], labelEventBuffer)
		done := make(chan struct{})
		search.events = events
		go search.runLabeler(events, done)
		defer func() {
			close(events)
			<-done
			search.events = nil
		}()
	}

	stop := context.AfterFunc(ctx, search.pool.Cancel)
	defer stop()
	if err := search.pool.Start(); err != nil {
		return err
	}
	search.pool.Wait()
	search.pool.Finish()
	return nil
}

func (search *TreeSearch[L]) buildSequentially(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, err := search.Step()
		if err != nil || !more {
			return err
		}
	}
}

// Step expands the node with the lowest cost and reports whether nodes remain to be expanded
func (search *TreeSearch[L]) Step() (bool, error) {
	_, run, ok, err := search.pool.Pop()
	if err != nil || !ok {
		return false, err
	}
	run()
	if err := search.Err(); err != nil {
		return false, err
	}
	if search.config.TerminateEarly && search.Root().Label() != LabelUnknown {
		return false, nil
	}
	return search.pool.Size() > 0, nil
}

// Label labels every node reachable from the root that is not labeled yet and returns the
// label of the root
func (search *TreeSearch[L]) Label() NodeLabel {
	root := search.Root()
	label := search.labelGraph(root, make(map[NodeID]bool))
	search.logger.Info("Search tree labeled", "root_label", label, "reason", root.LabelReason())
	return label
}

// IsBadNode reports whether some word of the node represents configurations where both the
// plant and the automaton accept
func (search *TreeSearch[L]) IsBadNode(node *Node[L]) bool {
	for _, word := range node.words {
		plantConfiguration, automatonConfiguration := Candidate(word)
		if search.plant.IsAcceptingConfiguration(plantConfiguration) && search.automaton.IsAcceptingConfiguration(automatonConfiguration) {
			return true
		}
	}
	return false
}

// hasSatisfiableAutomatonConfiguration reports whether some word avoids the sink location
func (search *TreeSearch[L]) hasSatisfiableAutomatonConfiguration(node *Node[L]) bool {
	if _, ok := search.automaton.SinkLocation(); !ok {
		return true
	}
	return lo.SomeBy(node.words, func(word CanonicalWord[L]) bool {
		return !containsAutomatonLocation(word, search.automaton.IsSinkLocation)
	})
}

func (search *TreeSearch[L]) enqueue(node *Node[L]) error {
	return search.pool.AddJob(search.heuristic.ComputeCost(node), func() { search.expandNode(node) })
}

func (search *TreeSearch[L]) expandNode(node *Node[L]) {
	if node.Label() != LabelUnknown || !node.claimExpansion() {
		return
	}

	state, reason, err := search.evaluate(node)
	if err != nil {
		node.finishExpansion()
		search.fail(fmt.Errorf("cannot expand node %d: %w", node.id, err))
		return
	}
	node.setState(state, reason)
	node.finishExpansion()
	nodesExpanded.WithLabelValues(state.String()).Inc()
	search.notify(node)
}

func (search *TreeSearch[L]) evaluate(node *Node[L]) (NodeState, LabelReason, error) {
	if len(node.words) == 0 {
		return StateBad, ReasonEmptyWordSet, nil
	}
	if search.IsBadNode(node) {
		return StateBad, ReasonBadNode, nil
	}
	if !search.hasSatisfiableAutomatonConfiguration(node) {
		return StateGood, ReasonNoAutomatonSuccessor, nil
	}
	if search.tree.dominatesAncestor(node) {
		return StateGood, ReasonMonotonicDomination, nil
	}

	children, err := search.expandChildren(node)
	if err != nil {
		return StateUnknown, ReasonUnknown, err
	} else if children == 0 {
		return StateDead, ReasonDeadNode, nil
	}
	return StateUnknown, ReasonUnknown, nil
}

// expandChildren adds one child per timed action and plant regions
func (search *TreeSearch[L]) expandChildren(node *Node[L]) (int, error) {
	//** Group successors by timed action and plant regions
	groups := make(map[TimedAction]map[string][]CanonicalWord[L])
	for _, word := range node.words {
		increment := uint(0)
		successors := TimeSuccessors(word, search.largestConstant)
		previous := RegA(successors[0])
		for i, successor := range successors {
			if regions := RegA(successor); i > 0 && !regions.Equal(previous) {
				increment++
				previous = regions
			}

			plantConfiguration, automatonConfiguration := Candidate(successor)
			next, err := NextCanonicalWords(search.plant, search.automaton, plantConfiguration, automatonConfiguration, search.largestConstant, search.config.UseLocationConstraints)
			if err != nil {
				return 0, err
			}
			for _, successor := range next {
				action := TimedAction{Increment: increment, Action: successor.Action}
				if groups[action] == nil {
					groups[action] = make(map[string][]CanonicalWord[L])
				}
				key := RegA(successor.Word).String()
				groups[action][key] = append(groups[action][key], successor.Word)
			}
		}
	}

	//** Create children
	children := 0
	for _, action := range slices.SortedFunc(maps.Keys(groups), TimedAction.Compare) {
		for _, key := range slices.Sorted(maps.Keys(groups[action])) {
			child, created := search.tree.getOrCreate(groups[action][key])
			if err := node.addChild(action, child); err != nil {
				return children, err
			}
			children++
			if !created {
				continue
			}
			nodesCreated.Inc()
			if err := search.enqueue(child); err != nil && !errors.Is(err, pool.ErrQueueClosed) {
				return children, err
			}
		}
	}
	return children, nil
}

func (search *TreeSearch[L]) notify(node *Node[L]) {
	if !search.config.IncrementalLabeling {
		return
	}
	if search.events != nil {
		search.events <- node
	} else {
		search.propagateLabels(node)
	}
}

// fail records the first error and stops the search
func (search *TreeSearch[L]) fail(err error) {
	search.errMutex.Lock()
	if search.err == nil {
		search.err = err
		search.logger.Error("Node expansion failed", "error", err)
	}
	search.errMutex.Unlock()
	search.pool.Cancel()
}
