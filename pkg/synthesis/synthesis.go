package synthesis

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/limaJavier/tacos/pkg/automata/ata"
	"github.com/limaJavier/tacos/pkg/automata/ta"
	"github.com/limaJavier/tacos/pkg/controller"
	"github.com/limaJavier/tacos/pkg/mtl"
	"github.com/limaJavier/tacos/pkg/search"
	"github.com/limaJavier/tacos/pkg/translator"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/limaJavier/tacos/pkg/synthesis")

type Result[L cmp.Ordered] struct {
	ID       string
	Verdict  search.NodeLabel
	Size     int
	Duration time.Duration
	Search   *search.TreeSearch[L]
	// Controller is only set when a controller exists
	Controller *ta.TimedAutomaton[string, string]
}

func (result *Result[L]) ControllerExists() bool {
	return result.Verdict == search.LabelGood
}

// Alphabet is the alphabet the automaton of the objective reads: the plant's actions, or its
// locations with location constraints, together with the propositions of the objective
func Alphabet[L cmp.Ordered](plant *ta.TimedAutomaton[L, string], objective mtl.Formula, useLocationConstraints bool) []string {
	symbols := plant.Alphabet()
	if useLocationConstraints {
		symbols = lo.Map(plant.Locations(), func(location L, _ int) string { return fmt.Sprint(location) })
	}
	return slices.Compact(slices.Sorted(slices.Values(append(symbols, objective.Alphabet()...))))
}

// Synthesize decides whether the controller actions can be restricted so that every behavior of
// the plant satisfies the objective. The search looks for plays accepted by the automaton of the
// negated objective, a controller exists when it can avoid all of them
func Synthesize[L cmp.Ordered](ctx context.Context, plant *ta.TimedAutomaton[L, string], objective mtl.Formula, controllerActions, environmentActions []string, config search.Config) (*Result[L], error) {
	ctx, span := tracer.Start(ctx, "synthesis.Synthesize", trace.WithAttributes(
		attribute.String("synthesis.objective", objective.String()),
		attribute.StringSlice("synthesis.controller_actions", controllerActions),
		attribute.StringSlice("synthesis.environment_actions", environmentActions),
	))
	defer span.End()
	logger := slog.Default().With(slog.String("component", "synthesis"))
	start := time.Now()

	result, err := synthesize(ctx, plant, objective, controllerActions, environmentActions, config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.String("synthesis.id", result.ID),
		attribute.String("synthesis.verdict", result.Verdict.String()),
		attribute.Int("synthesis.size", result.Size),
	)
	logger.Info("Synthesis finished", "search_id", result.ID, "verdict", result.Verdict, "nodes", result.Size, "duration", result.Duration)
	return result, nil
}

func synthesize[L cmp.Ordered](ctx context.Context, plant *ta.TimedAutomaton[L, string], objective mtl.Formula, controllerActions, environmentActions []string, config search.Config) (*Result[L], error) {
	automaton, err := translate(ctx, mtl.Not(objective), Alphabet(plant, objective, config.UseLocationConstraints))
	if err != nil {
		return nil, fmt.Errorf("cannot translate objective %v: %w", objective, err)
	}

	treeSearch, err := search.NewTreeSearch[L](plant, automaton, controllerActions, environmentActions, config)
	if err != nil {
		return nil, err
	}
	if err := treeSearch.BuildTree(ctx, config.Threads > 1); err != nil {
		return nil, err
	}

	result := &Result[L]{
		ID:      treeSearch.ID(),
		Verdict: treeSearch.Label(),
		Size:    treeSearch.Size(),
		Search:  treeSearch,
	}
	if result.ControllerExists() {
		if result.Controller, err = controller.Create[L](treeSearch, true); err != nil {
			return nil, fmt.Errorf("cannot create controller: %w", err)
		}
	}
	return result, nil
}

func translate(ctx context.Context, formula mtl.Formula, alphabet []string) (*ata.AlternatingTimedAutomaton[string, string], error) {
	_, span := tracer.Start(ctx, "translator.Translate", trace.WithAttributes(
		attribute.String("translator.formula", formula.String()),
		attribute.StringSlice("translator.alphabet", alphabet),
	))
	defer span.End()

	automaton, err := translator.Translate(formula, alphabet)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("translator.largest_constant", int(automaton.LargestConstant())))
	return automaton, nil
}
