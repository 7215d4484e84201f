package problem

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/limaJavier/tacos/pkg/arithmetic"
	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/limaJavier/tacos/pkg/automata/ta"
	"github.com/limaJavier/tacos/pkg/mtl"
	"github.com/limaJavier/tacos/pkg/search"
	"github.com/mitchellh/mapstructure"
)

type Constraint struct {
	Clock     string
	Operator  string
	Comparand uint
}

type Transition struct {
	Source string
	Symbol string
	Target string
	Guard  []Constraint
	Resets []string
}

type Plant struct {
	Locations       []string
	Alphabet        []string
	InitialLocation string   `mapstructure:"initial_location"`
	FinalLocations  []string `mapstructure:"final_locations"`
	Clocks          []string
	Transitions     []Transition
}

// Interval bounds are optional, a missing bound is unbounded. Bound types are "weak" (default)
// or "strict"
type Interval struct {
	Lower     *uint
	LowerType string `mapstructure:"lower_type"`
	Upper     *uint
	UpperType string `mapstructure:"upper_type"`
}

// Formula is an MTL formula tree. Operator is one of true, false, ap, not, and, or, implies,
// until, dual_until, finally and globally
type Formula struct {
	Operator    string
	Proposition string
	Interval    *Interval
	Operands    []Formula
}

type Problem struct {
	Plants             []Plant
	Synchronized       []string
	ControllerActions  []string `mapstructure:"controller_actions"`
	EnvironmentActions []string `mapstructure:"environment_actions"`
	Objective          Formula
	Search             map[string]any
}

type InvalidFormulaError struct {
	Operator string
	Reason   string
}

func (err InvalidFormulaError) Error() string {
	return fmt.Sprintf("invalid formula %q: %v", err.Operator, err.Reason)
}

func ProblemFromJson(file string) (Problem, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Problem{}, err
	}
	var problemJson map[string]any
	if err := json.Unmarshal(bytes, &problemJson); err != nil {
		return Problem{}, fmt.Errorf("cannot parse problem file %v: %w", file, err)
	}
	return Decode(problemJson)
}

func Decode(raw map[string]any) (Problem, error) {
	var problem Problem
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &problem,
		ErrorUnused: true,
	})
	if err != nil {
		return Problem{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Problem{}, fmt.Errorf("cannot decode problem: %w", err)
	}
	if len(problem.Plants) == 0 {
		return Problem{}, fmt.Errorf("a problem needs at least one plant")
	}
	return problem, nil
}

// Plant builds the plant automaton, several plants are composed into their product
func (problem Problem) Plant() (*ta.TimedAutomaton[string, string], error) {
	plants := make([]*ta.TimedAutomaton[string, string], 0, len(problem.Plants))
	for i, raw := range problem.Plants {
		plant, err := raw.automaton()
		if err != nil {
			return nil, fmt.Errorf("invalid plant %d: %w", i, err)
		}
		plants = append(plants, plant)
	}
	if len(plants) == 1 {
		return plants[0], nil
	}
	return ta.Product(plants, problem.Synchronized)
}

func (problem Problem) Formula() (mtl.Formula, error) {
	return problem.Objective.formula()
}

func (problem Problem) Config() (search.Config, error) {
	return search.ConfigFromMap(problem.Search)
}

func (plant Plant) automaton() (*ta.TimedAutomaton[string, string], error) {
	transitions := make([]ta.Transition[string, string], 0, len(plant.Transitions))
	for _, transition := range plant.Transitions {
		guard, err := guard(transition.Guard)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, ta.Transition[string, string]{
			Source: transition.Source,
			Symbol: transition.Symbol,
			Target: transition.Target,
			Guard:  guard,
			Resets: transition.Resets,
		})
	}
	return ta.NewTimedAutomaton(plant.Locations, plant.Alphabet, plant.InitialLocation, plant.FinalLocations, plant.Clocks, transitions)
}

func guard(constraints []Constraint) ([]automata.AtomicClockConstraint, error) {
	guard := make([]automata.AtomicClockConstraint, 0, len(constraints))
	for _, constraint := range constraints {
		operator, err := automata.ParseComparisonOperator(constraint.Operator)
		if err != nil {
			return nil, err
		}
		guard = append(guard, automata.AtomicClockConstraint{
			Clock:      constraint.Clock,
			Constraint: automata.ClockConstraint{Operator: operator, Comparand: constraint.Comparand},
		})
	}
	return guard, nil
}

var arities = map[string]int{
	"true":       0,
	"false":      0,
	"ap":         0,
	"not":        1,
	"finally":    1,
	"globally":   1,
	"implies":    2,
	"until":      2,
	"dual_until": 2,
}

func (formula Formula) formula() (mtl.Formula, error) {
	operands := make([]mtl.Formula, 0, len(formula.Operands))
	for _, operand := range formula.Operands {
		converted, err := operand.formula()
		if err != nil {
			return mtl.Formula{}, err
		}
		operands = append(operands, converted)
	}

	if arity, ok := arities[formula.Operator]; ok && arity != len(operands) {
		return mtl.Formula{}, InvalidFormulaError{Operator: formula.Operator, Reason: fmt.Sprintf("expected %d operands, got %d", arity, len(operands))}
	} else if (formula.Operator == "and" || formula.Operator == "or") && len(operands) == 0 {
		return mtl.Formula{}, InvalidFormulaError{Operator: formula.Operator, Reason: "expected at least one operand"}
	}
	interval, err := formula.Interval.interval()
	if err != nil {
		return mtl.Formula{}, InvalidFormulaError{Operator: formula.Operator, Reason: err.Error()}
	}

	switch formula.Operator {
	case "true":
		return mtl.True(), nil
	case "false":
		return mtl.False(), nil
	case "ap":
		if formula.Proposition == "" {
			return mtl.Formula{}, InvalidFormulaError{Operator: formula.Operator, Reason: "missing proposition"}
		}
		return mtl.AP(formula.Proposition), nil
	case "not":
		return mtl.Not(operands[0]), nil
	case "and":
		return mtl.And(operands...), nil
	case "or":
		return mtl.Or(operands...), nil
	case "implies":
		return mtl.Implies(operands[0], operands[1]), nil
	case "until":
		return mtl.Until(operands[0], operands[1], interval), nil
	case "dual_until":
		return mtl.DualUntil(operands[0], operands[1], interval), nil
	case "finally":
		return mtl.Finally(operands[0], interval), nil
	case "globally":
		return mtl.Globally(operands[0], interval), nil
	default:
		return mtl.Formula{}, InvalidFormulaError{Operator: formula.Operator, Reason: "unknown operator"}
	}
}

func (interval *Interval) interval() (arithmetic.Interval, error) {
	if interval == nil || (interval.Lower == nil && interval.Upper == nil) {
		return arithmetic.NewUnboundedInterval(), nil
	}
	lowerType, err := boundType(interval.LowerType)
	if err != nil {
		return arithmetic.Interval{}, err
	}
	upperType, err := boundType(interval.UpperType)
	if err != nil {
		return arithmetic.Interval{}, err
	}

	switch {
	case interval.Upper == nil:
		return arithmetic.NewLowerBoundedInterval(*interval.Lower, lowerType), nil
	case interval.Lower == nil:
		return arithmetic.NewUpperBoundedInterval(*interval.Upper, upperType), nil
	default:
		return arithmetic.NewInterval(*interval.Lower, lowerType, *interval.Upper, upperType), nil
	}
}

func boundType(name string) (arithmetic.BoundType, error) {
	types := map[string]arithmetic.BoundType{"": arithmetic.Weak, "weak": arithmetic.Weak, "strict": arithmetic.Strict}
	if bound, ok := types[name]; ok {
		return bound, nil
	}
	return 0, fmt.Errorf("unknown bound type %q, expected weak or strict", name)
}
