package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/limaJavier/tacos/pkg/automata/ta"
	"github.com/limaJavier/tacos/pkg/problem"
	"github.com/limaJavier/tacos/pkg/search"
	"github.com/limaJavier/tacos/pkg/synthesis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
)

var validHeuristics = []string{
	search.BfsHeuristicName,
	search.DfsHeuristicName,
	search.TimeHeuristicName,
	search.RandomHeuristicName,
	search.NumCanonicalWordsHeuristicName,
	search.PreferEnvironmentActionHeuristicName,
}

type TransitionOutput struct {
	Source string   `json:"source"`
	Symbol string   `json:"symbol"`
	Target string   `json:"target"`
	Guard  []string `json:"guard"`
}

type ControllerOutput struct {
	InitialLocation string             `json:"initialLocation"`
	Locations       []string           `json:"locations"`
	Clocks          []string           `json:"clocks"`
	Actions         []string           `json:"actions"`
	Transitions     []TransitionOutput `json:"transitions"`
}

type Output struct {
	Id         string            `json:"id"`
	Verdict    string            `json:"verdict"`
	Nodes      int               `json:"nodes"`
	Duration   int64             `json:"durationMs"`
	Constant   uint              `json:"largestConstant"`
	Controller *ControllerOutput `json:"controller,omitempty"`
}

func main() {
	//** Define arguments
	filePathPtr := flag.String("file", "", "Path to the problem file")
	threadsPtr := flag.Int("threads", 0, "Number of worker threads; if 0, the value of the problem file (or the number of CPUs) is used")
	heuristicPtr := flag.String("heuristic", "", fmt.Sprintf("Node ordering heuristic, a comma-separated combination of %v; if empty, the value of the problem file is used", strings.Join(validHeuristics, ", ")))
	constantPtr := flag.Int("constant", -1, "Largest constant of the region abstraction; if negative, it's computed from the plant and the objective")
	outFilePathPtr := flag.String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	metricsFilePathPtr := flag.String("metrics", "", "Path to a file where search metrics will be written in the Prometheus text format")
	verbosePtr := flag.Bool("verbose", false, "Log every search step")
	flag.Parse()
	filePath := *filePathPtr
	heuristic := strings.ToLower(*heuristicPtr)
	outFile := *outFilePathPtr

	//** Validate arguments
	if filePath == "" {
		log.Fatal("an input file must be specified")
	} else if *threadsPtr < 0 {
		log.Fatalf("threads must be a non-negative number: %v", *threadsPtr)
	} else if invalid, ok := lo.Find(strings.Split(heuristic, ","), func(name string) bool {
		return heuristic != "" && !slices.Contains(validHeuristics, strings.TrimSpace(name))
	}); ok {
		log.Fatalf("%v is not a valid heuristic", invalid)
	}
	setLogger(*verbosePtr)

	//** Extract input
	input, err := problem.ProblemFromJson(filePath)
	if err != nil {
		log.Fatalf("cannot parse input file: %v", err)
	}
	input.Search = lo.Assign(defaultSearch(), input.Search)
	if heuristic != "" {
		input.Search["heuristic"] = heuristic
	}
	if *threadsPtr > 0 {
		input.Search["threads"] = *threadsPtr
	}
	if *constantPtr >= 0 {
		input.Search["largest_constant"] = *constantPtr
	}

	plant, err := input.Plant()
	if err != nil {
		log.Fatalf("invalid plant: %v", err)
	}
	objective, err := input.Formula()
	if err != nil {
		log.Fatalf("invalid objective: %v", err)
	}
	config, err := input.Config()
	if err != nil {
		log.Fatalf("invalid search configuration: %v", err)
	}

	//** Synthesize controller
	result, err := synthesis.Synthesize(context.Background(), plant, objective, input.ControllerActions, input.EnvironmentActions, config)
	if err != nil {
		log.Fatalf("an error occurred during controller synthesis: %v", err)
	}

	//** Export metrics
	if *metricsFilePathPtr != "" {
		if err := prometheus.WriteToTextfile(*metricsFilePathPtr, prometheus.DefaultGatherer); err != nil {
			log.Fatalf("an error occurred while writing metrics: %v", err)
		}
	}

	//** Marshal output into json
	output := Output{
		Id:       result.ID,
		Verdict:  result.Verdict.String(),
		Nodes:    result.Size,
		Duration: result.Duration.Milliseconds(),
		Constant: result.Search.LargestConstant(),
	}
	if result.Controller != nil {
		output.Controller = controllerOutput(result.Controller)
	}
	outputJson, err := json.Marshal(output)
	if err != nil {
		log.Fatalf("an error occurred while building output json: %v", err)
	}

	//** Write output
	if outFile == "" {
		fmt.Println(string(outputJson))
	} else {
		err := os.WriteFile(outFile, outputJson, 0666)
		if err != nil {
			log.Fatalf("an error occurred while writing to the output file: %v", err)
		}
	}

	if !result.ControllerExists() {
		os.Exit(20)
	}
	os.Exit(10)
}

func controllerOutput(controller *ta.TimedAutomaton[string, string]) *ControllerOutput {
	return &ControllerOutput{
		InitialLocation: controller.InitialLocation(),
		Locations:       controller.Locations(),
		Clocks:          controller.Clocks(),
		Actions:         controller.Alphabet(),
		Transitions: lo.Map(controller.Transitions(), func(transition ta.Transition[string, string], _ int) TransitionOutput {
			return TransitionOutput{
				Source: transition.Source,
				Symbol: transition.Symbol,
				Target: transition.Target,
				Guard:  lo.Map(transition.Guard, func(constraint automata.AtomicClockConstraint, _ int) string { return constraint.String() }),
			}
		}),
	}
}

// defaultSearch reads the search defaults from the config.json next to the executable, if any
func defaultSearch() map[string]any {
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("cannot determine executable path: %v", err)
	}
	bytes, err := os.ReadFile(path.Join(path.Dir(execPath), "config.json"))
	if os.IsNotExist(err) {
		return map[string]any{}
	} else if err != nil {
		log.Fatalf("cannot read config.json: %v", err)
	}

	var defaults map[string]any
	if err := json.Unmarshal(bytes, &defaults); err != nil {
		log.Fatalf("cannot parse config.json: %v", err)
	}
	return defaults
}

func setLogger(verbose bool) {
	level := lo.Ternary(verbose, slog.LevelDebug, slog.LevelInfo)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
