package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/limaJavier/tacos/pkg/problem"
	"github.com/limaJavier/tacos/pkg/search"

	"github.com/samber/lo"
)

const (
	executablePath         = "../../bin/tacos"
	problemDirectory       = "../../pkg/problem/testdata/"
	MB               float32 = 1024
)

type ResultType int

const (
	controllable ResultType = iota
	uncontrollable
)

var (
	heuristics = []string{
		search.BfsHeuristicName,
		search.DfsHeuristicName,
		search.TimeHeuristicName,
		search.NumCanonicalWordsHeuristicName,
		search.PreferEnvironmentActionHeuristicName,
		search.PreferEnvironmentActionHeuristicName + "," + search.TimeHeuristicName,
	}
	threads     = []int{1, 2, 4}
	resultTypes = map[ResultType]string{
		controllable:   "controllable",
		uncontrollable: "uncontrollable",
	}
)

type TestMetadata struct {
	Name               string
	Plants             int
	Locations          int
	Clocks             int
	ControllerActions  int
	EnvironmentActions int
	Objective          string
}

type BenchmarkResult struct {
	Heuristic     string
	Threads       int
	Test          TestMetadata
	Nodes         int
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Result        ResultType
}

// synthesisOutput is the part of the CLI output the benchmark reports
type synthesisOutput struct {
	Verdict string `json:"verdict"`
	Nodes   int    `json:"nodes"`
}

func main() {
	tests := getTests()
	results := make([]BenchmarkResult, 0, len(tests)*len(heuristics)*len(threads))

	for _, test := range tests {
		for _, heuristic := range heuristics {
			for _, threadCount := range threads {
				fmt.Printf("Benchmarking test \"%v\" with heuristic \"%v\" and \"%v\" threads\n", test.Name, heuristic, threadCount)

				nodes, duration, maxMemory, cpuPercentage, result := measure(heuristic, threadCount, test.Name)

				results = append(results, BenchmarkResult{
					Heuristic:     heuristic,
					Threads:       threadCount,
					Test:          test,
					Nodes:         nodes,
					Duration:      duration,
					Memory:        maxMemory,
					CpuPercentage: cpuPercentage,
					Result:        result,
				})
			}
		}
	}

	toCsv(results)
}

func getTests() []TestMetadata {
	tests := make([]TestMetadata, 0)
	testFiles, err := os.ReadDir(problemDirectory)
	if err != nil {
		log.Fatalf("cannot read directory: %v", err)
	}

	for _, file := range testFiles {
		filename := problemDirectory + file.Name()
		input, err := problem.ProblemFromJson(filename)
		if err != nil {
			log.Fatalf("cannot parse input file: %v", err)
		}
		objective, err := input.Formula()
		if err != nil {
			log.Fatalf("cannot parse objective of %v: %v", filename, err)
		}

		tests = append(tests, TestMetadata{
			Name:               filename,
			Plants:             len(input.Plants),
			Locations:          lo.SumBy(input.Plants, func(plant problem.Plant) int { return len(plant.Locations) }),
			Clocks:             lo.SumBy(input.Plants, func(plant problem.Plant) int { return len(plant.Clocks) }),
			ControllerActions:  len(input.ControllerActions),
			EnvironmentActions: len(input.EnvironmentActions),
			Objective:          objective.String(),
		})
	}

	return tests
}

func measure(heuristic string, threadCount int, testFile string) (nodes int, duration int64, maxMemory float32, cpuPercentage int64, result ResultType) {
	cmd := exec.Command("/usr/bin/time", "-v", executablePath, "-heuristic", heuristic, "-threads", fmt.Sprint(threadCount), "-file", testFile)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	if cmd.ProcessState.ExitCode() != 10 && cmd.ProcessState.ExitCode() != 20 {
		log.Fatalf("an error occurred during the execution \"tacos\" at test \"%v\" using heuristic \"%v\" and \"%v\" threads: %v\n", testFile, heuristic, threadCount, stdErr.String())
	} else if cmd.ProcessState.ExitCode() == 20 {
		result = uncontrollable
	} else {
		result = controllable
	}

	var output synthesisOutput
	if err := json.Unmarshal(stdOut.Bytes(), &output); err != nil {
		log.Fatalf("cannot parse output of test \"%v\": %v", testFile, err)
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	duration = parseDurationLine(getLine("wall clock"))
	maxMemory = parseMemoryLine(getLine("maximum resident set size"))
	cpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))

	return output.Nodes, duration, maxMemory, cpuPercentage, result
}

func toCsv(results []BenchmarkResult) {
	file, err := os.Create("benchmark_results.csv")
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Heuristic", "Threads", "Test", "Plants", "Locations", "Clocks", "ControllerActions", "EnvironmentActions", "Objective", "Nodes", "Duration(ms)", "Memory(MB)", "CPU(%)", "Result"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		record := []string{
			result.Heuristic,
			fmt.Sprintf("%d", result.Threads),
			result.Test.Name,
			fmt.Sprintf("%d", result.Test.Plants),
			fmt.Sprintf("%d", result.Test.Locations),
			fmt.Sprintf("%d", result.Test.Clocks),
			fmt.Sprintf("%d", result.Test.ControllerActions),
			fmt.Sprintf("%d", result.Test.EnvironmentActions),
			result.Test.Objective,
			fmt.Sprintf("%d", result.Nodes),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.1f", result.Memory),
			fmt.Sprintf("%d", result.CpuPercentage),
			resultTypes[result.Result],
		}
		if err := writer.Write(record); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

// parseMemoryLine converts the resident set size reported in KB to MB
func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / MB
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
