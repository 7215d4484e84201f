package search

import (
	"fmt"
	"runtime"

	"github.com/mitchellh/mapstructure"
)

type Config struct {
	// LargestConstant overrides the largest constant taken from the plant and the automaton
	LargestConstant *uint `mapstructure:"largest_constant"`
	// Heuristic is a heuristic name or a comma-separated list of names
	Heuristic string `mapstructure:"heuristic"`
	Seed      int64  `mapstructure:"seed"`
	Threads   int    `mapstructure:"threads"`
	// IncrementalLabeling labels nodes while the tree is built
	IncrementalLabeling bool `mapstructure:"incremental_labeling"`
	// TerminateEarly stops the search once the root is labeled, requires IncrementalLabeling
	TerminateEarly bool `mapstructure:"terminate_early"`
	// UseLocationConstraints makes the automaton read the plant's locations instead of its actions
	UseLocationConstraints bool `mapstructure:"use_location_constraints"`
}

func DefaultConfig() Config {
	return Config{
		Heuristic: TimeHeuristicName,
		Seed:      1,
		Threads:   runtime.NumCPU(),
	}
}

// ConfigFromMap decodes a configuration, missing keys keep their default value
func ConfigFromMap(raw map[string]any) (Config, error) {
	config := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("cannot decode search configuration: %w", err)
	}
	return config, config.Validate()
}

func (config Config) Validate() error {
	if config.Threads < 1 {
		return fmt.Errorf("search needs at least one thread, got %d", config.Threads)
	} else if config.TerminateEarly && !config.IncrementalLabeling {
		return fmt.Errorf("early termination requires incremental labeling")
	}
	return nil
}
