package stepflow

import (
	"fmt"

	"github.com/stepflow-go/stepflow/pkg/stepflow/checkpoint"
	"github.com/stepflow-go/stepflow/pkg/stepflow/config"
)

// OptionsFromConfig translates a config section into run options.
//
// Recognized keys:
//
//	max_steps                 int
//	metrics                   bool
//	tracing                   bool
//	checkpoint_failure_fatal  bool
//
// Unknown keys are ignored so traversal settings can share a file with
// the rest of an application. An out-of-range max_steps is an error
// rather than a panic because config values arrive at runtime.
func OptionsFromConfig(cfg config.Config) ([]RunOption, error) {
	var opts []RunOption

	if cfg.Has("max_steps") {
		n := cfg.Int("max_steps", DefaultMaxSteps)
		if n < 1 || n > MaxStepsLimit {
			return nil, fmt.Errorf("max_steps %d out of range [1, %d]", n, MaxStepsLimit)
		}
		opts = append(opts, WithMaxSteps(n))
	}
	if cfg.Has("metrics") {
		opts = append(opts, WithMetrics(cfg.Bool("metrics", false)))
	}
	if cfg.Has("tracing") {
		opts = append(opts, WithTracing(cfg.Bool("tracing", false)))
	}
	if cfg.Has("checkpoint_failure_fatal") {
		opts = append(opts, WithCheckpointFailureFatal(cfg.Bool("checkpoint_failure_fatal", false)))
	}
	return opts, nil
}

// StoreFromConfig opens the checkpoint store described by the
// "checkpoints" section:
//
//	checkpoints:
//	  enabled: true
//	  backend: sqlite       # or "memory"
//	  path: traversals.db   # sqlite only
//
// It returns nil when checkpointing is disabled or the section is
// absent. The caller owns the returned store and must Close it.
func StoreFromConfig(cfg config.Config) (checkpoint.Store, error) {
	section := cfg.Sub("checkpoints")
	if !section.Bool("enabled", false) {
		return nil, nil
	}
	backend := section.String("backend", "memory")
	switch backend {
	case "memory":
		return checkpoint.NewMemoryStore(), nil
	case "sqlite":
		path := section.String("path", "")
		if path == "" {
			return nil, fmt.Errorf("checkpoints: sqlite backend requires a path")
		}
		return checkpoint.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("checkpoints: unknown backend %q", backend)
	}
}
