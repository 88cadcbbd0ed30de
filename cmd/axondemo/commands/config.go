package commands

import "github.com/quadgatefoundation/axon/pkg/axon"

// buildConfig turns the root command's persistent flags into an
// axon.Config, applying axon.DefaultConfig for anything a scenario
// doesn't override.
func buildConfig() axon.Config {
	cfg := axon.DefaultConfig()
	cfg.WorkerCount = workerCount

	switch schedulerVariant {
	case "non_blocking":
		cfg.SchedulerVariant = axon.SchedulerNonBlocking
	default:
		cfg.SchedulerVariant = axon.SchedulerBlocking
	}

	switch yieldStrategy {
	case "strong":
		cfg.YieldStrategy = axon.YieldStrong
	case "aggressive":
		cfg.YieldStrategy = axon.YieldAggressive
	default:
		cfg.YieldStrategy = axon.YieldPolite
	}

	return cfg
}
