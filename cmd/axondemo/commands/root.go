package commands

import (
	"github.com/spf13/cobra"
)

var (
	// workerCount is the worker pool size used by every scenario.
	workerCount int

	// schedulerVariant selects blocking or non_blocking scheduling.
	schedulerVariant string

	// yieldStrategy selects polite, strong, or aggressive backoff.
	yieldStrategy string
)

// rootCmd is the base command for the demo CLI.
var rootCmd = &cobra.Command{
	Use:   "axondemo",
	Short: "Run inspectable scenarios against the axon actor runtime",
	Long: `axondemo drives small, self-contained scenarios against the axon
actor runtime so its scheduling, delivery, and shutdown behavior can be
observed from the outside: ping-pong exchanges, fan-out, address reuse
after deregistration, fallback routing, and shutdown with a backlog.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().IntVar(
		&workerCount, "workers", 4,
		"worker pool size",
	)
	rootCmd.PersistentFlags().StringVar(
		&schedulerVariant, "scheduler", "blocking",
		"scheduler variant: blocking or non_blocking",
	)
	rootCmd.PersistentFlags().StringVar(
		&yieldStrategy, "yield", "polite",
		"yield strategy for non_blocking: polite, strong, or aggressive",
	)

	rootCmd.AddCommand(pingPongCmd)
	rootCmd.AddCommand(fanOutCmd)
	rootCmd.AddCommand(addressReuseCmd)
	rootCmd.AddCommand(fallbackCmd)
	rootCmd.AddCommand(shutdownBacklogCmd)
}
