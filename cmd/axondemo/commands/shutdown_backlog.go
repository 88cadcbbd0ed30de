package commands

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/quadgatefoundation/axon/pkg/axon"
	"github.com/spf13/cobra"
)

type backlogMsg struct{ n int }

var shutdownBacklogSize int

var shutdownBacklogCmd = &cobra.Command{
	Use:   "shutdown-backlog",
	Short: "Queue a backlog then shut down immediately, showing the remainder drains to the fallback handler",
	RunE:  runShutdownBacklog,
}

func init() {
	shutdownBacklogCmd.Flags().IntVar(&shutdownBacklogSize, "n", 500, "number of messages to queue before shutdown")
}

func runShutdownBacklog(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	cfg.WorkerCount = 1 // a single worker makes the race between processing and Shutdown visible
	fw, err := axon.New(cfg)
	if err != nil {
		return err
	}

	var processed, dropped int64
	fw.SetFallback(func(from axon.Address, msg interface{}) {
		atomic.AddInt64(&dropped, 1)
	})

	addr, err := fw.CreateActor(func(ctx *axon.ActorContext) {
		axon.RegisterHandler(ctx, func(ctx *axon.ActorContext, from axon.Address, msg backlogMsg) {
			time.Sleep(2 * time.Millisecond) // slow enough that Shutdown reliably catches a backlog
			atomic.AddInt64(&processed, 1)
		})
	})
	if err != nil {
		return err
	}

	for i := 0; i < shutdownBacklogSize; i++ {
		if err := fw.Send(addr, backlogMsg{n: i}); err != nil {
			return err
		}
	}

	fw.Shutdown()

	fmt.Printf("queued %d messages: %d processed, %d drained to the fallback handler at shutdown\n",
		shutdownBacklogSize, atomic.LoadInt64(&processed), atomic.LoadInt64(&dropped))
	return nil
}
