package commands

import (
	"fmt"
	"time"

	"github.com/quadgatefoundation/axon/pkg/axon"
	"github.com/spf13/cobra"
)

type workUnit struct{ id int }
type workResult struct{ id int }

var fanOutWorkers int

var fanOutCmd = &cobra.Command{
	Use:   "fan-out",
	Short: "Dispatch work from one sender to many actors, collecting results on a Receiver",
	RunE:  runFanOut,
}

func init() {
	fanOutCmd.Flags().IntVar(&fanOutWorkers, "n", 8, "number of worker actors")
}

func runFanOut(cmd *cobra.Command, args []string) error {
	fw, err := axon.New(buildConfig())
	if err != nil {
		return err
	}
	defer fw.Shutdown()

	recv, err := fw.CreateReceiver()
	if err != nil {
		return err
	}
	axon.RegisterReceiverHandler(recv, func(from axon.Address, msg workResult) {
		fmt.Printf("received result for unit %d from %s\n", msg.id, from)
	})

	var workers []axon.Address
	for i := 0; i < fanOutWorkers; i++ {
		addr, err := fw.CreateActor(func(ctx *axon.ActorContext) {
			axon.RegisterHandler(ctx, func(ctx *axon.ActorContext, from axon.Address, msg workUnit) {
				ctx.Send(recv.Address(), workResult{id: msg.id})
			})
		})
		if err != nil {
			return err
		}
		workers = append(workers, addr)
	}

	for i, addr := range workers {
		if err := fw.Send(addr, workUnit{id: i}); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		recv.Wait(uint64(fanOutWorkers))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		return fmt.Errorf("fan-out timed out after collecting %d/%d results", recv.ReceivedCount(), fanOutWorkers)
	}

	fmt.Printf("collected all %d results\n", recv.ReceivedCount())
	return nil
}
