package commands

import (
	"fmt"
	"time"

	"github.com/quadgatefoundation/axon/pkg/axon"
	"github.com/spf13/cobra"
)

type pingMsg struct{ n int }
type pongMsg struct{ n int }

var pingPongRounds int

var pingPongCmd = &cobra.Command{
	Use:   "ping-pong",
	Short: "Bounce a counter between two actors for a fixed number of rounds",
	RunE:  runPingPong,
}

func init() {
	pingPongCmd.Flags().IntVar(&pingPongRounds, "rounds", 10, "number of round trips")
}

func runPingPong(cmd *cobra.Command, args []string) error {
	fw, err := axon.New(buildConfig())
	if err != nil {
		return err
	}
	defer fw.Shutdown()

	done := make(chan struct{})
	var pongAddr axon.Address

	pingAddr, err := fw.CreateActor(func(ctx *axon.ActorContext) {
		axon.RegisterHandler(ctx, func(ctx *axon.ActorContext, from axon.Address, msg pongMsg) {
			fmt.Printf("ping: received pong #%d from %s\n", msg.n, from)
			if msg.n >= pingPongRounds {
				close(done)
				return
			}
			if err := ctx.Send(pongAddr, pingMsg{n: msg.n + 1}); err != nil {
				fmt.Println("ping: send failed:", err)
			}
		})
	})
	if err != nil {
		return err
	}

	pongAddr, err = fw.CreateActor(func(ctx *axon.ActorContext) {
		axon.RegisterHandler(ctx, func(ctx *axon.ActorContext, from axon.Address, msg pingMsg) {
			fmt.Printf("pong: received ping #%d from %s\n", msg.n, from)
			if err := ctx.Send(pingAddr, pongMsg{n: msg.n}); err != nil {
				fmt.Println("pong: send failed:", err)
			}
		})
	})
	if err != nil {
		return err
	}

	if err := fw.Send(pongAddr, pingMsg{n: 1}); err != nil {
		return err
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		return fmt.Errorf("ping-pong timed out before completing %d rounds", pingPongRounds)
	}

	snap := fw.Counters()
	fmt.Printf("messages processed: %d, local pushes: %d, shared pushes: %d\n",
		snap.MessagesProcessed, snap.LocalPushes, snap.SharedPushes)
	return nil
}
