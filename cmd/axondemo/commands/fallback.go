package commands

import (
	"fmt"
	"time"

	"github.com/quadgatefoundation/axon/pkg/axon"
	"github.com/spf13/cobra"
)

type unhandledMsg struct{ note string }

var fallbackCmd = &cobra.Command{
	Use:   "fallback",
	Short: "Show a message with no matching handler routed to the fallback handler",
	RunE:  runFallback,
}

func runFallback(cmd *cobra.Command, args []string) error {
	fw, err := axon.New(buildConfig())
	if err != nil {
		return err
	}
	defer fw.Shutdown()

	caught := make(chan struct{})
	fw.SetFallback(func(from axon.Address, msg interface{}) {
		fmt.Printf("fallback: caught %#v from %s\n", msg, from)
		close(caught)
	})

	// This actor never registers a handler for unhandledMsg, so the
	// dispatcher falls through to the framework fallback (spec.md §4.8
	// step 3 / §4.12 "set_fallback").
	addr, err := fw.CreateActor(func(ctx *axon.ActorContext) {
		axon.RegisterHandler(ctx, func(ctx *axon.ActorContext, from axon.Address, msg pingMsg) {
			// registered for an unrelated type, deliberately
		})
	})
	if err != nil {
		return err
	}

	if err := fw.Send(addr, unhandledMsg{note: "nobody handles this"}); err != nil {
		return err
	}

	select {
	case <-caught:
	case <-time.After(5 * time.Second):
		return fmt.Errorf("fallback was never invoked")
	}
	return nil
}
