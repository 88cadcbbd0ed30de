package commands

import (
	"fmt"

	"github.com/quadgatefoundation/axon/pkg/axon"
	"github.com/spf13/cobra"
)

var addressReuseCmd = &cobra.Command{
	Use:   "address-reuse",
	Short: "Deregister an actor and create a new one, showing generation-safe address reuse",
	RunE:  runAddressReuse,
}

func runAddressReuse(cmd *cobra.Command, args []string) error {
	fw, err := axon.New(buildConfig())
	if err != nil {
		return err
	}
	defer fw.Shutdown()

	first, err := fw.CreateActor(nil)
	if err != nil {
		return err
	}
	fmt.Printf("first actor address: %s\n", first)

	fw.DeregisterActor(first)

	second, err := fw.CreateActor(nil)
	if err != nil {
		return err
	}
	fmt.Printf("second actor address: %s\n", second)

	if first.Index == second.Index && first.Generation != second.Generation {
		fmt.Println("same slot index reused with a new generation, as expected")
	}

	err = fw.Send(first, struct{}{})
	fmt.Printf("sending to the stale address returns: %v\n", err)
	return nil
}
