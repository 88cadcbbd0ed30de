package axon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestActor_RegisterHandlerAndSend(t *testing.T) {
	fw, err := New(testConfig())
	require.NoError(t, err)
	defer fw.Shutdown()

	received := make(chan int, 1)
	addr, err := fw.CreateActor(func(ctx *ActorContext) {
		RegisterHandler(ctx, func(ctx *ActorContext, from Address, msg testMsgA) {
			received <- msg.n
		})
	})
	require.NoError(t, err)

	require.NoError(t, fw.Send(addr, testMsgA{n: 7}))

	select {
	case n := <-received:
		require.Equal(t, 7, n)
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestActor_SelfAddressMatchesCreateActorReturn(t *testing.T) {
	fw, err := New(testConfig())
	require.NoError(t, err)
	defer fw.Shutdown()

	selfCh := make(chan Address, 1)
	addr, err := fw.CreateActor(func(ctx *ActorContext) {
		RegisterHandler(ctx, func(ctx *ActorContext, from Address, msg testMsgA) {
			selfCh <- ctx.Self()
		})
	})
	require.NoError(t, err)
	require.NoError(t, fw.Send(addr, testMsgA{}))

	select {
	case self := <-selfCh:
		require.Equal(t, addr, self)
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestActor_ContextSendStampsSender(t *testing.T) {
	fw, err := New(testConfig())
	require.NoError(t, err)
	defer fw.Shutdown()

	fromCh := make(chan Address, 1)
	recv, err := fw.CreateReceiver()
	require.NoError(t, err)
	RegisterReceiverHandler(recv, func(from Address, msg testMsgB) { fromCh <- from })

	sender, err := fw.CreateActor(func(ctx *ActorContext) {
		RegisterHandler(ctx, func(ctx *ActorContext, from Address, msg testMsgA) {
			ctx.Send(recv.Address(), testMsgB{s: "relayed"})
		})
	})
	require.NoError(t, err)
	require.NoError(t, fw.Send(sender, testMsgA{}))

	select {
	case from := <-fromCh:
		require.Equal(t, sender, from)
	case <-time.After(time.Second):
		t.Fatal("receiver never got the relayed message")
	}
}

func TestActor_DeregisterHandlerStopsDelivery(t *testing.T) {
	fw, err := New(testConfig())
	require.NoError(t, err)
	defer fw.Shutdown()

	calls := make(chan struct{}, 4)
	fw.SetFallback(func(from Address, msg interface{}) {})

	addr, err := fw.CreateActor(func(ctx *ActorContext) {
		RegisterHandler(ctx, func(ctx *ActorContext, from Address, msg testMsgA) {
			calls <- struct{}{}
			DeregisterHandler[testMsgA](ctx)
		})
	})
	require.NoError(t, err)

	require.NoError(t, fw.Send(addr, testMsgA{n: 1}))
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("first message never handled")
	}

	// Give the handler table time to validate the self-deregistration in
	// before sending the next message.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, fw.Send(addr, testMsgA{n: 2}))

	select {
	case <-calls:
		t.Fatal("handler ran again after deregistering itself")
	case <-time.After(100 * time.Millisecond):
	}
}

// testConfig returns a small Framework configuration suitable for unit
// tests: few workers, and (via New's nil-registerer default) a private
// Prometheus registry so parallel tests never collide on collector names.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.WorkerCount = 2
	return cfg
}
