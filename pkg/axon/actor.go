package axon

// Actor is the unit of isolated, single-threaded-at-a-time execution
// (spec.md §3 "Actor"). Each actor owns exactly one Mailbox and one
// HandlerTable for its entire lifetime; both are created alongside it
// and freed when it is deregistered from its Framework.
type Actor struct {
	address   Address
	framework *Framework
	mailbox   *Mailbox
	handlers  *HandlerTable
}

// newActor constructs an actor already bound to addr within framework.
// Called only by Framework.CreateActor, which has just registered addr
// in the actor directory.
func newActor(addr Address, framework *Framework) *Actor {
	return &Actor{
		address:   addr,
		framework: framework,
		mailbox:   NewMailbox(addr),
		handlers:  NewHandlerTable(),
	}
}

// ActorContext is the capability handed to every handler invocation and
// to an actor's constructor (spec.md §3 "Handler" signature). It scopes
// what a running handler may do: inspect its own address, send
// messages, and adjust its own handler table.
type ActorContext struct {
	actor     *Actor
	framework *Framework
	cache     *MessageCache
}

// Self returns the address of the actor this context belongs to.
func (c *ActorContext) Self() Address {
	return c.actor.address
}

// Send delivers msg to to, stamping the envelope's From with this
// actor's address (spec.md §4.12 "Send"). Equivalent to
// Framework.Send(to, msg) called with the sender address already filled
// in, which is the only difference between an actor-to-actor send and an
// external send.
func (c *ActorContext) Send(to Address, msg interface{}) error {
	return c.framework.send(to, c.actor.address, msg, c.cache)
}

// SetDefaultHandler installs fn as this actor's default handler,
// invoked when an incoming message matches no registered handler
// (spec.md §4.8 step 3).
func (c *ActorContext) SetDefaultHandler(fn HandlerFunc) {
	c.actor.handlers.SetDefault(fn)
}

// RegisterHandler registers fn as the handler for messages of type T on
// the actor owning ctx (spec.md §4.8 step 1). Registration is deferred:
// it takes effect at the next handler-table validation, so calling this
// from within a currently-running handler is safe and does not affect
// the message presently being dispatched.
func RegisterHandler[T any](ctx *ActorContext, fn func(ctx *ActorContext, from Address, msg T)) {
	typeID, ok := typeIDForT[T](ctx.framework.identityScheme)
	invariant(ok, "register-handler-unregistered-type", "message type must be registered with RegisterMessageType before RegisterHandler under the explicit identity scheme")
	ctx.actor.handlers.Register(typeID, func(c *ActorContext, env *Envelope) {
		fn(c, env.From(), env.Value().(T))
	})
}

// DeregisterHandler removes every handler registered for T on the actor
// owning ctx, including one registered but not yet merged by validation
// (spec.md §4.8, P5 self-deregistration).
func DeregisterHandler[T any](ctx *ActorContext) {
	typeID, ok := typeIDForT[T](ctx.framework.identityScheme)
	if !ok {
		return
	}
	ctx.actor.handlers.Deregister(typeID)
}
