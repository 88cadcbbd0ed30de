package axon

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Framework is the C12 facade (spec.md §4.12): the single entry point a
// caller constructs directories, a scheduler, and a worker pool through,
// and the only type most users of this package ever touch directly.
type Framework struct {
	config         Config
	identityScheme IdentityScheme
	logger         Logger
	allocator      Allocator

	actors        *Directory[*Actor]
	receivers     *Directory[*Receiver]
	sharedQueue   *WorkQueue
	scheduler     *Scheduler
	counters      *Counters
	pool          *WorkerPool
	dispatcher    *Dispatcher
	externalCache *MessageCache

	fallbackMu sync.Mutex
	fallback   func(from Address, msg interface{})

	mu           sync.Mutex
	shuttingDown bool
	shutdownOnce sync.Once
}

// Option configures optional Framework collaborators beyond Config.
type Option func(*Framework)

// WithAllocator overrides the default Allocator (spec.md §6 "Allocator
// boundary"). Most callers never need this; it exists for a caller
// supplying an arena or pool allocator tuned for their message types.
func WithAllocator(allocator Allocator) Option {
	return func(f *Framework) { f.allocator = allocator }
}

// WithLogger overrides the Framework's diagnostic Logger.
func WithLogger(logger Logger) Option {
	return func(f *Framework) { f.logger = logger }
}

// WithFallback installs the fallback handler at construction time,
// equivalent to calling SetFallback immediately after New.
func WithFallback(fn func(from Address, msg interface{})) Option {
	return func(f *Framework) { f.fallback = fn }
}

// WithMetricsRegisterer registers this Framework's Prometheus collectors
// against registerer instead of the private per-Framework registry New
// creates by default — useful when the counters should be exposed
// through a shared registry such as prometheus.DefaultRegisterer
// (spec.md's ambient observability stack).
func WithMetricsRegisterer(registerer prometheus.Registerer) Option {
	return func(f *Framework) { f.counters = NewCounters(registerer) }
}

// New constructs a Framework per cfg: its actor and receiver
// directories, shared work queue, scheduler, dispatcher, and worker
// pool, then starts the worker pool immediately (spec.md §4.12
// "Constructs directories, scheduler, worker pool, and fallback-handler
// slot"). The worker pool runs until Shutdown is called.
func New(cfg Config, opts ...Option) (*Framework, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Framework{
		config:         cfg,
		identityScheme: cfg.IdentityScheme,
		logger:         NewDefaultLogger(),
		allocator:      NewGoHeapAllocator(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.counters == nil {
		f.counters = NewCounters(nil)
	}

	f.actors = NewDirectory[*Actor](DomainActor, cfg.MaxActors)
	f.receivers = NewDirectory[*Receiver](DomainReceiver, cfg.MaxReceivers)
	f.sharedQueue = NewWorkQueue()
	f.externalCache = NewMessageCache(f.allocator)
	f.scheduler = newScheduler(f.sharedQueue, f.counters, cfg.SchedulerVariant == SchedulerBlocking)
	f.dispatcher = newDispatcher(f.actors, f.counters, f, f.deliverToFallback)
	f.pool = newWorkerPool(cfg.WorkerCount, f.allocator, f.scheduler, f.dispatcher, cfg.YieldStrategy, f.logger)
	f.pool.Start()

	f.logger.Infof("axon framework started: %d workers, scheduler=%s", cfg.WorkerCount, cfg.SchedulerVariant)
	return f, nil
}

// CreateActor allocates a directory slot, constructs the Actor bound to
// it, and runs construct against its ActorContext so the caller can
// register handlers before the address is returned (spec.md §4.12
// "create_actor<T>(params) -> address"). construct runs synchronously on
// the calling goroutine, before any message can possibly be dispatched
// to the new actor, so no handler registration race is possible.
func (f *Framework) CreateActor(construct func(ctx *ActorContext)) (Address, error) {
	if f.isShuttingDown() {
		return NullAddress, ErrShutdownInProgress
	}

	addr, err := f.actors.Register()
	if err != nil {
		return NullAddress, err
	}
	actor := newActor(addr, f)
	f.actors.Install(addr, actor)

	if construct != nil {
		construct(&ActorContext{actor: actor, framework: f, cache: f.externalCache})
	}
	return addr, nil
}

// DeregisterActor frees addr's directory slot. Any messages still
// queued in its mailbox at the moment a worker next observes it are
// routed to the fallback handler rather than silently dropped (spec.md
// §4.12 "Deregister").
func (f *Framework) DeregisterActor(addr Address) {
	f.actors.Deregister(addr)
}

// CreateReceiver allocates a synchronous, non-actor sink (spec.md §4.13,
// C13) and returns it ready to Wait on.
func (f *Framework) CreateReceiver() (*Receiver, error) {
	if f.isShuttingDown() {
		return nil, ErrShutdownInProgress
	}
	addr, err := f.receivers.Register()
	if err != nil {
		return nil, err
	}
	recv := newReceiver(addr, f.identityScheme)
	f.receivers.Install(addr, recv)
	return recv, nil
}

// DeregisterReceiver frees a receiver's directory slot.
func (f *Framework) DeregisterReceiver(addr Address) {
	f.receivers.Deregister(addr)
}

// Send delivers msg to to from outside any actor context (spec.md §4.12
// "send(value, from, to) -> delivered?"). The sender address recorded on
// the envelope is NullAddress; use ActorContext.Send from inside a
// handler to stamp the real sender.
func (f *Framework) Send(to Address, msg interface{}) error {
	return f.send(to, NullAddress, msg, f.externalCache)
}

// send is the shared implementation behind Framework.Send and
// ActorContext.Send. cache is the caller's MessageCache: the calling
// worker's own cache from inside a handler, or the Framework's single
// externalCache for any call originating outside a worker goroutine
// (spec.md §4.12: "allocates envelope via per-thread cache if called
// from a worker, else via a global cache").
func (f *Framework) send(to Address, from Address, msg interface{}, cache *MessageCache) error {
	if f.isShuttingDown() {
		return ErrShutdownInProgress
	}
	notNil(msg, "message")

	typeID, ok := typeIDFor(f.identityScheme, msg)
	if !ok {
		return ErrUnregisteredMessage
	}

	switch to.Domain {
	case DomainActor:
		actor, ok := f.actors.GetEntry(to)
		if !ok {
			return ErrNoRecipient
		}
		env, err := f.newEnvelope(cache, typeID, from, msg)
		if err != nil {
			return err
		}
		if actor.mailbox.Push(env) {
			f.scheduler.ScheduleExternal(actor.mailbox)
		}
		f.counters.ObserveMailboxQueueLen(actor.mailbox.Len())
		return nil

	case DomainReceiver:
		recv, ok := f.receivers.GetEntry(to)
		if !ok {
			return ErrNoRecipient
		}
		env, err := f.newEnvelope(cache, typeID, from, msg)
		if err != nil {
			return err
		}
		recv.deliver(env)
		cache.Free(env)
		return nil

	default:
		return ErrNoRecipient
	}
}

func (f *Framework) newEnvelope(cache *MessageCache, typeID TypeID, from Address, msg interface{}) (*Envelope, error) {
	size, alignment := messageFootprint(msg)
	env, err := cache.Allocate(size, alignment)
	if err != nil {
		return nil, err
	}
	env.typeID = typeID
	env.from = from
	env.value = msg
	return env, nil
}

// SetFallback installs fn as the handler invoked for any message that
// matches no registered or default handler, or whose destination no
// longer exists (spec.md §4.12 "installed once; invoked for messages
// with no registered handler... and no default handler"). Calling it
// again replaces the previous fallback.
func (f *Framework) SetFallback(fn func(from Address, msg interface{})) {
	f.fallbackMu.Lock()
	f.fallback = fn
	f.fallbackMu.Unlock()
}

func (f *Framework) deliverToFallback(to Address, env *Envelope) {
	f.fallbackMu.Lock()
	fn := f.fallback
	f.fallbackMu.Unlock()
	if fn != nil {
		fn(env.From(), env.Value())
		return
	}
	f.logger.WithActor(to).Warnf("axon: message of type %s dropped, no fallback handler installed", env.TypeID())
}

// Counters returns a snapshot of the runtime's observability counters
// (spec.md §6 "Counters").
func (f *Framework) Counters() Snapshot {
	return f.counters.Snapshot()
}

// ResetCounters zeroes every counter (spec.md §6 "Reset via
// reset_counters").
func (f *Framework) ResetCounters() {
	f.counters.Reset()
}

func (f *Framework) isShuttingDown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shuttingDown
}

// Shutdown stops every worker and waits for them to exit. Once they have
// exited, any messages still queued in a registered actor's mailbox are
// routed to the fallback handler rather than dropped (spec.md §4.12 "shutdown:
// stops workers and drains... passed to the fallback handler"). Safe to
// call more than once; only the first call has effect.
func (f *Framework) Shutdown() {
	f.shutdownOnce.Do(func() {
		f.mu.Lock()
		f.shuttingDown = true
		f.mu.Unlock()

		f.pool.Stop()
		f.pool.Join()

		f.drainAllMailboxes()
		f.logger.Info("axon framework shut down")
	})
}

// drainAllMailboxes routes every message left in every actor's mailbox
// to the fallback handler once no worker will ever dispatch it again
// (spec.md §9's resolution of the "what happens to a non-empty mailbox
// at shutdown" open question: divert to fallback, never drop silently).
func (f *Framework) drainAllMailboxes() {
	f.actors.ForEach(func(addr Address, actor *Actor) {
		for {
			env := actor.mailbox.Front()
			if env == nil {
				return
			}
			f.deliverToFallback(addr, env)
			f.externalCache.Free(env)
			if !actor.mailbox.Pop() {
				return
			}
		}
	})
}
