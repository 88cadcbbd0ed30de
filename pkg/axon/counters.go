package axon

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters tracks the read-only observability counters of spec.md §4.6 /
// §6 ("messages processed", "threads pulsed", "threads woken", "mailbox
// queue max", "local queue pushes", "shared queue pushes", "yield
// events"). Atomic integers are the source of truth; a Prometheus mirror
// is updated alongside every increment because prometheus.Counter is
// monotonic and cannot implement the spec's ResetCounters operation on
// its own (spec.md §4.6 "ResetCounters zeroes every counter").
//
// Grounded on the teacher's pkg/observability/prometheus/metrics.go,
// which wraps promauto-registered collectors behind a small struct of
// typed fields rather than a generic label-keyed map for its fixed
// built-in metrics.
type Counters struct {
	messagesProcessed uint64
	threadsPulsed     uint64
	threadsWoken      uint64
	mailboxQueueMax   uint64
	localPushes       uint64
	sharedPushes      uint64
	yieldEvents       uint64

	promMessagesProcessed prometheus.Counter
	promThreadsPulsed     prometheus.Counter
	promThreadsWoken      prometheus.Counter
	promMailboxQueueMax   prometheus.Gauge
	promLocalPushes       prometheus.Counter
	promSharedPushes      prometheus.Counter
	promYieldEvents       prometheus.Counter
}

// NewCounters registers the mirrored Prometheus collectors against
// registerer (pass a shared registerer, e.g. prometheus.DefaultRegisterer,
// to fold a Framework's metrics into a larger process's registry).
// Passing nil registers against a private registry created just for this
// Framework, mirroring the teacher's own pkg/observability/prometheus
// DefaultRegistry pattern of never assuming ownership of the global
// registry — two Frameworks in one process must never collide trying to
// register the same metric names against prometheus.DefaultRegisterer.
func NewCounters(registerer prometheus.Registerer) *Counters {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	f := promauto.With(registerer)
	return &Counters{
		promMessagesProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "axon_messages_processed_total",
			Help: "Total number of messages dispatched to a handler or fallback.",
		}),
		promThreadsPulsed: f.NewCounter(prometheus.CounterOpts{
			Name: "axon_threads_pulsed_total",
			Help: "Total number of times a worker thread was pulsed to check the work queues.",
		}),
		promThreadsWoken: f.NewCounter(prometheus.CounterOpts{
			Name: "axon_threads_woken_total",
			Help: "Total number of times a blocked worker thread was woken by a condition variable signal.",
		}),
		promMailboxQueueMax: f.NewGauge(prometheus.GaugeOpts{
			Name: "axon_mailbox_queue_max",
			Help: "High-water mark of envelopes queued in any single mailbox.",
		}),
		promLocalPushes: f.NewCounter(prometheus.CounterOpts{
			Name: "axon_local_queue_pushes_total",
			Help: "Total number of mailboxes scheduled onto a worker's local queue.",
		}),
		promSharedPushes: f.NewCounter(prometheus.CounterOpts{
			Name: "axon_shared_queue_pushes_total",
			Help: "Total number of mailboxes scheduled onto the shared work queue.",
		}),
		promYieldEvents: f.NewCounter(prometheus.CounterOpts{
			Name: "axon_yield_events_total",
			Help: "Total number of backoff steps taken by idle worker threads.",
		}),
	}
}

func (c *Counters) IncMessagesProcessed() {
	atomic.AddUint64(&c.messagesProcessed, 1)
	c.promMessagesProcessed.Inc()
}

func (c *Counters) IncThreadsPulsed() {
	atomic.AddUint64(&c.threadsPulsed, 1)
	c.promThreadsPulsed.Inc()
}

func (c *Counters) IncThreadsWoken() {
	atomic.AddUint64(&c.threadsWoken, 1)
	c.promThreadsWoken.Inc()
}

func (c *Counters) IncLocalPushes() {
	atomic.AddUint64(&c.localPushes, 1)
	c.promLocalPushes.Inc()
}

func (c *Counters) IncSharedPushes() {
	atomic.AddUint64(&c.sharedPushes, 1)
	c.promSharedPushes.Inc()
}

func (c *Counters) IncYieldEvents() {
	atomic.AddUint64(&c.yieldEvents, 1)
	c.promYieldEvents.Inc()
}

// ObserveMailboxQueueLen records a mailbox queue length observation,
// raising the high-water mark counter if len exceeds it.
func (c *Counters) ObserveMailboxQueueLen(len int) {
	if len < 0 {
		return
	}
	v := uint64(len)
	for {
		cur := atomic.LoadUint64(&c.mailboxQueueMax)
		if v <= cur {
			return
		}
		if atomic.CompareAndSwapUint64(&c.mailboxQueueMax, cur, v) {
			c.promMailboxQueueMax.Set(float64(v))
			return
		}
	}
}

// Snapshot is a point-in-time copy of every counter (spec.md §4.6
// "GetCounters returns a snapshot, not a live view").
type Snapshot struct {
	MessagesProcessed uint64
	ThreadsPulsed     uint64
	ThreadsWoken      uint64
	MailboxQueueMax   uint64
	LocalPushes       uint64
	SharedPushes      uint64
	YieldEvents       uint64
}

// Snapshot returns the current value of every counter.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		MessagesProcessed: atomic.LoadUint64(&c.messagesProcessed),
		ThreadsPulsed:     atomic.LoadUint64(&c.threadsPulsed),
		ThreadsWoken:      atomic.LoadUint64(&c.threadsWoken),
		MailboxQueueMax:   atomic.LoadUint64(&c.mailboxQueueMax),
		LocalPushes:       atomic.LoadUint64(&c.localPushes),
		SharedPushes:      atomic.LoadUint64(&c.sharedPushes),
		YieldEvents:       atomic.LoadUint64(&c.yieldEvents),
	}
}

// Reset zeroes every atomic counter (spec.md §4.6 ResetCounters). The
// Prometheus mirror is intentionally left untouched: Prometheus counters
// must never decrease (a rate() query spanning a reset would otherwise
// read as a nonsensical negative rate), so the mirror keeps accumulating
// across resets while Snapshot reports the logical, resettable value.
func (c *Counters) Reset() {
	atomic.StoreUint64(&c.messagesProcessed, 0)
	atomic.StoreUint64(&c.threadsPulsed, 0)
	atomic.StoreUint64(&c.threadsWoken, 0)
	atomic.StoreUint64(&c.mailboxQueueMax, 0)
	atomic.StoreUint64(&c.localPushes, 0)
	atomic.StoreUint64(&c.sharedPushes, 0)
	atomic.StoreUint64(&c.yieldEvents, 0)
}
