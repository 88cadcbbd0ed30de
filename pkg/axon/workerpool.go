package axon

import "sync"

// workerContext is the per-worker-thread state of C11 (spec.md §4.11):
// its own local work queue and its own MessageCache, so the hot
// allocate/free path for messages never crosses a goroutine boundary
// under normal load. Mirrors Theron's WorkerContext
// (original_source/Include/Theron/Detail/ThreadPool/WorkerContext.h),
// the same per-thread local-queue-plus-cache bundle.
type workerContext struct {
	id          int
	local       *WorkQueue
	cache       *MessageCache
	yieldPolicy YieldPolicy
	stop        chan struct{}
}

// WorkerPool owns a fixed-size pool of worker goroutines (spec.md §6
// "thread-count"), each running Scheduler.workerLoop against its own
// local queue and the pool's single shared queue. Threads are a fixed
// pool for the Framework's lifetime; spec.md §9 explicitly rules out
// dynamic resizing as a non-goal.
type WorkerPool struct {
	workers    []*workerContext
	scheduler  *Scheduler
	dispatcher *Dispatcher
	logger     Logger
	wg         sync.WaitGroup
}

// newWorkerPool creates count workers, each with its own MessageCache
// built from allocator and its own local WorkQueue, all driven by
// scheduler using yieldPolicy for the non-blocking wait strategy.
func newWorkerPool(count int, allocator Allocator, scheduler *Scheduler, dispatcher *Dispatcher, yieldPolicy YieldPolicy, logger Logger) *WorkerPool {
	invariant(count > 0, "worker-pool-count", "worker pool thread count must be positive, got %d", count)
	p := &WorkerPool{scheduler: scheduler, dispatcher: dispatcher, logger: logger}
	for i := 0; i < count; i++ {
		p.workers = append(p.workers, &workerContext{
			id:          i,
			local:       NewWorkQueue(),
			cache:       NewMessageCache(allocator),
			yieldPolicy: yieldPolicy,
			stop:        make(chan struct{}),
		})
	}
	return p
}

// Start launches one goroutine per worker. Each worker's dispatch
// closure binds the dispatcher to that worker's own MessageCache — the
// dispatcher itself holds no per-message-cache state, only per-Framework
// collaborators shared read-only across workers. Every line a worker
// goroutine logs for its own lifetime is scoped via Logger.WithWorker
// (spec.md §4.11 "per-thread context").
func (p *WorkerPool) Start() {
	for _, w := range p.workers {
		w := w
		wlog := p.logger.WithWorker(w.id)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			wlog.Debugf("worker %d starting", w.id)
			p.scheduler.workerLoop(w, func(mb *Mailbox) bool {
				return p.dispatcher.Process(mb, w.cache)
			})
			wlog.Debugf("worker %d exiting", w.id)
		}()
	}
}

// Stop signals every worker to exit after its current dispatch cycle and
// closes the shared queue, waking any worker blocked in the blocking
// scheduler variant. Workers do not drain their queues first; whatever
// remains is drained by Framework.Shutdown.
func (p *WorkerPool) Stop() {
	for _, w := range p.workers {
		close(w.stop)
	}
	p.scheduler.shared.Close()
}

// Join blocks until every worker goroutine has exited.
func (p *WorkerPool) Join() {
	p.wg.Wait()
}

// LocalQueueLengths returns the current backlog of each worker's local
// queue, used by tests to observe scheduler behavior.
func (p *WorkerPool) LocalQueueLengths() []int {
	lens := make([]int, len(p.workers))
	for i, w := range p.workers {
		lens[i] = w.local.Len()
	}
	return lens
}
