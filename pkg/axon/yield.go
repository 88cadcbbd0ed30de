package axon

import (
	"runtime"
	"time"
)

// YieldPolicy selects the backoff strategy a non-blocking scheduler
// worker uses while it finds no work (spec.md §4.10 table). Mirrors
// Theron's YieldStrategy (original_source/Include/Theron/
// YieldStrategy.h): increasing levels trade latency for less contention
// and lower CPU burn under light load.
type YieldPolicy uint8

const (
	// YieldPolite spins briefly, then always falls back to a scheduler
	// yield (runtime.Gosched) every iteration. Lowest wake latency,
	// highest CPU usage under no load.
	YieldPolite YieldPolicy = iota

	// YieldStrong spins, then yields, then escalates to short sleeps the
	// longer no work is found, capped at a few milliseconds.
	YieldStrong

	// YieldAggressive escalates the fastest and sleeps the longest,
	// minimizing CPU burn at the cost of higher wake latency. Intended
	// for workloads with long idle stretches between bursts.
	YieldAggressive
)

func (p YieldPolicy) String() string {
	switch p {
	case YieldPolite:
		return "polite"
	case YieldStrong:
		return "strong"
	case YieldAggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// yieldBackoff tracks escalating backoff state across consecutive
// failed work-queue probes by one worker, per spec.md §4.10's "spin,
// then yield, then progressively sleep" description of the non-blocking
// scheduler variants.
type yieldBackoff struct {
	policy YieldPolicy
	misses int
}

func newYieldBackoff(policy YieldPolicy) *yieldBackoff {
	return &yieldBackoff{policy: policy}
}

const yieldSpinThreshold = 64

// Wait backs off by one step, to be called once per failed probe of the
// local and shared work queues.
func (y *yieldBackoff) Wait() {
	y.misses++
	switch y.policy {
	case YieldPolite:
		if y.misses < yieldSpinThreshold {
			return
		}
		runtime.Gosched()
	case YieldStrong:
		switch {
		case y.misses < yieldSpinThreshold:
			return
		case y.misses < yieldSpinThreshold*4:
			runtime.Gosched()
		default:
			time.Sleep(time.Millisecond)
		}
	case YieldAggressive:
		switch {
		case y.misses < yieldSpinThreshold/2:
			return
		case y.misses < yieldSpinThreshold:
			runtime.Gosched()
		default:
			d := time.Duration(y.misses-yieldSpinThreshold) * 200 * time.Microsecond
			if d > 10*time.Millisecond {
				d = 10 * time.Millisecond
			}
			time.Sleep(d)
		}
	}
}

// Reset clears the backoff state, called as soon as a probe finds work
// (spec.md §4.10: backoff resets on success, it does not ratchet
// forever).
func (y *yieldBackoff) Reset() {
	y.misses = 0
}
