package tip

import (
	"sort"
	"sync"
	"time"
)

// Scheduler abstracts deferred execution so that the debounce timers can be
// driven by a fake clock in tests and simulations.
//
// Everything a scheduled callback touches belongs to the document's single
// event-processing goroutine, so callbacks must run on that goroutine. The
// default realScheduler runs them straight on time.AfterFunc goroutines and
// is only safe for hosts without a loop of their own; hosts with an event
// loop install a LoopScheduler and drain it from the loop.
type Scheduler interface {
	// After runs fn once d has elapsed, unless the returned cancel function
	// is called first.
	After(d time.Duration, fn func()) (cancel func())
}

type realScheduler struct{}

func (realScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// LoopScheduler arms wall-clock timers but holds their callbacks in a queue
// until the host loop calls Drain, keeping every callback on the goroutine
// that also dispatches events. wake, if non-nil, is called from the timer
// goroutine whenever a callback becomes runnable so a sleeping loop can
// schedule a Drain (a gio host passes the window's Invalidate).
type LoopScheduler struct {
	mu    sync.Mutex
	queue []*loopEntry
	wake  func()
}

type loopEntry struct {
	fn        func()
	cancelled bool
}

func NewLoopScheduler(wake func()) *LoopScheduler {
	return &LoopScheduler{wake: wake}
}

func (s *LoopScheduler) After(d time.Duration, fn func()) (cancel func()) {
	entry := &loopEntry{fn: fn}
	t := time.AfterFunc(d, func() {
		s.mu.Lock()
		if entry.cancelled {
			s.mu.Unlock()
			return
		}
		s.queue = append(s.queue, entry)
		wake := s.wake
		s.mu.Unlock()
		if wake != nil {
			wake()
		}
	})
	return func() {
		s.mu.Lock()
		entry.cancelled = true
		s.mu.Unlock()
		t.Stop()
	}
}

// Drain runs the queued callbacks on the calling goroutine. Callbacks
// cancelled between expiry and the drain are skipped; a timer may expire
// after its slot was already rearmed or torn down.
func (s *LoopScheduler) Drain() {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, entry := range queue {
		s.mu.Lock()
		cancelled := entry.cancelled
		s.mu.Unlock()
		if !cancelled {
			entry.fn()
		}
	}
}

// slot is a single-slot pending deferred action. Scheduling a new action
// cancels any previous one, which is how the mutual exclusion between a
// pending show and a pending hide is enforced: both run through slots and a
// controller cancels one before arming the other. Callbacks must re-validate
// state at fire time, a slot never does it for them.
type slot struct {
	cancel func()
}

func (s *slot) Schedule(sched Scheduler, d time.Duration, fn func()) {
	s.Cancel()
	s.cancel = sched.After(d, func() {
		s.cancel = nil
		fn()
	})
}

func (s *slot) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *slot) Pending() bool { return s.cancel != nil }

// ManualScheduler is a deterministic Scheduler advanced explicitly. It is
// used by the package tests and by the tipsim scenario runner, where "wait"
// steps advance simulated time.
type ManualScheduler struct {
	now    time.Duration
	nextID int
	timers []*manualTimer
}

type manualTimer struct {
	id      int
	at      time.Duration
	fn      func()
	stopped bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) After(d time.Duration, fn func()) func() {
	s.nextID++
	t := &manualTimer{id: s.nextID, at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.stopped = true }
}

// Now returns the current simulated time.
func (s *ManualScheduler) Now() time.Duration { return s.now }

// Advance moves simulated time forward, firing due timers in deadline order.
// Timers scheduled by a firing callback run in the same pass when due.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		s.now = t.at
		t.stopped = true
		t.fn()
	}
	s.now = target
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at != s.timers[j].at {
			return s.timers[i].at < s.timers[j].at
		}
		return s.timers[i].id < s.timers[j].id
	})
	if len(s.timers) == 0 || s.timers[0].at > target {
		return nil
	}
	return s.timers[0]
}
