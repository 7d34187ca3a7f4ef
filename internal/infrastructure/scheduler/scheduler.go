package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// idleWait bounds how long the runner sleeps with an empty queue
const idleWait = time.Minute

// Transition is a status change due for an order at FireAt
type Transition struct {
	FireAt  time.Time
	OrderID uuid.UUID
	Target  shopping.OrderStatus
}

// FireFunc applies a due transition. It runs without the scheduler lock
// held, so it may schedule or cancel further transitions.
type FireFunc func(ctx context.Context, t Transition)

// Scheduler keeps delayed order transitions in a priority queue and fires
// them once the clock reaches their FireAt. With a ManualClock nothing
// fires until Pump is called; with the SystemClock, Start runs a
// background loop that pumps on time.
type Scheduler struct {
	clock  Clock
	logger *zap.Logger

	mu        sync.Mutex
	fire      FireFunc
	queue     transitionQueue
	seq       uint64
	stopped   bool
	isRunning bool
	wake      chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a scheduler reading time from clock
func New(clock Clock, logger *zap.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		clock:  clock,
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// Clock returns the scheduler's time source
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// SetHandler installs the function that applies due transitions
func (s *Scheduler) SetHandler(fire FireFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fire = fire
}

// Schedule queues a transition
func (s *Scheduler) Schedule(t Transition) error {
	if t.OrderID == uuid.Nil || !t.Target.IsValid() {
		return ErrInvalidTransition
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSchedulerStopped
	}
	s.seq++
	heap.Push(&s.queue, &entry{Transition: t, seq: s.seq})
	s.mu.Unlock()

	s.logger.Debug("Transition scheduled",
		zap.String("order_id", t.OrderID.String()),
		zap.String("target", t.Target.String()),
		zap.Time("fire_at", t.FireAt),
	)
	s.signal()
	return nil
}

// CancelOrder drops every pending transition for an order and returns
// how many were removed
func (s *Scheduler) CancelOrder(orderID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.queue[:0]
	removed := 0
	for _, e := range s.queue {
		if e.OrderID == orderID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(s.queue); i++ {
		s.queue[i] = nil
	}
	s.queue = kept
	for i, e := range s.queue {
		e.index = i
	}
	heap.Init(&s.queue)
	return removed
}

// Pending returns the number of queued transitions
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// PendingFor returns the queued transitions of one order in firing order
func (s *Scheduler) PendingFor(orderID uuid.UUID) []Transition {
	s.mu.Lock()
	matches := make([]*entry, 0, 3)
	for _, e := range s.queue {
		if e.OrderID == orderID {
			matches = append(matches, e)
		}
	}
	s.mu.Unlock()

	ordered := transitionQueue(matches)
	heap.Init(&ordered)
	result := make([]Transition, 0, len(matches))
	for ordered.Len() > 0 {
		result = append(result, heap.Pop(&ordered).(*entry).Transition)
	}
	return result
}

// NextFireAt returns the earliest pending fire time
func (s *Scheduler) NextFireAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.queue.peek(); e != nil {
		return e.FireAt, true
	}
	return time.Time{}, false
}

// Pump fires every transition due at the current clock reading, earliest
// first, and returns how many fired. Transitions scheduled by a handler
// that are already due fire in the same call.
func (s *Scheduler) Pump(ctx context.Context) int {
	fired := 0
	for {
		s.mu.Lock()
		head := s.queue.peek()
		if s.stopped || head == nil || head.FireAt.After(s.clock.Now()) {
			s.mu.Unlock()
			return fired
		}
		e := heap.Pop(&s.queue).(*entry)
		fire := s.fire
		s.mu.Unlock()

		fired++
		if fire == nil {
			s.logger.Warn("Transition dropped, no handler installed",
				zap.String("order_id", e.OrderID.String()),
				zap.String("target", e.Target.String()),
			)
			continue
		}
		fire(ctx, e.Transition)
	}
}

// Start runs a background loop that pumps whenever the next transition is due
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSchedulerStopped
	}
	if s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerAlreadyRunning
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Transition scheduler started")
	return nil
}

// Stop ends the background loop and discards pending transitions.
// A stopped scheduler rejects new transitions.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	dropped := len(s.queue)
	s.queue = nil
	cancel := s.cancel
	s.isRunning = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Transition scheduler stopped", zap.Int("dropped", dropped))
		return nil
	case <-ctx.Done():
		s.logger.Warn("Transition scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		s.Pump(ctx)

		wait := idleWait
		if next, ok := s.NextFireAt(); ok {
			wait = max(next.Sub(s.clock.Now()), 0)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
