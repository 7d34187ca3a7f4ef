package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
)

// InMemoryPickupCodeRegistry holds pickup code reservations in a map.
// Reservations only exist within this process, which is enough for a
// single instance and for tests.
type InMemoryPickupCodeRegistry struct {
	mu        sync.Mutex
	held      map[string]time.Time // code -> expiry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryPickupCodeRegistry creates a registry and starts the
// goroutine that evicts expired reservations
func NewInMemoryPickupCodeRegistry() *InMemoryPickupCodeRegistry {
	r := &InMemoryPickupCodeRegistry{
		held:     make(map[string]time.Time),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop(5 * time.Minute)

	return r
}

// Reserve holds code for ttl. It returns false while another live
// reservation exists for the same code.
func (r *InMemoryPickupCodeRegistry) Reserve(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	code = strings.ToUpper(code)

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if expiresAt, ok := r.held[code]; ok && now.Before(expiresAt) {
		return false, nil
	}
	r.held[code] = now.Add(ttl)
	return true, nil
}

// Release drops the reservation; releasing an unknown code is a no-op
func (r *InMemoryPickupCodeRegistry) Release(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, strings.ToUpper(code))
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (r *InMemoryPickupCodeRegistry) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()
	})
	return nil
}

// Size returns the number of live reservations
func (r *InMemoryPickupCodeRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	n := 0
	for _, expiresAt := range r.held {
		if now.Before(expiresAt) {
			n++
		}
	}
	return n
}

func (r *InMemoryPickupCodeRegistry) cleanupLoop(every time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.cleanup()
		}
	}
}

func (r *InMemoryPickupCodeRegistry) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for code, expiresAt := range r.held {
		if !now.Before(expiresAt) {
			delete(r.held, code)
		}
	}
}

var _ shopping.PickupCodeRegistry = (*InMemoryPickupCodeRegistry)(nil)
