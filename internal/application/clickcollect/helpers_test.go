package clickcollect

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/catalog"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/scheduler"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Saturday noon
var sessionStart = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testProduct(storeID, storeName, id, price string, prep int, available bool) catalog.Product {
	return catalog.Product{
		ID:                 id,
		Name:               "Product " + id,
		Price:              decimal.RequireFromString(price),
		Category:           "test",
		StoreID:            storeID,
		StoreName:          storeName,
		Available:          available,
		PreparationMinutes: prep,
	}
}

func testStores() []catalog.Store {
	allWeek := catalog.OpeningHours{}
	for day := time.Sunday; day <= time.Saturday; day++ {
		allWeek[day] = &catalog.DayHours{Open: "08:00", Close: "22:00"}
	}
	return []catalog.Store{
		{
			ID:           "store-1",
			Name:         "Food Corner",
			Category:     catalog.StoreCategoryRestaurant,
			OpeningHours: allWeek,
			Products: []catalog.Product{
				testProduct("store-1", "Food Corner", "prod-1", "8.90", 10, true),
				testProduct("store-1", "Food Corner", "prod-2", "12.50", 15, true),
			},
			AcceptsClickCollect: true,
		},
		{
			ID:           "store-2",
			Name:         "PharmaCare",
			Category:     catalog.StoreCategoryPharmacy,
			OpeningHours: allWeek,
			Products: []catalog.Product{
				testProduct("store-2", "PharmaCare", "prod-5", "3.20", 2, true),
			},
			AcceptsClickCollect: true,
		},
		{
			ID:           "store-3",
			Name:         "TechZone",
			Category:     catalog.StoreCategoryElectronics,
			OpeningHours: allWeek,
			Products: []catalog.Product{
				testProduct("store-3", "TechZone", "prod-8", "15.99", 3, false),
			},
			AcceptsClickCollect: true,
		},
		{
			ID:           "store-4",
			Name:         "Walk-in Only",
			Category:     catalog.StoreCategoryOther,
			OpeningHours: allWeek,
			Products: []catalog.Product{
				testProduct("store-4", "Walk-in Only", "prod-9", "1.00", 1, true),
			},
			AcceptsClickCollect: false,
		},
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (r *eventRecorder) Publish(_ context.Context, events ...shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}

// sequenceCodes hands out codes in order and repeats the last one
type sequenceCodes struct {
	mu    sync.Mutex
	codes []string
	next  int
}

func (g *sequenceCodes) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	code := g.codes[min(g.next, len(g.codes)-1)]
	g.next++
	return code, nil
}

type fakeRegistry struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func newFakeRegistry(held ...string) *fakeRegistry {
	r := &fakeRegistry{held: make(map[string]bool)}
	for _, code := range held {
		r.held[code] = true
	}
	return r
}

func (r *fakeRegistry) Reserve(_ context.Context, code string, _ time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[code] {
		return false, nil
	}
	r.held[code] = true
	return true, nil
}

func (r *fakeRegistry) Release(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, code)
	r.released = append(r.released, code)
	return nil
}

// blockingRegistry parks Reserve until release is closed
type blockingRegistry struct {
	*fakeRegistry
	entered chan struct{}
	release chan struct{}
}

func newBlockingRegistry() *blockingRegistry {
	return &blockingRegistry{
		fakeRegistry: newFakeRegistry(),
		entered:      make(chan struct{}, 1),
		release:      make(chan struct{}),
	}
}

func (r *blockingRegistry) Reserve(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	select {
	case r.entered <- struct{}{}:
	default:
	}
	<-r.release
	return r.fakeRegistry.Reserve(ctx, code, ttl)
}

type testSession struct {
	*Session
	timers *scheduler.Scheduler
	clock  *scheduler.ManualClock
	events *eventRecorder
}

// advance moves virtual time forward and fires what became due
func (ts *testSession) advance(d time.Duration) int {
	ts.clock.Advance(d)
	return ts.timers.Pump(context.Background())
}

func newTestSession(t *testing.T, opts ...SessionOption) *testSession {
	t.Helper()
	clock := scheduler.NewManualClock(sessionStart)
	timers := scheduler.New(clock, nil)
	events := &eventRecorder{}

	all := append([]SessionOption{
		WithScheduler(timers),
		WithEventPublisher(events),
	}, opts...)
	s := NewSession(all...)
	require.NoError(t, s.SetStores(context.Background(), testStores()))
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	return &testSession{Session: s, timers: timers, clock: clock, events: events}
}

func checkout() CheckoutInput {
	return CheckoutInput{
		Customer: shopping.CustomerInfo{Name: "Jane Doe", Phone: "06 12 34 56 78"},
	}
}
