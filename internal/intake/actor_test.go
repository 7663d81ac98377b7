package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sergiohdezchi/order-processing-service/internal/domain"
)

type fakeStore struct {
	mu         sync.Mutex
	createErr  error
	updateErr  error
	panicValue any

	created []string
	updated []string
}

func (f *fakeStore) CreateIfAbsent(_ context.Context, orderID, customerID, customerPhone string, items []domain.OrderItem) (*domain.Order, error) {
	if f.panicValue != nil {
		panic(f.panicValue)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, orderID)
	return &domain.Order{
		OrderID:       orderID,
		CustomerID:    customerID,
		CustomerPhone: customerPhone,
		Items:         items,
		Status:        domain.StatusPending,
		Timestamp:     time.Now().UTC(),
	}, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, orderID string, status domain.Status) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = append(f.updated, orderID)
	return &domain.Order{OrderID: orderID, Status: status}, nil
}

func (f *fakeStore) updatedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.updated...)
}

type fakeNotifier struct {
	mu    sync.Mutex
	delay time.Duration
	calls []string
}

func (f *fakeNotifier) NotifyOrderProcessed(orderID, _ string) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.calls = append(f.calls, orderID)
	f.mu.Unlock()
}

func (f *fakeNotifier) notified() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestActor(t *testing.T, store *fakeStore, notifier *fakeNotifier) *Actor {
	t.Helper()
	a := NewActor(store, notifier, nil, zap.NewNop())
	a.Start()
	t.Cleanup(a.Stop)
	return a
}

func processOrder(sink *Completion) ProcessOrder {
	return ProcessOrder{
		OrderID:       "O-1",
		CustomerID:    "C-1",
		CustomerPhone: "+15550001111",
		Items:         []domain.OrderItem{{ItemID: "I-1", ProductName: "router", Quantity: 1, Price: 49.90}},
		Sink:          sink,
	}
}

func TestProcessOrderSuccess(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	a := newTestActor(t, store, notifier)

	sink := NewCompletion()
	require.True(t, a.Tell(processOrder(sink)))

	resp, ok := sink.Await(2 * time.Second)
	require.True(t, ok)
	require.Equal(t, "O-1", resp.OrderID)
	require.Equal(t, string(domain.StatusProcessing), resp.Status)
	require.Equal(t, "Order received and is being processed", resp.Message)

	// Detached status-update and notification finish by Stop.
	a.Stop()
	require.Equal(t, []string{"O-1"}, store.updatedIDs())
	require.Equal(t, []string{"O-1"}, notifier.notified())
}

func TestProcessOrderStoreFailure(t *testing.T) {
	store := &fakeStore{createErr: errors.New("connection refused")}
	notifier := &fakeNotifier{}
	a := newTestActor(t, store, notifier)

	sink := NewCompletion()
	require.True(t, a.Tell(processOrder(sink)))

	resp, ok := sink.Await(2 * time.Second)
	require.True(t, ok)
	require.Equal(t, string(domain.StatusError), resp.Status)
	require.Contains(t, resp.Message, "Failed to process order: connection refused")

	a.Stop()
	require.Empty(t, notifier.notified())
	require.Empty(t, store.updatedIDs())
}

func TestStorePanicBecomesErrorResponse(t *testing.T) {
	store := &fakeStore{panicValue: "nil dereference"}
	a := newTestActor(t, store, &fakeNotifier{})

	sink := NewCompletion()
	require.True(t, a.Tell(processOrder(sink)))

	resp, ok := sink.Await(2 * time.Second)
	require.True(t, ok)
	require.Equal(t, string(domain.StatusError), resp.Status)
	require.Contains(t, resp.Message, "nil dereference")

	// The actor survived the panic.
	second := NewCompletion()
	store.panicValue = nil
	require.True(t, a.Tell(processOrder(second)))
	_, ok = second.Await(2 * time.Second)
	require.True(t, ok)
}

func TestSlowNotifierDoesNotDelayResponse(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{delay: 3 * time.Second}
	a := NewActor(store, notifier, nil, zap.NewNop())
	a.Start()
	// No Stop in cleanup: Stop would wait out the sleeping notifier.

	sink := NewCompletion()
	require.True(t, a.Tell(processOrder(sink)))

	start := time.Now()
	resp, ok := sink.Await(2 * time.Second)
	require.True(t, ok)
	require.Equal(t, string(domain.StatusProcessing), resp.Status)
	require.Less(t, time.Since(start), time.Second,
		"response must not wait for the notification dispatch")
}

func TestStatusUpdateFailureDoesNotAffectResponse(t *testing.T) {
	store := &fakeStore{updateErr: errors.New("write timeout")}
	a := newTestActor(t, store, &fakeNotifier{})

	sink := NewCompletion()
	require.True(t, a.Tell(processOrder(sink)))

	resp, ok := sink.Await(2 * time.Second)
	require.True(t, ok)
	require.Equal(t, string(domain.StatusProcessing), resp.Status)
}

type bogusMessage struct{}

func (bogusMessage) isMessage() {}

func TestUnhandledMessageIsDropped(t *testing.T) {
	store := &fakeStore{}
	a := newTestActor(t, store, &fakeNotifier{})

	require.True(t, a.Tell(bogusMessage{}))

	// The actor keeps processing after the unknown variant.
	sink := NewCompletion()
	require.True(t, a.Tell(processOrder(sink)))
	_, ok := sink.Await(2 * time.Second)
	require.True(t, ok)
}

func TestTellAfterStop(t *testing.T) {
	a := NewActor(&fakeStore{}, &fakeNotifier{}, nil, zap.NewNop())
	a.Start()
	a.Stop()

	require.False(t, a.Tell(processOrder(NewCompletion())))
}

func TestConcurrentTellAndStopNeverStrandsASink(t *testing.T) {
	for i := 0; i < 200; i++ {
		a := NewActor(&fakeStore{}, &fakeNotifier{}, nil, zap.NewNop())
		a.Start()

		type outcome struct {
			accepted bool
			sink     *Completion
		}
		const senders = 4
		results := make(chan outcome, senders)

		var wg sync.WaitGroup
		for s := 0; s < senders; s++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sink := NewCompletion()
				results <- outcome{accepted: a.Tell(processOrder(sink)), sink: sink}
			}()
		}
		a.Stop()
		wg.Wait()
		close(results)

		// Every Tell that was accepted must still resolve its sink, no
		// matter how it interleaved with Stop; a rejected Tell hands the
		// sink back to the caller unresolved.
		for r := range results {
			if !r.accepted {
				require.False(t, r.sink.Resolved())
				continue
			}
			_, ok := r.sink.Await(5 * time.Second)
			require.True(t, ok)
		}
	}
}

func TestExactlyOneCompletionUnderConcurrency(t *testing.T) {
	store := &fakeStore{}
	a := newTestActor(t, store, &fakeNotifier{})

	const n = 50
	sinks := make([]*Completion, n)
	for i := range sinks {
		sinks[i] = NewCompletion()
		msg := processOrder(sinks[i])
		require.True(t, a.Tell(msg))
	}

	for _, sink := range sinks {
		resp, ok := sink.Await(5 * time.Second)
		require.True(t, ok)
		require.Equal(t, string(domain.StatusProcessing), resp.Status)
		// A closed, drained channel proves there was exactly one value.
		_, more := <-sink.Done()
		require.False(t, more)
	}
}
