package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sergiohdezchi/order-processing-service/internal/domain"
)

func TestDispatcherAcceptsValidRequest(t *testing.T) {
	store := &fakeStore{}
	a := newTestActor(t, store, &fakeNotifier{})
	d := NewDispatcher(a, zap.NewNop())

	sink := d.CreateOrder("O-1", "C-1", "+15550001111", []domain.OrderItem{
		{ItemID: "I-1", ProductName: "modem", Quantity: 2, Price: 30},
	})

	resp, ok := sink.Await(2 * time.Second)
	require.True(t, ok)
	require.Equal(t, string(domain.StatusProcessing), resp.Status)
}

func TestDispatcherRejectsMalformedRequest(t *testing.T) {
	testCases := []struct {
		name    string
		orderID string
		items   []domain.OrderItem
	}{
		{
			name:  "missing order id",
			items: []domain.OrderItem{{ItemID: "I-1", Quantity: 1, Price: 1}},
		},
		{
			name:    "negative quantity",
			orderID: "O-1",
			items:   []domain.OrderItem{{ItemID: "I-1", Quantity: -1, Price: 1}},
		},
		{
			name:    "negative price",
			orderID: "O-1",
			items:   []domain.OrderItem{{ItemID: "I-1", Quantity: 1, Price: -0.5}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			a := newTestActor(t, store, &fakeNotifier{})
			d := NewDispatcher(a, zap.NewNop())

			sink := d.CreateOrder(tc.orderID, "C-1", "+15550001111", tc.items)

			// The rejection resolves the sink before the actor sees anything.
			require.True(t, sink.Resolved())
			resp, ok := sink.Await(time.Second)
			require.True(t, ok)
			require.Equal(t, string(domain.StatusError), resp.Status)
			require.Contains(t, resp.Message, "Exception: ")

			a.Stop()
			require.Empty(t, store.created)
		})
	}
}

func TestDispatcherAfterShutdown(t *testing.T) {
	a := NewActor(&fakeStore{}, &fakeNotifier{}, nil, zap.NewNop())
	a.Start()
	a.Stop()
	d := NewDispatcher(a, zap.NewNop())

	sink := d.CreateOrder("O-1", "C-1", "+15550001111", nil)
	resp, ok := sink.Await(time.Second)
	require.True(t, ok)
	require.Equal(t, string(domain.StatusError), resp.Status)
}
