package intake

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sergiohdezchi/order-processing-service/internal/domain"
)

const defaultMailboxSize = 1024

// Store is the slice of the order store client the actor needs.
type Store interface {
	CreateIfAbsent(ctx context.Context, orderID, customerID, customerPhone string, items []domain.OrderItem) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error)
}

// Notifier delivers the order-processed SMS. It never returns an error:
// notification failure must not affect order processing.
type Notifier interface {
	NotifyOrderProcessed(orderID, phoneNumber string)
}

// Events receives order lifecycle events. Implementations absorb their own
// failures; a nil Events disables publishing.
type Events interface {
	OrderAccepted(orderID string, status domain.Status)
}

// Actor drains one mailbox sequentially and orchestrates store and
// notification calls per request. Every accepted ProcessOrder resolves its
// sink exactly once, whichever way the store call goes.
type Actor struct {
	store    Store
	notifier Notifier
	events   Events
	logger   *zap.Logger

	mailbox chan Message
	quit    chan struct{}
	done    chan struct{}

	// sendMu fences enqueues against shutdown: Stop flips closed under the
	// write lock, so once quit is closed no Tell can still be mid-send and
	// the drain loop's final empty check is conclusive.
	sendMu sync.RWMutex
	closed bool

	startOnce sync.Once
	stopOnce  sync.Once
	detached  sync.WaitGroup
}

func NewActor(store Store, notifier Notifier, events Events, logger *zap.Logger) *Actor {
	return &Actor{
		store:    store,
		notifier: notifier,
		events:   events,
		logger:   logger,
		mailbox:  make(chan Message, defaultMailboxSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the processing loop. Idempotent.
func (a *Actor) Start() {
	a.startOnce.Do(func() {
		a.logger.Info("order intake actor started")
		go a.run()
	})
}

// Stop drains messages already accepted, waits for detached work and
// returns. Idempotent.
func (a *Actor) Stop() {
	a.stopOnce.Do(func() {
		a.sendMu.Lock()
		a.closed = true
		a.sendMu.Unlock()
		close(a.quit)
		<-a.done
		a.logger.Info("order intake actor stopped")
	})
}

// Tell enqueues a message. It reports false once the actor is shutting
// down; the caller then owns the sink again.
func (a *Actor) Tell(msg Message) bool {
	a.sendMu.RLock()
	defer a.sendMu.RUnlock()
	if a.closed {
		return false
	}
	select {
	case a.mailbox <- msg:
		return true
	case <-a.quit:
		return false
	}
}

func (a *Actor) run() {
	defer close(a.done)
	for {
		select {
		case msg := <-a.mailbox:
			a.dispatch(msg)
		case <-a.quit:
			for {
				select {
				case msg := <-a.mailbox:
					a.dispatch(msg)
				default:
					a.detached.Wait()
					return
				}
			}
		}
	}
}

// dispatch handles a single message. A panic inside a handler is caught
// here and resolved through the message's sink so the actor keeps running
// and the caller still gets a terminal response.
func (a *Actor) dispatch(msg Message) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("intake handler panicked", zap.Any("panic", r))
			if sink := sinkOf(msg); sink != nil {
				sink.Complete(Response{
					OrderID: orderIDOf(msg),
					Status:  string(domain.StatusError),
					Message: fmt.Sprintf("Failed to process order: %v", r),
				})
			}
		}
	}()

	switch m := msg.(type) {
	case ProcessOrder:
		a.handleProcess(m)
	case OrderSaved:
		a.handleSaved(m)
	case OrderError:
		a.handleError(m)
	default:
		// Unhandled variants are logged and dropped; the actor stays up.
		a.logger.Warn("unhandled intake message", zap.Any("type", fmt.Sprintf("%T", msg)))
	}
}

func (a *Actor) handleProcess(m ProcessOrder) {
	a.logger.Info("processing order", zap.String("order_id", m.OrderID))

	a.detached.Add(1)
	go func() {
		defer a.detached.Done()
		defer func() {
			if r := recover(); r != nil {
				a.selfTell(OrderError{
					OrderID:      m.OrderID,
					ErrorMessage: fmt.Sprint(r),
					Sink:         m.Sink,
				})
			}
		}()

		order, err := a.store.CreateIfAbsent(context.Background(), m.OrderID, m.CustomerID, m.CustomerPhone, m.Items)
		if err != nil {
			a.logger.Error("error saving order",
				zap.String("order_id", m.OrderID),
				zap.Error(err),
			)
			a.selfTell(OrderError{
				OrderID:      m.OrderID,
				ErrorMessage: err.Error(),
				Sink:         m.Sink,
			})
			return
		}

		a.selfTell(OrderSaved{
			OrderID:       order.OrderID,
			Status:        order.Status,
			CustomerPhone: order.CustomerPhone,
			Sink:          m.Sink,
		})
	}()
}

func (a *Actor) handleSaved(m OrderSaved) {
	// Status update is fire-and-forget: its outcome is logged and never
	// reaches the caller.
	a.detached.Add(1)
	go func() {
		defer a.detached.Done()
		if _, err := a.store.UpdateStatus(context.Background(), m.OrderID, domain.StatusProcessing); err != nil {
			a.logger.Error("error updating order status",
				zap.String("order_id", m.OrderID),
				zap.Error(err),
			)
			return
		}
		a.logger.Info("order status updated to PROCESSING", zap.String("order_id", m.OrderID))
	}()

	// Same for the SMS notification: the gateway's own timeout bounds it.
	a.detached.Add(1)
	go func() {
		defer a.detached.Done()
		a.notifier.NotifyOrderProcessed(m.OrderID, m.CustomerPhone)
	}()

	if a.events != nil {
		a.detached.Add(1)
		go func() {
			defer a.detached.Done()
			a.events.OrderAccepted(m.OrderID, domain.StatusProcessing)
		}()
	}

	completed := m.Sink.Complete(Response{
		OrderID: m.OrderID,
		Status:  string(domain.StatusProcessing),
		Message: "Order received and is being processed",
	})
	if !completed {
		a.logger.Warn("response sink already resolved", zap.String("order_id", m.OrderID))
		return
	}
	a.logger.Info("response sent", zap.String("order_id", m.OrderID))
}

func (a *Actor) handleError(m OrderError) {
	completed := m.Sink.Complete(Response{
		OrderID: m.OrderID,
		Status:  string(domain.StatusError),
		Message: "Failed to process order: " + m.ErrorMessage,
	})
	if !completed {
		a.logger.Warn("response sink already resolved", zap.String("order_id", m.OrderID))
		return
	}
	a.logger.Error("error response sent",
		zap.String("order_id", m.OrderID),
		zap.String("error", m.ErrorMessage),
	)
}

// selfTell enqueues a follow-up message. If the mailbox already shut down
// the sink is resolved here so the caller never hangs.
func (a *Actor) selfTell(msg Message) {
	if a.Tell(msg) {
		return
	}
	if sink := sinkOf(msg); sink != nil {
		sink.Complete(Response{
			OrderID: orderIDOf(msg),
			Status:  string(domain.StatusError),
			Message: "Failed to process order: intake is shutting down",
		})
	}
}

func sinkOf(msg Message) *Completion {
	switch m := msg.(type) {
	case ProcessOrder:
		return m.Sink
	case OrderSaved:
		return m.Sink
	case OrderError:
		return m.Sink
	}
	return nil
}

func orderIDOf(msg Message) string {
	switch m := msg.(type) {
	case ProcessOrder:
		return m.OrderID
	case OrderSaved:
		return m.OrderID
	case OrderError:
		return m.OrderID
	}
	return ""
}
