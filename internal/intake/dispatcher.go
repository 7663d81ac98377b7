package intake

import (
	"go.uber.org/zap"

	"github.com/sergiohdezchi/order-processing-service/internal/domain"
)

// Dispatcher sits between the RPC boundary and the actor. It builds the
// initial ProcessOrder message and hands it off; the calling thread is
// only ever blocked for the enqueue itself.
type Dispatcher struct {
	actor  *Actor
	logger *zap.Logger
}

func NewDispatcher(actor *Actor, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{actor: actor, logger: logger}
}

// CreateOrder accepts a create-order request and returns its response
// sink. A request that fails construction is answered immediately with an
// ERROR response, without involving the actor.
func (d *Dispatcher) CreateOrder(orderID, customerID, customerPhone string, items []domain.OrderItem) *Completion {
	sink := NewCompletion()

	order := domain.Order{
		OrderID:       orderID,
		CustomerID:    customerID,
		CustomerPhone: customerPhone,
		Items:         items,
	}
	if err := order.Validate(); err != nil {
		d.logger.Warn("rejecting malformed create-order request",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		sink.Complete(Response{
			OrderID: orderID,
			Status:  string(domain.StatusError),
			Message: "Exception: " + err.Error(),
		})
		return sink
	}

	accepted := d.actor.Tell(ProcessOrder{
		OrderID:       orderID,
		CustomerID:    customerID,
		CustomerPhone: customerPhone,
		Items:         items,
		Sink:          sink,
	})
	if !accepted {
		sink.Complete(Response{
			OrderID: orderID,
			Status:  string(domain.StatusError),
			Message: "Exception: order intake is shutting down",
		})
	}
	return sink
}
