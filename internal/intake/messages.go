package intake

import "github.com/sergiohdezchi/order-processing-service/internal/domain"

// Response is the single terminal payload delivered to the caller of
// CreateOrder, on both the success and the failure path.
type Response struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Message is one of the three intake variants. Messages are transient and
// in-memory only; the response sink travels with them and is owned by
// exactly one message at a time.
type Message interface {
	isMessage()
}

// ProcessOrder starts an intake: it owns the sink until the store outcome
// derives an OrderSaved or OrderError from it.
type ProcessOrder struct {
	OrderID       string
	CustomerID    string
	CustomerPhone string
	Items         []domain.OrderItem
	Sink          *Completion
}

// OrderSaved is the internal success signal the actor sends itself once
// the store accepted the order.
type OrderSaved struct {
	OrderID       string
	Status        domain.Status
	CustomerPhone string
	Sink          *Completion
}

// OrderError is the internal failure signal; ErrorMessage is human
// readable and ends up in the caller's response.
type OrderError struct {
	OrderID      string
	ErrorMessage string
	Sink         *Completion
}

func (ProcessOrder) isMessage() {}
func (OrderSaved) isMessage()   {}
func (OrderError) isMessage()   {}
