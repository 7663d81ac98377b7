package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("order not found")

// Status is the lifecycle state of an order. It only changes through the
// store's status-update operation.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusError      Status = "ERROR"
)

type OrderItem struct {
	ItemID      string  `json:"item_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type Order struct {
	// ID is the storage-internal identifier. Uniqueness of an order is
	// governed by OrderID, never by this field.
	ID            string      `json:"-"`
	OrderID       string      `json:"order_id"`
	CustomerID    string      `json:"customer_id"`
	CustomerPhone string      `json:"customer_phone_number"`
	Items         []OrderItem `json:"items"`
	Status        Status      `json:"status"`
	// Timestamp is the last-write instant, refreshed on every status change.
	Timestamp time.Time `json:"timestamp"`
}

// Validate rejects orders that must never reach the intake pipeline.
func (o *Order) Validate() error {
	if o.OrderID == "" {
		return errors.New("order_id is required")
	}
	for i, it := range o.Items {
		if it.Quantity < 0 {
			return fmt.Errorf("item %d: negative quantity %d", i, it.Quantity)
		}
		if it.Price < 0 {
			return fmt.Errorf("item %d: negative price %f", i, it.Price)
		}
	}
	return nil
}
