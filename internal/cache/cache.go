package cache

import (
	"github.com/sergiohdezchi/order-processing-service/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is an LRU in front of the order store, keyed by the business order
// id. Values are stored by copy so callers cannot mutate cached state.
type Cache struct {
	lru *lru.Cache[string, domain.Order]
}

func New(size int) (*Cache, error) {
	if size <= 0 {
		size = 1
	}
	c, err := lru.New[string, domain.Order](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

func (c *Cache) Get(orderID string) (*domain.Order, bool) {
	order, ok := c.lru.Get(orderID)
	if !ok {
		return nil, false
	}
	// Detach the items slice as well: a shallow copy would share its
	// backing array with the cached document.
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	return &order, true
}

// Set refreshes the cached document. Every successful store write goes
// through here so lookups never serve a stale status for longer than the
// write itself.
func (c *Cache) Set(order *domain.Order) {
	if order == nil || order.OrderID == "" {
		return
	}
	doc := *order
	doc.Items = append([]domain.OrderItem(nil), doc.Items...)
	c.lru.Add(doc.OrderID, doc)
}
