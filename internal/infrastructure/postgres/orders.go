package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sergiohdezchi/order-processing-service/internal/domain"
)

// OrderRepository persists orders in two tables: <schema>.orders holds the
// document head keyed by a storage-internal uuid with a UNIQUE business
// order_id, <schema>.order_items holds the item list in insertion order.
type OrderRepository struct {
	pool   *pgxpool.Pool
	schema string
}

func NewOrderRepository(pool *pgxpool.Pool, schema string) *OrderRepository {
	if schema == "" {
		schema = "orders"
	}
	return &OrderRepository{pool: pool, schema: schema}
}

func (r *OrderRepository) CreateIfAbsent(ctx context.Context, o *domain.Order) (*domain.Order, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.NewString()
	now := time.Now().UTC()

	// The UNIQUE constraint on order_id makes creation idempotent on the
	// business key: a concurrent or repeated create inserts nothing.
	tag, err := tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s.orders (id, order_id, customer_id, customer_phone, status, ts)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (order_id) DO NOTHING
		`, r.schema), id, o.OrderID, o.CustomerID, o.CustomerPhone, domain.StatusPending, now)
	if err != nil {
		return nil, false, fmt.Errorf("insert order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Existing document wins, whatever payload the retry carried.
		existing, err := r.GetByOrderID(ctx, o.OrderID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	for pos, it := range o.Items {
		_, err := tx.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s.order_items (order_ref, pos, item_id, product_name, quantity, price)
			VALUES ($1,$2,$3,$4,$5,$6)
			`, r.schema), id, pos, it.ItemID, it.ProductName, it.Quantity, it.Price)
		if err != nil {
			return nil, false, fmt.Errorf("insert item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}

	created := &domain.Order{
		ID:            id,
		OrderID:       o.OrderID,
		CustomerID:    o.CustomerID,
		CustomerPhone: o.CustomerPhone,
		Items:         o.Items,
		Status:        domain.StatusPending,
		Timestamp:     now,
	}
	return created, true, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error) {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE %s.orders SET status=$2, ts=$3 WHERE order_id=$1
		`, r.schema), orderID, status, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByOrderID(ctx, orderID)
}

func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, order_id, customer_id, customer_phone, status, ts
		FROM %s.orders
		WHERE order_id=$1
		`, r.schema), orderID).Scan(&o.ID, &o.OrderID, &o.CustomerID, &o.CustomerPhone, &o.Status, &o.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT item_id, product_name, quantity, price
		FROM %s.order_items
		WHERE order_ref=$1
		ORDER BY pos
		`, r.schema), o.ID)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ItemID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return &o, nil
}

// CountByPeriod counts orders whose last-write instant falls in [from, to],
// both ends inclusive. Range sanity is the caller's concern.
func (r *OrderRepository) CountByPeriod(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT COUNT(*) FROM %s.orders WHERE ts BETWEEN $1 AND $2
		`, r.schema), from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}
