package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(UpOrdersTable, DownOrdersTable)
}

func UpOrdersTable(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `CREATE SCHEMA IF NOT EXISTS orders;`); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `CREATE TABLE orders.orders
(
    id             UUID PRIMARY KEY,
    order_id       VARCHAR(255) NOT NULL UNIQUE,
    customer_id    VARCHAR(255) NOT NULL,
    customer_phone VARCHAR(32)  NOT NULL,
    status         VARCHAR(32)  NOT NULL,
    ts             TIMESTAMPTZ  NOT NULL
);`)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `CREATE INDEX orders_ts_idx ON orders.orders (ts);`)
	return err
}

func DownOrdersTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "DROP TABLE orders.orders;")
	return err
}
