package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(UpOrderItemsTable, DownOrderItemsTable)
}

func UpOrderItemsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `CREATE TABLE orders.order_items
(
    order_ref    UUID NOT NULL REFERENCES orders.orders (id) ON DELETE CASCADE,
    pos          INT NOT NULL,
    item_id      VARCHAR(255) NOT NULL,
    product_name VARCHAR(255) NOT NULL,
    quantity     INT NOT NULL CHECK (quantity >= 0),
    price        DOUBLE PRECISION NOT NULL CHECK (price >= 0),
    PRIMARY KEY (order_ref, pos)
);`)
	return err
}

func DownOrderItemsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "DROP TABLE orders.order_items;")
	return err
}
