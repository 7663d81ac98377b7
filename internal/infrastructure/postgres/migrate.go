package postgres

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	_ "github.com/sergiohdezchi/order-processing-service/internal/infrastructure/postgres/migrations"
)

// The migration sources are embedded so version discovery does not depend
// on the process working directory; the migrations themselves are the
// compiled-in Go functions registered by the import above.
//
//go:embed migrations/*.go
var migrationsFS embed.FS

// Migrate applies the registered goose migrations through a short-lived
// database/sql connection; the pgx pool stays on the hot path.
func Migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open for migrations: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
