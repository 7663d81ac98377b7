package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"

	"github.com/sergiohdezchi/order-processing-service/internal/config"
	"github.com/sergiohdezchi/order-processing-service/internal/pkg/retry"
)

// Connect builds a pgx pool with query tracing and pings it, retrying per
// the configured policy so the service survives a database that comes up
// slightly later than the process.
func Connect(ctx context.Context, dsn string, retryPolicy config.Retry, logger *zap.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   newZapTracer(logger),
		LogLevel: tracelog.LogLevelWarn,
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := retry.Do(ctx, retryPolicy, func() error {
		return pool.Ping(ctx)
	}); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
