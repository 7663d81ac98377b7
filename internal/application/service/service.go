package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sergiohdezchi/order-processing-service/internal/domain"
	"github.com/sergiohdezchi/order-processing-service/internal/observability"
)

//go:generate mockgen -source internal/application/service/service.go -destination=internal/application/service/service_mock_test.go -package=service

type Repository interface {
	CreateIfAbsent(ctx context.Context, order *domain.Order) (*domain.Order, bool, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	CountByPeriod(ctx context.Context, from, to time.Time) (int64, error)
}

type Cache interface {
	Get(orderID string) (*domain.Order, bool)
	Set(order *domain.Order)
}

// Service is the order store client: idempotent creation, status updates,
// lookups and range counts against the persistent collection, with a read
// cache in front. Backend failures surface to the caller untouched; retry
// policy belongs to the caller, not here.
type Service struct {
	repo    Repository
	cache   Cache
	logger  *zap.Logger
	metrics observability.Metrics
}

func NewService(repo Repository, cache Cache, logger *zap.Logger, metrics observability.Metrics) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

// CreateIfAbsent creates a PENDING order for orderID unless one already
// exists; the existing document is returned unchanged in that case.
func (s *Service) CreateIfAbsent(ctx context.Context, orderID, customerID, customerPhone string, items []domain.OrderItem) (*domain.Order, error) {
	order := &domain.Order{
		OrderID:       orderID,
		CustomerID:    customerID,
		CustomerPhone: customerPhone,
		Items:         items,
	}

	t0 := time.Now()
	saved, created, err := s.repo.CreateIfAbsent(ctx, order)
	if err != nil {
		s.metrics.IncOrdersFailed()
		s.logger.Error("error while creating order in db",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}
	s.metrics.ObserveStore("create", convertToMs(t0))

	if created {
		s.metrics.IncOrdersCreated()
		s.logger.Info("new order created",
			zap.String("order_id", saved.OrderID),
			zap.String("status", string(saved.Status)),
		)
	} else {
		s.metrics.IncOrdersDuplicate()
		s.logger.Info("order already exists, returning existing document",
			zap.String("order_id", saved.OrderID),
			zap.String("status", string(saved.Status)),
		)
	}

	s.cache.Set(saved)
	return saved, nil
}

// UpdateStatus moves an existing order to status. A missing order yields
// domain.ErrNotFound and writes nothing.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error) {
	t0 := time.Now()
	updated, err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("status update for unknown order",
				zap.String("order_id", orderID),
				zap.String("status", string(status)),
			)
			return nil, err
		}
		s.logger.Error("error while updating order status",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}
	s.metrics.ObserveStore("update_status", convertToMs(t0))

	s.cache.Set(updated)
	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

// FindByOrderID looks the order up in the cache first, then in the store.
// Absence is domain.ErrNotFound, a valid outcome.
func (s *Service) FindByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	tCache := time.Now()
	if order, ok := s.cache.Get(orderID); ok {
		s.metrics.ObserveLookup("cache", convertToMs(tCache))
		return order, nil
	}

	tDB := time.Now()
	order, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("order lookup failed",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
		}
		return nil, err
	}
	s.metrics.ObserveLookup("db", convertToMs(tDB))

	s.cache.Set(order)
	return order, nil
}

// CountByRange counts orders last written in [from, to]. The boundary
// rejects inverted ranges before this call is made.
func (s *Service) CountByRange(ctx context.Context, from, to time.Time) (int64, error) {
	t0 := time.Now()
	n, err := s.repo.CountByPeriod(ctx, from, to)
	if err != nil {
		s.logger.Error("order count failed", zap.Error(err))
		return 0, err
	}
	s.metrics.ObserveStore("count", convertToMs(t0))
	return n, nil
}

func convertToMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
