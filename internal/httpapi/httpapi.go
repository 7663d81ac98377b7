package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sergiohdezchi/order-processing-service/internal/domain"
	"github.com/sergiohdezchi/order-processing-service/internal/observability"
)

//go:generate mockgen -source internal/httpapi/httpapi.go -destination=internal/httpapi/httpapi_mock_test.go -package=httpapi

// Queries is the read side of the order store the HTTP surface needs.
type Queries interface {
	FindByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	CountByRange(ctx context.Context, from, to time.Time) (int64, error)
}

type Server struct {
	queries Queries
	router  chi.Router
	logger  *zap.Logger
	metrics observability.Metrics
	promh   http.Handler
}

// New wires the query endpoints. promHandler serves GET /metrics; pass nil
// to leave the route off.
func New(queries Queries, logger *zap.Logger, metrics observability.Metrics, promHandler http.Handler) *Server {
	s := &Server{
		queries: queries,
		logger:  logger,
		metrics: metrics,
		promh:   promHandler,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(ServerTimingApp(s.metrics))

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/count", s.countOrders)
		r.Get("/{orderID}", s.getOrder)
		r.Get("/{orderID}/status", s.getOrderStatus)
	})
	r.Get("/healthz", s.healthz)
	if s.promh != nil {
		r.Method(http.MethodGet, "/metrics", s.promh)
	}

	s.router = r
}

type statusResponse struct {
	OrderID             string    `json:"orderId"`
	Status              string    `json:"status"`
	CustomerID          string    `json:"customerId"`
	CustomerPhoneNumber string    `json:"customerPhoneNumber"`
	Timestamp           time.Time `json:"timestamp"`
}

type countResponse struct {
	TotalOrders int64     `json:"totalOrders"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

type errorResponse struct {
	Error   string `json:"error"`
	OrderID string `json:"orderId,omitempty"`
}

func (s *Server) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, err := s.queries.FindByOrderID(r.Context(), orderID)
	if err != nil {
		s.renderLookupError(w, orderID, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		OrderID:             order.OrderID,
		Status:              string(order.Status),
		CustomerID:          order.CustomerID,
		CustomerPhoneNumber: order.CustomerPhone,
		Timestamp:           order.Timestamp,
	})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, err := s.queries.FindByOrderID(r.Context(), orderID)
	if err != nil {
		s.renderLookupError(w, orderID, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// countOrders validates the range before the store sees it: a reversed
// range is a client error, not an empty result.
func (s *Server) countOrders(w http.ResponseWriter, r *http.Request) {
	from, err := parseDate(r.URL.Query().Get("startDate"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid startDate: " + err.Error()})
		return
	}
	to, err := parseDate(r.URL.Query().Get("endDate"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid endDate: " + err.Error()})
		return
	}
	if to.Before(from) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "startDate must not be after endDate"})
		return
	}

	total, err := s.queries.CountByRange(r.Context(), from, to)
	if err != nil {
		s.logger.Error("count orders", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, countResponse{
		TotalOrders: total,
		StartDate:   from,
		EndDate:     to,
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) renderLookupError(w http.ResponseWriter, orderID string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "Order not found",
			OrderID: orderID,
		})
		return
	}
	s.logger.Error("order lookup", zap.String("order_id", orderID), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", OrderID: orderID})
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("missing")
	}
	return time.Parse(time.RFC3339, raw)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	s.logger.Info("http server listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}
