package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements Metrics on top of a prometheus registry.
type Prometheus struct {
	orders  *prometheus.CounterVec
	sms     *prometheus.CounterVec
	events  *prometheus.CounterVec
	storeMS *prometheus.HistogramVec
	lookup  *prometheus.HistogramVec
	httpReq *prometheus.CounterVec
	httpMS  *prometheus.HistogramVec
}

func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Prometheus{
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderintake",
			Name:      "orders_total",
			Help:      "Order intake outcomes.",
		}, []string{"result"}),
		sms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderintake",
			Name:      "sms_total",
			Help:      "SMS notification outcomes.",
		}, []string{"result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderintake",
			Name:      "order_events_total",
			Help:      "Order event publishing outcomes.",
		}, []string{"result"}),
		storeMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orderintake",
			Name:      "store_op_duration_ms",
			Help:      "Order store operation latency in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"op"}),
		lookup: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orderintake",
			Name:      "lookup_duration_ms",
			Help:      "Order lookup latency in milliseconds by source.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250},
		}, []string{"source"}),
		httpReq: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderintake",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orderintake",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.orders, m.sms, m.events, m.storeMS, m.lookup, m.httpReq, m.httpMS)
	return m
}

func (m *Prometheus) IncOrdersCreated() { m.orders.WithLabelValues("created").Inc() }
func (m *Prometheus) IncOrdersDuplicate() { m.orders.WithLabelValues("duplicate").Inc() }
func (m *Prometheus) IncOrdersFailed() { m.orders.WithLabelValues("failed").Inc() }
func (m *Prometheus) IncSmsSent() { m.sms.WithLabelValues("sent").Inc() }
func (m *Prometheus) IncSmsFailed() { m.sms.WithLabelValues("failed").Inc() }
func (m *Prometheus) IncEventsPublished() { m.events.WithLabelValues("published").Inc() }
func (m *Prometheus) IncEventsDropped() { m.events.WithLabelValues("dropped").Inc() }

func (m *Prometheus) ObserveStore(op string, durMs float64) {
	m.storeMS.WithLabelValues(op).Observe(durMs)
}

func (m *Prometheus) ObserveLookup(source string, durMs float64) {
	m.lookup.WithLabelValues(source).Observe(durMs)
}

func (m *Prometheus) ObserveHTTP(method, route string, status int, durMs float64) {
	m.httpReq.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpMS.WithLabelValues(method, route).Observe(durMs)
}

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
