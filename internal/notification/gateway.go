package notification

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sergiohdezchi/order-processing-service/internal/config"
	"github.com/sergiohdezchi/order-processing-service/internal/observability"
)

// Submit failure classes an adapter maps transport errors onto.
var (
	ErrSubmitTimeout = errors.New("sms submit timeout")
	ErrChannelClosed = errors.New("sms channel failure")
)

// Session is one bound session to the SMS transport. Submit returns the
// backend's acknowledgment code; transport-level failures come back as an
// error wrapping one of the classes above.
type Session interface {
	Bound() bool
	Submit(destination, text string, timeout time.Duration) (uint32, error)
	Close() error
}

// Binder establishes sessions to the transport.
type Binder interface {
	Bind() (Session, error)
	Close() error
}

// Gateway owns the SMS session and its resilience policy. It never raises
// across its boundary: every failure mode collapses to false plus a logged
// reason and a counter increment, because notification failure must never
// fail order processing.
type Gateway struct {
	cfg     config.Smpp
	binder  Binder
	logger  *zap.Logger
	metrics observability.Metrics

	// session is swapped atomically; mu scopes the swap itself, never a
	// submit, so an in-flight Submit cannot observe a half-closed handle.
	session atomic.Pointer[sessionRef]
	mu      sync.Mutex
}

type sessionRef struct {
	s Session
}

func NewGateway(cfg config.Smpp, binder Binder, logger *zap.Logger, metrics observability.Metrics) *Gateway {
	return &Gateway{
		cfg:     cfg,
		binder:  binder,
		logger:  logger,
		metrics: metrics,
	}
}

// Connect establishes the initial session. A bind failure is logged and
// leaves the gateway alive but sessionless; the next send retries.
func (g *Gateway) Connect() {
	if !g.cfg.Enabled {
		g.logger.Info("sms gateway is disabled")
		return
	}
	g.reconnect()
}

// SendNotification submits one message. Disabled gateway: false without an
// attempt. Missing session: exactly one reconnect attempt, then give up.
func (g *Gateway) SendNotification(destination, message string) bool {
	if !g.cfg.Enabled {
		g.logger.Info("sms gateway disabled, not sending",
			zap.String("destination", destination),
		)
		return false
	}

	s := g.current()
	if s == nil || !s.Bound() {
		g.logger.Warn("sms session is not bound, attempting to reconnect")
		s = g.reconnect()
		if s == nil {
			g.logger.Error("cannot send sms, session is not available",
				zap.String("destination", destination),
			)
			return false
		}
	}

	code, err := s.Submit(destination, message, g.cfg.SubmitTimeout)
	switch {
	case err == nil && code == 0:
		g.metrics.IncSmsSent()
		g.logger.Info("sms sent", zap.String("destination", destination))
		return true
	case err == nil:
		g.metrics.IncSmsFailed()
		g.logger.Error("sms send failed",
			zap.String("destination", destination),
			zap.Uint32("ack_code", code),
		)
		return false
	case errors.Is(err, ErrSubmitTimeout):
		g.metrics.IncSmsFailed()
		g.logger.Error("sms send timeout",
			zap.String("destination", destination),
			zap.Error(err),
		)
		return false
	case errors.Is(err, ErrChannelClosed):
		// Force a reconnect on the next call.
		g.invalidate(s)
		g.metrics.IncSmsFailed()
		g.logger.Error("sms channel error, session invalidated",
			zap.String("destination", destination),
			zap.Error(err),
		)
		return false
	default:
		g.metrics.IncSmsFailed()
		g.logger.Error("error sending sms",
			zap.String("destination", destination),
			zap.Error(err),
		)
		return false
	}
}

// NotifyOrderProcessed sends the order-processed text for an order.
func (g *Gateway) NotifyOrderProcessed(orderID, phoneNumber string) {
	message := "Your order " + orderID + " has been processed"
	if g.SendNotification(phoneNumber, message) {
		g.logger.Info("order notification sms sent", zap.String("order_id", orderID))
		return
	}
	g.logger.Warn("order notification sms could not be sent", zap.String("order_id", orderID))
}

// Close tears the session down before releasing the binder, whether or not
// a bind ever succeeded.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ref := g.session.Load(); ref != nil {
		g.logger.Info("closing sms session")
		if err := ref.s.Close(); err != nil {
			g.logger.Warn("error closing sms session", zap.Error(err))
		}
		g.session.Store(nil)
	}
	if g.binder != nil {
		if err := g.binder.Close(); err != nil {
			g.logger.Warn("error closing sms client", zap.Error(err))
		}
	}
}

func (g *Gateway) current() Session {
	if ref := g.session.Load(); ref != nil {
		return ref.s
	}
	return nil
}

// reconnect binds a fresh session unless a concurrent caller already did.
func (g *Gateway) reconnect() Session {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ref := g.session.Load(); ref != nil {
		if ref.s.Bound() {
			return ref.s
		}
		// Release the dead session before replacing it, or its transport
		// resources leak.
		_ = ref.s.Close()
		g.session.Store(nil)
	}

	s, err := g.binder.Bind()
	if err != nil {
		g.logger.Warn("could not bind sms session, operating without sms capability",
			zap.Error(err),
		)
		g.session.Store(nil)
		return nil
	}
	g.session.Store(&sessionRef{s: s})
	g.logger.Info("sms session bound")
	return s
}

// invalidate drops the cached session, but only if it is still the one the
// failing submit used; a concurrent reconnect must not be undone.
func (g *Gateway) invalidate(s Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ref := g.session.Load(); ref != nil && ref.s == s {
		_ = ref.s.Close()
		g.session.Store(nil)
	}
}
