package observability

import "sync"

// Inmem is a Metrics implementation for tests: it keeps plain counters and
// a bounded ring of recent observations.
type Inmem struct {
	mu     sync.Mutex
	counts map[string]int
	last   []any
	max    int
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		counts: make(map[string]int),
		max:    max,
	}
}

func (m *Inmem) inc(name string) {
	m.mu.Lock()
	m.counts[name]++
	m.mu.Unlock()
}

func (m *Inmem) push(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[1:]
	}
}

// Count returns the current value of a named counter
// (orders_created, sms_sent, sms_failed, events_published, ...).
func (m *Inmem) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

func (m *Inmem) IncOrdersCreated() { m.inc("orders_created") }
func (m *Inmem) IncOrdersDuplicate() { m.inc("orders_duplicate") }
func (m *Inmem) IncOrdersFailed() { m.inc("orders_failed") }
func (m *Inmem) IncSmsSent() { m.inc("sms_sent") }
func (m *Inmem) IncSmsFailed() { m.inc("sms_failed") }
func (m *Inmem) IncEventsPublished() { m.inc("events_published") }
func (m *Inmem) IncEventsDropped() { m.inc("events_dropped") }

func (m *Inmem) ObserveStore(op string, durMs float64) {
	m.push(struct {
		Kind, Op string
		Dur      float64
	}{"store", op, durMs})
}

func (m *Inmem) ObserveLookup(source string, durMs float64) {
	m.push(struct {
		Kind, Source string
		Dur          float64
	}{"lookup", source, durMs})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(struct {
		Kind, Method, Route string
		Status              int
		Dur                 float64
	}{"http", method, route, status, durMs})
}
