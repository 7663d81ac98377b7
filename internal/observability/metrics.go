package observability

import (
	"fmt"
	"net/http"
)

// Metrics is the process-wide metrics sink. Components receive it at
// construction instead of touching global counters.
type Metrics interface {
	IncOrdersCreated()
	IncOrdersDuplicate()
	IncOrdersFailed()
	IncSmsSent()
	IncSmsFailed()
	IncEventsPublished()
	IncEventsDropped()
	ObserveStore(op string, durMs float64)
	ObserveLookup(source string, durMs float64)
	ObserveHTTP(method, route string, status int, durMs float64)
}

type Noop struct{}

func (Noop) IncOrdersCreated() {}
func (Noop) IncOrdersDuplicate() {}
func (Noop) IncOrdersFailed() {}
func (Noop) IncSmsSent() {}
func (Noop) IncSmsFailed() {}
func (Noop) IncEventsPublished() {}
func (Noop) IncEventsDropped() {}
func (Noop) ObserveStore(string, float64) {}
func (Noop) ObserveLookup(string, float64) {}
func (Noop) ObserveHTTP(string, string, int, float64) {}

// AppendServerTiming adds a Server-Timing entry to the response so the
// browser dev tools can show where a request spent its time.
func AppendServerTiming(w http.ResponseWriter, name string, durMs float64, desc string) {
	switch {
	case durMs > 0 && desc != "":
		w.Header().Add("Server-Timing", fmt.Sprintf("%s;dur=%.2f;desc=%q", name, durMs, desc))
	case durMs > 0:
		w.Header().Add("Server-Timing", fmt.Sprintf("%s;dur=%.2f", name, durMs))
	case desc != "":
		w.Header().Add("Server-Timing", fmt.Sprintf("%s;desc=%q", name, desc))
	}
}
