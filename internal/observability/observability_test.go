package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInmemCounters(t *testing.T) {
	m := NewInmem(10)

	m.IncSmsSent()
	m.IncSmsSent()
	m.IncSmsFailed()
	m.IncOrdersCreated()

	require.Equal(t, 2, m.Count("sms_sent"))
	require.Equal(t, 1, m.Count("sms_failed"))
	require.Equal(t, 1, m.Count("orders_created"))
	require.Equal(t, 0, m.Count("orders_failed"))
}

func TestInmemRingIsBounded(t *testing.T) {
	m := NewInmem(2)

	m.ObserveStore("create", 1)
	m.ObserveStore("create", 2)
	m.ObserveStore("create", 3)

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.last, 2)
}

func TestAppendServerTiming(t *testing.T) {
	tests := []struct {
		name   string
		durMs  float64
		desc   string
		expect string
	}{
		{name: "db", durMs: 12.5, expect: "db;dur=12.50"},
		{name: "src", desc: "cache", expect: `src;desc="cache"`},
		{name: "both", durMs: 1, desc: "db", expect: `both;dur=1.00;desc="db"`},
		{name: "none"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			AppendServerTiming(w, tc.name, tc.durMs, tc.desc)
			if tc.expect == "" {
				require.Empty(t, w.Header().Values("Server-Timing"))
				return
			}
			require.Equal(t, tc.expect, w.Header().Get("Server-Timing"))
		})
	}
}
