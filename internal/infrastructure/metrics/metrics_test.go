package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestKioskMetrics(t *testing.T) {
	m := NewKioskMetrics(prometheus.NewRegistry())

	m.RecordFetch("edge-rates", "bitcoin", "transport", 0.2)
	m.RecordFetch("edge-rates", "bitcoin", "success", 0.1)
	m.RecordRetry("edge-rates", "bitcoin")
	m.RecordQuote("bitcoin", 42000)
	m.RecordPaymentRequest("bip21", "success")
	m.RecordPaymentRequest("bip21", "success")
	m.SetActiveSessions(3)
	m.SetProviderHealthy("edge-rates", true)

	require.Equal(t, 1.0, testutil.ToFloat64(m.RateFetchTotal.WithLabelValues("edge-rates", "bitcoin", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RateFetchRetries.WithLabelValues("edge-rates", "bitcoin")))
	require.Equal(t, 42000.0, testutil.ToFloat64(m.RateLast.WithLabelValues("bitcoin")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.PaymentRequestsTotal.WithLabelValues("bip21", "success")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.SessionsActive))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RateProviderHealthy.WithLabelValues("edge-rates")))

	m.SetProviderHealthy("edge-rates", false)
	require.Equal(t, 0.0, testutil.ToFloat64(m.RateProviderHealthy.WithLabelValues("edge-rates")))
}
