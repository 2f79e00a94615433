package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// KioskMetrics содержит метрики синхронизации курсов и платежных запросов
type KioskMetrics struct {
	// Запросы курсов
	RateFetchTotal      *prometheus.CounterVec
	RateFetchDuration   *prometheus.HistogramVec
	RateFetchRetries    *prometheus.CounterVec
	RateCyclesFailed    *prometheus.CounterVec
	RateLast            *prometheus.GaugeVec
	RateProviderHealthy *prometheus.GaugeVec

	// Платежные запросы и сессии
	PaymentRequestsTotal *prometheus.CounterVec
	SessionsActive       prometheus.Gauge
}

func NewKioskMetrics(reg prometheus.Registerer) *KioskMetrics {
	factory := promauto.With(reg)
	return &KioskMetrics{
		RateFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiosk_rate_fetch_total",
				Help: "Rate fetch attempts by outcome",
			},
			[]string{"provider", "asset", "outcome"},
		),

		RateFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kiosk_rate_fetch_duration_seconds",
				Help:    "Rate fetch latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 8), // 50ms, 100ms, 200ms...
			},
			[]string{"provider", "outcome"},
		),

		RateFetchRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiosk_rate_fetch_retries_total",
				Help: "Rate fetch retries scheduled after a transport failure",
			},
			[]string{"provider", "asset"},
		),

		RateCyclesFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiosk_rate_cycles_failed_total",
				Help: "Refresh cycles that ended without a quote",
			},
			[]string{"provider", "asset"},
		),

		RateLast: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kiosk_rate_last",
				Help: "Last published fiat rate per asset",
			},
			[]string{"asset"},
		),

		RateProviderHealthy: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kiosk_rate_provider_healthy",
				Help: "1 when the last health probe of the rate provider succeeded",
			},
			[]string{"provider"},
		),

		PaymentRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiosk_payment_requests_total",
				Help: "Payment requests built for rendering by uri type and outcome",
			},
			[]string{"uri_type", "outcome"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "kiosk_sessions_active",
				Help: "Open payment screens",
			},
		),
	}
}

func (m *KioskMetrics) RecordFetch(provider, asset, outcome string, durationSeconds float64) {
	m.RateFetchTotal.WithLabelValues(provider, asset, outcome).Inc()
	m.RateFetchDuration.WithLabelValues(provider, outcome).Observe(durationSeconds)
}

func (m *KioskMetrics) RecordRetry(provider, asset string) {
	m.RateFetchRetries.WithLabelValues(provider, asset).Inc()
}

func (m *KioskMetrics) RecordCycleFailed(provider, asset string) {
	m.RateCyclesFailed.WithLabelValues(provider, asset).Inc()
}

func (m *KioskMetrics) RecordQuote(asset string, rate float64) {
	m.RateLast.WithLabelValues(asset).Set(rate)
}

func (m *KioskMetrics) RecordPaymentRequest(uriType, outcome string) {
	m.PaymentRequestsTotal.WithLabelValues(uriType, outcome).Inc()
}

func (m *KioskMetrics) SetActiveSessions(n int) {
	m.SessionsActive.Set(float64(n))
}

func (m *KioskMetrics) SetProviderHealthy(provider string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	m.RateProviderHealthy.WithLabelValues(provider).Set(v)
}
