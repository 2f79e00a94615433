package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
)

// HealthSink receives the result of each provider probe.
type HealthSink interface {
	SetProviderHealthy(provider string, healthy bool)
}

type BackgroundTasks struct {
	Provider       domain.RateProvider
	HealthInterval time.Duration
	Sinks          []HealthSink
	Logger         *slog.Logger
}

func NewBackgroundTasks(provider domain.RateProvider, healthInterval time.Duration, logger *slog.Logger, sinks ...HealthSink) *BackgroundTasks {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackgroundTasks{
		Provider:       provider,
		HealthInterval: healthInterval,
		Sinks:          sinks,
		Logger:         logger,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startProviderHealthCheck(ctx)
}

func (bt *BackgroundTasks) startProviderHealthCheck(ctx context.Context) {
	bt.checkProvider(ctx)

	ticker := time.NewTicker(bt.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.checkProvider(ctx)
		}
	}
}

func (bt *BackgroundTasks) checkProvider(ctx context.Context) bool {
	name := bt.Provider.GetName()
	healthy := bt.Provider.IsHealthy(ctx)
	if ctx.Err() != nil {
		return false
	}
	if healthy {
		bt.Logger.Debug("Rate provider healthy", "provider", name)
	} else {
		bt.Logger.Warn("Rate provider unhealthy", "provider", name)
	}
	for _, sink := range bt.Sinks {
		sink.SetProviderHealthy(name, healthy)
	}
	return healthy
}
