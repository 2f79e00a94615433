package setup

import (
	"log/slog"

	"github.com/LavaJover/shvark-kiosk-service/internal/config"
	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	infrastructure "github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/exchange_providers"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/postgres/repository"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config         *config.KioskConfig
	DB             *gorm.DB
	RateProvider   domain.RateProvider
	QuotePublisher *kafka.KafkaQuotePublisher
	Metrics        *metrics.KioskMetrics
	Repositories   *Repositories
}

type Repositories struct {
	AssetRepo domain.AssetRepository
}

func InitializeDependencies(cfg *config.KioskConfig) *Dependencies {
	db := postgres.MustInitDB(cfg)

	return &Dependencies{
		Config:         cfg,
		DB:             db,
		RateProvider:   initRateProvider(cfg),
		QuotePublisher: initQuotePublisher(cfg),
		Metrics:        metrics.NewKioskMetrics(prometheus.DefaultRegisterer),
		Repositories: &Repositories{
			AssetRepo: repository.NewDefaultAssetRepository(db),
		},
	}
}

func initRateProvider(cfg *config.KioskConfig) domain.RateProvider {
	return infrastructure.NewEdgeRatesProvider(cfg.Rates.URL, cfg.Rates.TargetFiat, cfg.Rates.RequestTimeout)
}

// initQuotePublisher returns nil when no brokers are configured.
func initQuotePublisher(cfg *config.KioskConfig) *kafka.KafkaQuotePublisher {
	brokers := cfg.KafkaService.BrokerList()
	if len(brokers) == 0 {
		slog.Info("kafka brokers not configured, quote events disabled")
		return nil
	}
	return kafka.NewKafkaQuotePublisher(brokers, cfg.KafkaService.Topic)
}

func (d *Dependencies) Close() {
	if d.QuotePublisher != nil {
		if err := d.QuotePublisher.Close(); err != nil {
			slog.Error("failed to close quote publisher", "error", err)
		}
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
