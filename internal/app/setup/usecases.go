package setup

import (
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-kiosk-service/internal/usecase"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/rates"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/session"
)

type UseCases struct {
	AssetUsecase   usecase.AssetUsecase
	PaymentUsecase usecase.PaymentUsecase
	SessionManager *session.Manager
}

func InitializeUseCases(deps *Dependencies, logger *slog.Logger) (*UseCases, error) {
	assetUsecase := usecase.NewDefaultAssetUsecase(deps.Repositories.AssetRepo)
	paymentUsecase := usecase.NewDefaultPaymentUsecase(assetUsecase, deps.RateProvider)

	manager, err := session.NewManager(deps.RateProvider, RateOptions(deps), logger)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}
	manager.WithRecorders(deps.Metrics, deps.Metrics, deps.Metrics)
	if deps.QuotePublisher != nil {
		manager.WithPublisher(deps.QuotePublisher)
	}

	return &UseCases{
		AssetUsecase:   assetUsecase,
		PaymentUsecase: paymentUsecase,
		SessionManager: manager,
	}, nil
}

func RateOptions(deps *Dependencies) rates.Options {
	opts := rates.DefaultOptions()
	opts.RefreshInterval = deps.Config.Rates.RefreshInterval
	opts.RetryBaseDelay = deps.Config.Rates.RetryBaseDelay
	opts.MaxAttempts = deps.Config.Rates.MaxAttempts
	return opts
}
