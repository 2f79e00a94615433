package usecase

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-kiosk-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/payment"
)

type PaymentUsecase interface {
	BuildPaymentRequest(ctx context.Context, input *paymentdto.BuildPaymentRequestInput) (*paymentdto.PaymentRequestOutput, error)
}

// DefaultPaymentUsecase builds a single payment request from a fresh quote.
// Screens that stay open use session.Session instead.
type DefaultPaymentUsecase struct {
	assetUsecase AssetUsecase
	provider     domain.RateProvider
}

func NewDefaultPaymentUsecase(assetUsecase AssetUsecase, provider domain.RateProvider) *DefaultPaymentUsecase {
	return &DefaultPaymentUsecase{
		assetUsecase: assetUsecase,
		provider:     provider,
	}
}

func (uc *DefaultPaymentUsecase) BuildPaymentRequest(ctx context.Context, input *paymentdto.BuildPaymentRequestInput) (*paymentdto.PaymentRequestOutput, error) {
	if input.Quantity < domain.MinFiatQuantity || input.Quantity > domain.MaxFiatQuantity {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, input.Quantity)
	}

	asset, err := uc.assetUsecase.GetAsset(input.AssetID)
	if err != nil {
		return nil, err
	}

	quote, err := uc.provider.GetQuote(ctx, *asset)
	if err != nil {
		return nil, err
	}

	request, err := payment.BuildPaymentRequest(*asset, quote.UnitPrice, input.Quantity)
	if err != nil {
		return nil, err
	}

	out := &paymentdto.PaymentRequestOutput{
		AssetID:       asset.ID,
		CurrencyCode:  asset.CurrencyCode,
		Quantity:      input.Quantity,
		Title:         payment.Title(*asset),
		Label:         payment.Label(input.Quantity, request.DisplayAmount, asset.CurrencyCode),
		DisplayAmount: request.DisplayAmount,
		URI:           request.URI,
		IconURL:       payment.IconURL(*asset),
		Rate:          quote.Rate.String(),
		UnitPrice:     quote.UnitPrice.String(),
		FetchedAt:     quote.FetchedAt,
	}
	if asset.HasToken() {
		out.ChainIconURL = payment.ChainIconURL(*asset)
	}
	return out, nil
}
