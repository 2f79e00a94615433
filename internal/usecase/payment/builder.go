package payment

import (
	"fmt"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/shopspring/decimal"
)

// BuildPaymentRequest prices fiatQuantity units of fiat in the asset's native
// currency and renders the chain specific payment uri for it.
func BuildPaymentRequest(asset domain.Asset, unitPrice decimal.Decimal, fiatQuantity int) (domain.PaymentRequest, error) {
	if fiatQuantity < domain.MinFiatQuantity || fiatQuantity > domain.MaxFiatQuantity {
		return domain.PaymentRequest{}, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, fiatQuantity)
	}
	if unitPrice.IsNegative() {
		return domain.PaymentRequest{}, domain.ErrInvalidUnitPrice
	}

	scheme, err := ParseScheme(asset)
	if err != nil {
		return domain.PaymentRequest{}, err
	}

	amount := ScaleAmount(unitPrice, fiatQuantity).Round(scheme.Precision())
	return domain.PaymentRequest{
		DisplayAmount: amount.String(),
		URI:           scheme.Encode(amount),
	}, nil
}

func ScaleAmount(unitPrice decimal.Decimal, fiatQuantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(fiatQuantity)))
}
