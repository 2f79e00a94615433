package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateQuote is one successful answer from the rate service.
//
// Rate is the fiat value of one coin as returned by the service. UnitPrice is its
// inverse: the amount of the asset's native currency worth one unit of fiat, which
// is what gets scaled by the chosen fiat quantity.
type RateQuote struct {
	ChainPluginID string
	TokenID       string
	TargetFiat    string
	Rate          decimal.Decimal
	UnitPrice     decimal.Decimal
	FetchedAt     time.Time
}

type RateProvider interface {
	GetQuote(ctx context.Context, asset Asset) (RateQuote, error)
	GetName() string
	IsHealthy(ctx context.Context) bool
}

// QuotePublisher fans successful quotes out to other systems.
type QuotePublisher interface {
	PublishQuote(ctx context.Context, quote RateQuote) error
}
