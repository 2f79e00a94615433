package kafka

import (
	"time"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/google/uuid"
)

type QuoteEvent struct {
	EventID       string    `json:"event_id"`
	ChainPluginID string    `json:"chain_plugin_id"`
	TokenID       string    `json:"token_id,omitempty"`
	TargetFiat    string    `json:"target_fiat"`
	Rate          string    `json:"rate"`
	UnitPrice     string    `json:"unit_price"`
	FetchedAt     time.Time `json:"fetched_at"`
}

func NewQuoteEvent(quote domain.RateQuote) QuoteEvent {
	return QuoteEvent{
		EventID:       uuid.New().String(),
		ChainPluginID: quote.ChainPluginID,
		TokenID:       quote.TokenID,
		TargetFiat:    quote.TargetFiat,
		Rate:          quote.Rate.String(),
		UnitPrice:     quote.UnitPrice.String(),
		FetchedAt:     quote.FetchedAt.UTC(),
	}
}

// Key groups events of one asset on one partition.
func (e QuoteEvent) Key() string {
	if e.TokenID == "" {
		return e.ChainPluginID
	}
	return e.ChainPluginID + ":" + e.TokenID
}
