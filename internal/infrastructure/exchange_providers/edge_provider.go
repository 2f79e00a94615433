// internal/infrastructure/exchange_providers/edge_provider.go
package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/schema"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultRatesURL = "https://rates3.edge.app/v3/rates"

	// fractional digits kept when inverting a fiat rate into a unit price
	unitPricePrecision = 30
)

type EdgeRatesProvider struct {
	client     *http.Client
	url        string
	targetFiat string
	validator  *schema.Validator
	now        func() time.Time
}

type ratesAsset struct {
	PluginID string  `json:"pluginId"`
	TokenID  *string `json:"tokenId,omitempty"`
}

type ratesRequest struct {
	TargetFiat string            `json:"targetFiat"`
	Crypto     []ratesCryptoItem `json:"crypto"`
	Fiat       []ratesFiatItem   `json:"fiat"`
}

type ratesCryptoItem struct {
	IsoDate *string          `json:"isoDate,omitempty"`
	Asset   ratesAsset       `json:"asset"`
	Rate    *decimal.Decimal `json:"rate,omitempty"`
}

type ratesFiatItem struct {
	IsoDate *string          `json:"isoDate,omitempty"`
	Rate    *decimal.Decimal `json:"rate,omitempty"`
}

type ratesResponse struct {
	TargetFiat string            `json:"targetFiat"`
	Crypto     []ratesCryptoItem `json:"crypto"`
	Fiat       []ratesFiatItem   `json:"fiat"`
}

func NewEdgeRatesProvider(url, targetFiat string, timeout time.Duration) *EdgeRatesProvider {
	if url == "" {
		url = DefaultRatesURL
	}
	if targetFiat == "" {
		targetFiat = "USD"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EdgeRatesProvider{
		client: &http.Client{
			Timeout: timeout,
		},
		url:        url,
		targetFiat: targetFiat,
		validator:  schema.MustValidator("rates response", schema.RatesResponse),
		now:        time.Now,
	}
}

func (p *EdgeRatesProvider) GetName() string {
	return "edge-rates"
}

func (p *EdgeRatesProvider) GetQuote(ctx context.Context, asset domain.Asset) (domain.RateQuote, error) {
	item := ratesCryptoItem{Asset: ratesAsset{PluginID: asset.ChainPluginID}}
	if asset.HasToken() {
		tokenID := asset.Token()
		item.Asset.TokenID = &tokenID
	}
	body, err := json.Marshal(ratesRequest{
		TargetFiat: p.targetFiat,
		Crypto:     []ratesCryptoItem{item},
		Fiat:       []ratesFiatItem{},
	})
	if err != nil {
		return domain.RateQuote{}, fmt.Errorf("failed to marshal rates request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return domain.RateQuote{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.RateQuote{}, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.RateQuote{}, &domain.TransportError{StatusCode: resp.StatusCode}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.RateQuote{}, &domain.TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return p.parseQuote(asset, payload)
}

func (p *EdgeRatesProvider) parseQuote(asset domain.Asset, payload []byte) (domain.RateQuote, error) {
	if !json.Valid(payload) {
		return domain.RateQuote{}, &domain.SchemaError{Reason: "response is not valid json"}
	}
	if err := p.validator.Validate(payload); err != nil {
		return domain.RateQuote{}, &domain.SchemaError{Reason: err.Error()}
	}

	var parsed ratesResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return domain.RateQuote{}, &domain.SchemaError{Reason: err.Error()}
	}

	entry, ok := findCryptoEntry(parsed.Crypto, asset)
	if !ok {
		return domain.RateQuote{}, &domain.SchemaError{Reason: fmt.Sprintf("no rate for %s", assetKey(asset))}
	}
	if entry.Rate == nil || !entry.Rate.IsPositive() {
		return domain.RateQuote{}, &domain.SchemaError{Reason: fmt.Sprintf("non positive rate for %s", assetKey(asset))}
	}

	fetchedAt := p.now()
	if entry.IsoDate != nil {
		if ts, err := time.Parse(time.RFC3339, *entry.IsoDate); err == nil {
			fetchedAt = ts
		}
	}

	targetFiat := parsed.TargetFiat
	if targetFiat == "" {
		targetFiat = p.targetFiat
	}

	return domain.RateQuote{
		ChainPluginID: asset.ChainPluginID,
		TokenID:       asset.Token(),
		TargetFiat:    targetFiat,
		Rate:          *entry.Rate,
		UnitPrice:     decimal.NewFromInt(1).DivRound(*entry.Rate, unitPricePrecision),
		FetchedAt:     fetchedAt,
	}, nil
}

// findCryptoEntry picks the entry matching both plugin and token id.
func findCryptoEntry(items []ratesCryptoItem, asset domain.Asset) (ratesCryptoItem, bool) {
	for _, it := range items {
		if it.Asset.PluginID != asset.ChainPluginID {
			continue
		}
		tokenID := ""
		if it.Asset.TokenID != nil {
			tokenID = *it.Asset.TokenID
		}
		if strings.EqualFold(tokenID, asset.Token()) {
			return it, true
		}
	}
	return ratesCryptoItem{}, false
}

func assetKey(asset domain.Asset) string {
	if asset.HasToken() {
		return asset.ChainPluginID + "/" + asset.Token()
	}
	return asset.ChainPluginID
}

func (p *EdgeRatesProvider) IsHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := p.GetQuote(ctx, domain.Asset{ChainPluginID: "bitcoin"})
	return err == nil
}
