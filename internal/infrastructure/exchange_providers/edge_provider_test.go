package infrastructure

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *EdgeRatesProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEdgeRatesProvider(srv.URL, "USD", time.Second)
}

func TestEdgeRatesProviderGetQuote(t *testing.T) {
	var gotBody ratesRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		_, _ = w.Write([]byte(`{"targetFiat":"USD","crypto":[{"isoDate":"2024-05-01T10:00:00Z","asset":{"pluginId":"polygon","tokenId":"def"},"rate":0.5}],"fiat":[]}`))
	})

	tokenID := "def"
	quote, err := p.GetQuote(context.Background(), domain.Asset{ChainPluginID: "polygon", TokenID: &tokenID})
	require.NoError(t, err)

	require.Equal(t, "USD", gotBody.TargetFiat)
	require.Len(t, gotBody.Crypto, 1)
	require.Equal(t, "polygon", gotBody.Crypto[0].Asset.PluginID)
	require.Equal(t, "def", *gotBody.Crypto[0].Asset.TokenID)

	require.Equal(t, "0.5", quote.Rate.String())
	require.Equal(t, "2", quote.UnitPrice.String())
	require.Equal(t, "def", quote.TokenID)
	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), quote.FetchedAt.UTC())
}

func TestEdgeRatesProviderNativeAssetOmitsToken(t *testing.T) {
	var raw map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"targetFiat":"USD","crypto":[{"asset":{"pluginId":"bitcoin"},"rate":40000}],"fiat":[]}`))
	})

	quote, err := p.GetQuote(context.Background(), domain.Asset{ChainPluginID: "bitcoin"})
	require.NoError(t, err)
	require.Equal(t, "0.000025", quote.UnitPrice.String())

	asset := raw["crypto"].([]any)[0].(map[string]any)["asset"].(map[string]any)
	_, hasToken := asset["tokenId"]
	require.False(t, hasToken)
}

func TestEdgeRatesProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `oops`, domain.ErrTransport},
		{"rate limited", http.StatusTooManyRequests, ``, domain.ErrTransport},
		{"not json", http.StatusOK, `<html>`, domain.ErrSchema},
		{"missing rate", http.StatusOK, `{"targetFiat":"USD","crypto":[{"asset":{"pluginId":"bitcoin"}}],"fiat":[]}`, domain.ErrSchema},
		{"zero rate", http.StatusOK, `{"targetFiat":"USD","crypto":[{"asset":{"pluginId":"bitcoin"},"rate":0}],"fiat":[]}`, domain.ErrSchema},
		{"single other asset", http.StatusOK, `{"targetFiat":"USD","crypto":[{"asset":{"pluginId":"litecoin"},"rate":90}],"fiat":[]}`, domain.ErrSchema},
		{"other asset", http.StatusOK, `{"targetFiat":"USD","crypto":[{"asset":{"pluginId":"litecoin"},"rate":1},{"asset":{"pluginId":"dogecoin"},"rate":1}],"fiat":[]}`, domain.ErrSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := p.GetQuote(context.Background(), domain.Asset{ChainPluginID: "bitcoin"})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEdgeRatesProviderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewEdgeRatesProvider(url, "USD", time.Second)
	_, err := p.GetQuote(context.Background(), domain.Asset{ChainPluginID: "bitcoin"})
	require.ErrorIs(t, err, domain.ErrTransport)
	require.False(t, p.IsHealthy(context.Background()))
}
