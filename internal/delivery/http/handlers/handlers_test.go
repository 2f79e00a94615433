package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-kiosk-service/internal/delivery/http/dto/kiosk/response"
	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/rates"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/session"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryAssetRepo struct {
	assets []*domain.Asset
}

func (r *memoryAssetRepo) ListAssets() ([]*domain.Asset, error) { return r.assets, nil }

func (r *memoryAssetRepo) GetAssetByID(id string) (*domain.Asset, error) {
	for _, a := range r.assets {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrAssetNotFound
}

func (r *memoryAssetRepo) CreateAsset(asset *domain.Asset) error {
	r.assets = append(r.assets, asset)
	return nil
}

type stubProvider struct {
	mu    sync.Mutex
	rates map[string]string
	err   error
}

func (p *stubProvider) GetQuote(_ context.Context, asset domain.Asset) (domain.RateQuote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return domain.RateQuote{}, p.err
	}
	rate := decimal.RequireFromString(p.rates[asset.ChainPluginID])
	return domain.RateQuote{
		ChainPluginID: asset.ChainPluginID,
		TokenID:       asset.Token(),
		TargetFiat:    "USD",
		Rate:          rate,
		UnitPrice:     decimal.NewFromInt(1).DivRound(rate, 30),
		FetchedAt:     time.Now(),
	}, nil
}

func (p *stubProvider) GetName() string                { return "stub" }
func (p *stubProvider) IsHealthy(context.Context) bool { return true }

func catalog() []*domain.Asset {
	token := "def"
	chainID := int64(137)
	decimals := int32(6)
	return []*domain.Asset{
		{
			ID:            "xlm",
			ChainPluginID: "stellar",
			CurrencyCode:  "XLM",
			URIType:       domain.URITypeStellar,
			URIProtocol:   "web+stellar",
			PublicAddress: "GABC",
		},
		{
			ID:               "usdc",
			ChainPluginID:    "polygon",
			TokenID:          &token,
			CurrencyCode:     "USDC",
			URIType:          domain.URITypeEIP831,
			URIProtocol:      "ethereum",
			URIEvmChainID:    &chainID,
			TokenNumDecimals: &decimals,
			PublicAddress:    "0xrecipient",
		},
	}
}

type testServer struct {
	router   *gin.Engine
	provider *stubProvider
	manager  *session.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := &stubProvider{rates: map[string]string{"stellar": "0.1", "polygon": "0.5"}}
	assetUC := usecase.NewDefaultAssetUsecase(&memoryAssetRepo{assets: catalog()})
	paymentUC := usecase.NewDefaultPaymentUsecase(assetUC, provider)

	manager, err := session.NewManager(provider, rates.Options{
		RefreshInterval: time.Hour,
		RetryBaseDelay:  time.Millisecond,
		MaxAttempts:     1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(manager.CloseAll)

	router := NewRouter(NewKioskHandler(assetUC, paymentUC), NewSessionHandler(manager, assetUC, nil), nil)
	return &testServer{router: router, provider: provider, manager: manager}
}

func (s *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestListAssets(t *testing.T) {
	s := newTestServer(t)

	rec := s.get(t, "/api/assets")
	require.Equal(t, http.StatusOK, rec.Code)

	var body response.AssetListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	require.Equal(t, "Stellar", body.Assets[0].DisplayName)
	require.Empty(t, body.Assets[0].ChainIconURL)
	require.Equal(t, "https://content.edge.app/currencyIconsV3/polygon/def.png", body.Assets[1].IconURL)
	require.Equal(t, "https://content.edge.app/currencyIconsV3/polygon/polygon.png", body.Assets[1].ChainIconURL)
}

func TestGetAsset(t *testing.T) {
	s := newTestServer(t)

	rec := s.get(t, "/api/assets/usdc")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"currencyCode":"USDC"`)

	rec = s.get(t, "/api/assets/doge")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPaymentRequest(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantURI    string
	}{
		{
			name:       "token transfer",
			path:       "/api/payment-request?asset=usdc&quantity=2",
			wantStatus: http.StatusOK,
			wantURI:    "ethereum:0xdef@137/transfer?address=0xrecipient&uint256=4000000",
		},
		{
			name:       "default quantity",
			path:       "/api/payment-request?asset=xlm",
			wantStatus: http.StatusOK,
			wantURI:    "web+stellar:pay?destination=GABC&amount=10",
		},
		{name: "quantity out of range", path: "/api/payment-request?asset=xlm&quantity=9", wantStatus: http.StatusUnprocessableEntity},
		{name: "quantity not a number", path: "/api/payment-request?asset=xlm&quantity=two", wantStatus: http.StatusUnprocessableEntity},
		{name: "missing asset", path: "/api/payment-request?quantity=1", wantStatus: http.StatusBadRequest},
		{name: "unknown asset", path: "/api/payment-request?asset=doge", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.get(t, tt.path)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantURI == "" {
				return
			}
			var body response.PaymentRequestResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tt.wantURI, body.URI)
		})
	}
}

func TestGetPaymentRequestUpstreamFailure(t *testing.T) {
	s := newTestServer(t)
	s.provider.err = &domain.TransportError{StatusCode: http.StatusServiceUnavailable}

	rec := s.get(t, "/api/payment-request?asset=usdc")
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func dialSession(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/ws?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(map[string]any) bool) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func TestSessionSocket(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	conn := dialSession(t, srv, "asset=usdc&quantity=2")

	msg := readUntil(t, conn, func(m map[string]any) bool { return m["state"] == "ready" })
	require.Equal(t, "4", msg["displayAmount"])
	require.Equal(t, "$2 (4 USDC)", msg["label"])
	require.Equal(t, "Scan to pay with Polygon (USDC)", msg["title"])
	require.Equal(t, 1, s.manager.Active())

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "quantity", "quantity": 3}))
	msg = readUntil(t, conn, func(m map[string]any) bool { return m["displayAmount"] == "6" })
	require.Equal(t, "ethereum:0xdef@137/transfer?address=0xrecipient&uint256=6000000", msg["uri"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "asset", "assetId": "xlm"}))
	msg = readUntil(t, conn, func(m map[string]any) bool { return m["state"] == "ready" && m["assetId"] == "xlm" })
	require.Equal(t, "web+stellar:pay?destination=GABC&amount=30", msg["uri"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "quantity", "quantity": 0}))
	msg = readUntil(t, conn, func(m map[string]any) bool { return m["type"] == "error" })
	require.Equal(t, response.ErrorCodeRejected, msg["code"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dance"}))
	msg = readUntil(t, conn, func(m map[string]any) bool { return m["type"] == "error" })
	require.Equal(t, response.ErrorCodeUnknownType, msg["code"])

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	require.Eventually(t, func() bool { return s.manager.Active() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSessionSocketRejectsBadHandshake(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/ws?"

	_, resp, err := websocket.DefaultDialer.Dial(base+"asset=doge", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"asset=usdc&quantity=12", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Zero(t, s.manager.Active())
}
