package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-kiosk-service/internal/delivery/http/dto/kiosk/request"
	"github.com/LavaJover/shvark-kiosk-service/internal/delivery/http/dto/kiosk/response"
	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase"
	paymentdto "github.com/LavaJover/shvark-kiosk-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/payment"
	"github.com/gin-gonic/gin"
)

type KioskHandler struct {
	assetUsecase   usecase.AssetUsecase
	paymentUsecase usecase.PaymentUsecase
}

func NewKioskHandler(assetUsecase usecase.AssetUsecase, paymentUsecase usecase.PaymentUsecase) *KioskHandler {
	return &KioskHandler{
		assetUsecase:   assetUsecase,
		paymentUsecase: paymentUsecase,
	}
}

// GET /api/assets
func (h *KioskHandler) ListAssets(c *gin.Context) {
	assets, err := h.assetUsecase.ListAssets()
	if err != nil {
		writeError(c, err)
		return
	}

	resp := response.AssetListResponse{
		Count:  len(assets),
		Assets: make([]response.AssetResponse, 0, len(assets)),
	}
	for _, asset := range assets {
		resp.Assets = append(resp.Assets, toAssetResponse(asset))
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/assets/:id
func (h *KioskHandler) GetAsset(c *gin.Context) {
	asset, err := h.assetUsecase.GetAsset(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAssetResponse(asset))
}

// GET /api/payment-request?asset=<id>&quantity=<n>
func (h *KioskHandler) GetPaymentRequest(c *gin.Context) {
	var query request.PaymentRequestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}
	quantity, err := parseQuantity(c.Query("quantity"))
	if err != nil {
		writeError(c, err)
		return
	}

	out, err := h.paymentUsecase.BuildPaymentRequest(c.Request.Context(), &paymentdto.BuildPaymentRequestInput{
		AssetID:  query.AssetID,
		Quantity: quantity,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.PaymentRequestResponse{
		AssetID:       out.AssetID,
		CurrencyCode:  out.CurrencyCode,
		Quantity:      out.Quantity,
		Title:         out.Title,
		Label:         out.Label,
		DisplayAmount: out.DisplayAmount,
		URI:           out.URI,
		IconURL:       out.IconURL,
		ChainIconURL:  out.ChainIconURL,
		Rate:          out.Rate,
		UnitPrice:     out.UnitPrice,
		FetchedAt:     out.FetchedAt,
	})
}

func (h *KioskHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func toAssetResponse(asset *domain.Asset) response.AssetResponse {
	resp := response.AssetResponse{
		ID:               asset.ID,
		ChainPluginID:    asset.ChainPluginID,
		ChainName:        asset.ChainName,
		TokenID:          asset.TokenID,
		CurrencyCode:     asset.CurrencyCode,
		URIType:          string(asset.URIType),
		URIProtocol:      asset.URIProtocol,
		URIEvmChainID:    asset.URIEvmChainID,
		TokenNumDecimals: asset.TokenNumDecimals,
		PublicAddress:    asset.PublicAddress,
		DisplayName:      asset.DisplayName(),
		IconURL:          payment.IconURL(*asset),
	}
	if asset.HasToken() {
		resp.ChainIconURL = payment.ChainIconURL(*asset)
	}
	return resp
}
