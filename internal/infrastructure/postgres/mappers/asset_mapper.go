package mappers

import (
	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/postgres/models"
)

func ToGORMAsset(asset *domain.Asset) *models.AssetModel {
	return &models.AssetModel{
		ID:               asset.ID,
		ChainPluginID:    asset.ChainPluginID,
		ChainName:        asset.ChainName,
		TokenID:          normalizeTokenID(asset.TokenID),
		CurrencyCode:     asset.CurrencyCode,
		URIType:          string(asset.URIType),
		URIProtocol:      asset.URIProtocol,
		URIEvmChainID:    asset.URIEvmChainID,
		TokenNumDecimals: asset.TokenNumDecimals,
		PublicAddress:    asset.PublicAddress,
	}
}

func ToDomainAsset(model *models.AssetModel) *domain.Asset {
	return &domain.Asset{
		ID:               model.ID,
		ChainPluginID:    model.ChainPluginID,
		ChainName:        model.ChainName,
		TokenID:          normalizeTokenID(model.TokenID),
		CurrencyCode:     model.CurrencyCode,
		URIType:          domain.URIType(model.URIType),
		URIProtocol:      model.URIProtocol,
		URIEvmChainID:    model.URIEvmChainID,
		TokenNumDecimals: model.TokenNumDecimals,
		PublicAddress:    model.PublicAddress,
	}
}

// empty token ids are stored as NULL so native assets look the same however they were entered
func normalizeTokenID(tokenID *string) *string {
	if tokenID == nil || *tokenID == "" {
		return nil
	}
	t := *tokenID
	return &t
}
