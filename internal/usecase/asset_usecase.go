package usecase

import (
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/payment"
)

type AssetUsecase interface {
	ListAssets() ([]*domain.Asset, error)
	GetAsset(assetID string) (*domain.Asset, error)
	ImportAssets(assets []*domain.Asset) (int, error)
}

type DefaultAssetUsecase struct {
	assetRepo domain.AssetRepository
}

func NewDefaultAssetUsecase(assetRepo domain.AssetRepository) *DefaultAssetUsecase {
	return &DefaultAssetUsecase{
		assetRepo: assetRepo,
	}
}

// ListAssets returns the catalog entries a payment request can be built for.
// Broken records are logged and skipped.
func (uc *DefaultAssetUsecase) ListAssets() ([]*domain.Asset, error) {
	assets, err := uc.assetRepo.ListAssets()
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	valid := make([]*domain.Asset, 0, len(assets))
	for _, asset := range assets {
		if err := checkAsset(asset); err != nil {
			slog.Warn("skipping invalid asset", "asset_id", asset.ID, "currency", asset.CurrencyCode, "error", err)
			continue
		}
		valid = append(valid, asset)
	}
	return valid, nil
}

func (uc *DefaultAssetUsecase) GetAsset(assetID string) (*domain.Asset, error) {
	asset, err := uc.assetRepo.GetAssetByID(assetID)
	if err != nil {
		return nil, err
	}
	if err := checkAsset(asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// ImportAssets stores the given records. Nothing is written unless every record is valid.
func (uc *DefaultAssetUsecase) ImportAssets(assets []*domain.Asset) (int, error) {
	for i, asset := range assets {
		if err := checkAsset(asset); err != nil {
			return 0, fmt.Errorf("asset #%d (%s): %w", i, asset.CurrencyCode, err)
		}
	}

	for i, asset := range assets {
		if err := uc.assetRepo.CreateAsset(asset); err != nil {
			return i, fmt.Errorf("failed to store asset %s: %w", asset.CurrencyCode, err)
		}
		slog.Info("asset imported", "asset_id", asset.ID, "chain", asset.ChainPluginID, "currency", asset.CurrencyCode)
	}
	return len(assets), nil
}

func checkAsset(asset *domain.Asset) error {
	if err := asset.Validate(); err != nil {
		return err
	}
	_, err := payment.ParseScheme(*asset)
	return err
}
