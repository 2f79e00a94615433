package repository

import (
	"errors"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DefaultAssetRepository struct {
	DB *gorm.DB
}

func NewDefaultAssetRepository(db *gorm.DB) *DefaultAssetRepository {
	return &DefaultAssetRepository{
		DB: db,
	}
}

func (r *DefaultAssetRepository) ListAssets() ([]*domain.Asset, error) {
	var assetModels []*models.AssetModel
	if err := r.DB.Model(&models.AssetModel{}).Order("chain_plugin_id, currency_code").Find(&assetModels).Error; err != nil {
		return nil, err
	}

	assets := make([]*domain.Asset, len(assetModels))
	for i, assetModel := range assetModels {
		assets[i] = mappers.ToDomainAsset(assetModel)
	}

	return assets, nil
}

func (r *DefaultAssetRepository) GetAssetByID(assetID string) (*domain.Asset, error) {
	var assetModel models.AssetModel
	if err := r.DB.Where("id = ?", assetID).First(&assetModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, err
	}
	return mappers.ToDomainAsset(&assetModel), nil
}

func (r *DefaultAssetRepository) CreateAsset(asset *domain.Asset) error {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}
	assetModel := mappers.ToGORMAsset(asset)
	return r.DB.Create(assetModel).Error
}
