package models

import "time"

type AssetModel struct {
	ID               string `gorm:"primaryKey"`
	ChainPluginID    string `gorm:"not null;index"`
	ChainName        *string
	TokenID          *string
	CurrencyCode     string `gorm:"not null"`
	URIType          string `gorm:"column:uri_type;not null"`
	URIProtocol      string `gorm:"column:uri_protocol;not null"`
	URIEvmChainID    *int64 `gorm:"column:uri_evm_chain_id"`
	TokenNumDecimals *int32
	PublicAddress    string `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (AssetModel) TableName() string {
	return "kiosk_assets"
}
