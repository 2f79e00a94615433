package domain

import "strings"

type URIType string

const (
	URITypeBIP21   URIType = "bip21"
	URITypeEIP831  URIType = "eip831"
	URITypeStellar URIType = "stellar"
)

func (t URIType) Valid() bool {
	switch t {
	case URITypeBIP21, URITypeEIP831, URITypeStellar:
		return true
	}
	return false
}

// Asset is a catalog entry the kiosk can take payment in.
type Asset struct {
	ID               string  `json:"id,omitempty"`
	ChainPluginID    string  `json:"chainPluginId"`
	ChainName        *string `json:"chainName,omitempty"`
	TokenID          *string `json:"tokenId"`
	CurrencyCode     string  `json:"currencyCode"`
	URIType          URIType `json:"uriType"`
	URIProtocol      string  `json:"uriProtocol"`
	URIEvmChainID    *int64  `json:"uriEvmChainId,omitempty"`
	TokenNumDecimals *int32  `json:"tokenNumDecimals,omitempty"`
	PublicAddress    string  `json:"publicAddress"`
}

// HasToken reports whether the asset is a token on a host chain.
// An empty token id means the chain's native currency.
func (a Asset) HasToken() bool {
	return a.TokenID != nil && *a.TokenID != ""
}

// Token returns the token id, or "" for native assets.
func (a Asset) Token() string {
	if !a.HasToken() {
		return ""
	}
	return *a.TokenID
}

func (a Asset) DisplayChainName() string {
	if a.ChainName != nil && *a.ChainName != "" {
		return *a.ChainName
	}
	return a.ChainPluginID
}

// DisplayName is the chain name with its first character capitalized.
func (a Asset) DisplayName() string {
	name := a.DisplayChainName()
	if name == "" {
		return ""
	}
	r := []rune(name)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// Validate checks the fields every asset needs regardless of its uri type.
// Scheme specific fields are checked when the payment scheme is resolved.
func (a Asset) Validate() error {
	if a.ChainPluginID == "" {
		return NewValidationError("chainPluginId", "must not be empty")
	}
	if a.CurrencyCode == "" {
		return NewValidationError("currencyCode", "must not be empty")
	}
	if a.PublicAddress == "" {
		return NewValidationError("publicAddress", "must not be empty")
	}
	if !a.URIType.Valid() {
		return &UnsupportedSchemeError{URIType: string(a.URIType)}
	}
	if a.URIProtocol == "" {
		return NewValidationError("uriProtocol", "must not be empty")
	}
	return nil
}

type AssetRepository interface {
	ListAssets() ([]*Asset, error)
	GetAssetByID(assetID string) (*Asset, error)
	CreateAsset(asset *Asset) error
}
