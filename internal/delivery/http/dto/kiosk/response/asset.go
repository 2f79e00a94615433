package response

type AssetResponse struct {
	ID               string  `json:"id"`
	ChainPluginID    string  `json:"chainPluginId"`
	ChainName        *string `json:"chainName,omitempty"`
	TokenID          *string `json:"tokenId"`
	CurrencyCode     string  `json:"currencyCode"`
	URIType          string  `json:"uriType"`
	URIProtocol      string  `json:"uriProtocol"`
	URIEvmChainID    *int64  `json:"uriEvmChainId,omitempty"`
	TokenNumDecimals *int32  `json:"tokenNumDecimals,omitempty"`
	PublicAddress    string  `json:"publicAddress"`
	DisplayName      string  `json:"displayName"`
	IconURL          string  `json:"iconUrl"`
	ChainIconURL     string  `json:"chainIconUrl,omitempty"`
}

type AssetListResponse struct {
	Count  int             `json:"count"`
	Assets []AssetResponse `json:"assets"`
}
