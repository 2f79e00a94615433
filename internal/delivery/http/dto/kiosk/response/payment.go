package response

import "time"

type PaymentRequestResponse struct {
	AssetID       string    `json:"assetId"`
	CurrencyCode  string    `json:"currencyCode"`
	Quantity      int       `json:"quantity"`
	Title         string    `json:"title"`
	Label         string    `json:"label"`
	DisplayAmount string    `json:"displayAmount"`
	URI           string    `json:"uri"`
	IconURL       string    `json:"iconUrl"`
	ChainIconURL  string    `json:"chainIconUrl,omitempty"`
	Rate          string    `json:"rate"`
	UnitPrice     string    `json:"unitPrice"`
	FetchedAt     time.Time `json:"fetchedAt"`
}
