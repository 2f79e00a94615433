package paymentdto

import "time"

type PaymentRequestOutput struct {
	AssetID       string
	CurrencyCode  string
	Quantity      int
	Title         string
	Label         string
	DisplayAmount string
	URI           string
	IconURL       string
	ChainIconURL  string
	Rate          string
	UnitPrice     string
	FetchedAt     time.Time
}
