package paymentdto

type BuildPaymentRequestInput struct {
	AssetID  string
	Quantity int
}
