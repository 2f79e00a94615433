package request

const (
	MessageTypeQuantity = "quantity"
	MessageTypeAsset    = "asset"
)

// SessionMessage is sent by the rendering surface over the session socket.
type SessionMessage struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity,omitempty"`
	AssetID  string `json:"assetId,omitempty"`
}

// PaymentRequestQuery is bound from the query string; quantity is parsed separately
// so that a malformed value maps to the same error as an out of range one.
type PaymentRequestQuery struct {
	AssetID string `form:"asset" binding:"required"`
}
