package domain

const (
	MinFiatQuantity = 1
	MaxFiatQuantity = 8
)

type PaymentRequest struct {
	DisplayAmount string `json:"displayAmount"`
	URI           string `json:"uri"`
}

type SessionState string

const (
	SessionLoading SessionState = "loading"
	SessionReady   SessionState = "ready"
	SessionError   SessionState = "error"
)

// SessionUpdate is what a rendering surface needs to draw the payment screen.
type SessionUpdate struct {
	SessionID     string       `json:"sessionId"`
	AssetID       string       `json:"assetId,omitempty"`
	State         SessionState `json:"state"`
	Quantity      int          `json:"quantity"`
	Title         string       `json:"title"`
	Label         string       `json:"label,omitempty"`
	DisplayAmount string       `json:"displayAmount,omitempty"`
	URI           string       `json:"uri,omitempty"`
	IconURL       string       `json:"iconUrl"`
	ChainIconURL  string       `json:"chainIconUrl,omitempty"`
	Error         string       `json:"error,omitempty"`
}
