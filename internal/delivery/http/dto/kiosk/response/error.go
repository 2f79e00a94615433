package response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeUnknownType    = "unknown_message_type"
	ErrorCodeRejected       = "rejected"
)

// SessionError is pushed over the session socket when a client message is rejected.
// The session itself keeps running.
type SessionError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
