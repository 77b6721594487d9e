package http

// ErrorResponse is the uniform error body for auth endpoints. Rejections
// never disclose which credential failed or whether it existed.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RequestOtpRequest starts phone verification.
type RequestOtpRequest struct {
	Phone string `json:"phone"`
}

// RequestOtpResponse is uniform regardless of prior state for the phone.
type RequestOtpResponse struct {
	Phone     string `json:"phone"`
	ExpiresAt string `json:"expires_at"`
}

// VerifyOtpRequest answers a live challenge.
type VerifyOtpRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// SessionResponse carries the opaque session handle.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	ExpiresAt string `json:"expires_at"`
}
