package core

// Error codes
const (
	ErrGameNotFound       = "GAME_NOT_FOUND"
	ErrInvalidRequest     = "INVALID_REQUEST"
	ErrInvalidPosition    = "INVALID_POSITION"
	ErrInvalidLimit       = "INVALID_LIMIT"
	ErrRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrStorageUnavailable = "STORAGE_UNAVAILABLE"
	ErrInternalError      = "INTERNAL_ERROR"
)

// ErrorResponse provides consistent structured error bodies across the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
