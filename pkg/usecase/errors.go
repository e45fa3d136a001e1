package usecase

import "errors"

// Sentinel errors for the use case layer
var (
	// Validation errors (map to HTTP 400)
	ErrEmptyMessageText = errors.New("message text is required")
)

// Context keys for error values
const (
	ChannelIDKey = "channel_id"
	UserIDKey    = "user_id"
)
