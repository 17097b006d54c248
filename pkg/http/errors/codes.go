package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeInvalidSessionID = "invalid_session_id"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeSessionNotFound = "session_not_found"
	ErrCodeSessionLimit    = "session_limit_reached"

	// Quiz actions rejected by the session state
	ErrCodeNotReady        = "no_active_question"
	ErrCodeAlreadyAnswered = "already_answered"
	ErrCodeNotAnswered     = "not_answered"
	ErrCodeNoSelection     = "no_selection"
	ErrCodeUnknownOption   = "unknown_option"
	ErrCodeSessionClosed   = "session_closed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError  = "internal_error"
	ErrCodeNotImplemented = "not_implemented"
)
