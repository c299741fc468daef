package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Engine ────────────────────────────────────────────────────────
	ErrEngineNotInitialized ErrCode = "ENGINE_NOT_INITIALIZED"
	ErrUnknownAnalyzeEvent  ErrCode = "UNKNOWN_ANALYZE_EVENT"
	ErrReportNotReady       ErrCode = "REPORT_NOT_READY"
	ErrSnapshotMissing      ErrCode = "SNAPSHOT_MISSING"

	// ─── Extraction ────────────────────────────────────────────────────
	ErrExtractorUnconfigured ErrCode = "EXTRACTOR_UNCONFIGURED"
	ErrExtractionFailed      ErrCode = "EXTRACTION_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	case ErrValidation:
		return "The request payload failed validation."
	case ErrInvalidID:
		return "The identifier is not a valid UUID."
	case ErrInvalidPayload:
		return "The request payload could not be parsed."

	case ErrNotFound:
		return "The requested resource was not found."

	case ErrEngineNotInitialized:
		return "The analysis engine has not been initialized. Send INIT first."
	case ErrUnknownAnalyzeEvent:
		return "The analyze event type is not recognized."
	case ErrReportNotReady:
		return "No analysis report is available yet."
	case ErrSnapshotMissing:
		return "No persisted snapshot exists to initialize from."

	case ErrExtractorUnconfigured:
		return "The question extraction service is not configured."
	case ErrExtractionFailed:
		return "The question extraction service could not process the text."

	case ErrRateLimitExceeded:
		return "Too many requests. Slow down."

	default:
		return "An internal error occurred."
	}
}
