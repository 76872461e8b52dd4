package httputil

// Machine-readable error codes returned alongside error messages so clients
// can branch without parsing human text.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInvalidCredentials = "invalid_credentials"
	CodeExternalAuthFailed = "external_auth_failed"
	CodeSessionInvalid     = "session_invalid"
	CodeMissingAuth        = "missing_auth"
	CodeInvalidAuthHeader  = "invalid_auth_header"
	CodeTokenExpired       = "token_expired"
	CodeAdminRequired      = "admin_required"
	CodeValidationFailed   = "validation_failed"
	CodeNotFound           = "not_found"
	CodeTooManyRequests    = "too_many_requests"
	CodeInternalError      = "internal_error"
)
