package errors

// Error codes returned in the "error" field of every failure response.
// Format: CATEGORY_SPECIFIC_DETAIL. The dashboard maps these to messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // session token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed session token
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthUserNotFound       = "AUTH_USER_NOT_FOUND"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== Password reset (RESET_) ====================
	ResetTokenNotFound      = "RESET_TOKEN_NOT_FOUND"
	ResetTokenUsed          = "RESET_TOKEN_USED"
	ResetTokenExpired       = "RESET_TOKEN_EXPIRED"
	ResetTokenEmailMismatch = "RESET_TOKEN_EMAIL_MISMATCH"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationWeakPassword = "VALIDATION_WEAK_PASSWORD" // below minimum length
	ValidationTooLong      = "VALIDATION_TOO_LONG"

	// ==================== Mail (MAIL_) ====================
	MailDeliveryFailed = "MAIL_DELIVERY_FAILED"

	// ==================== Internal (INTERNAL_/STORAGE_) ====================
	StorageUnavailable  = "STORAGE_UNAVAILABLE"
	InternalServerError = "INTERNAL_SERVER_ERROR"
)
