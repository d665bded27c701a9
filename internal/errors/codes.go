package errors

// Machine-readable error codes. Clients map on these, never on messages.
// Format: CATEGORY_SPECIFIC_DETAIL
const (
	// auth
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// authorization
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"

	// validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"

	// resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"
	ProductNotFound       = "PRODUCT_NOT_FOUND"
	CategoryNotFound      = "CATEGORY_NOT_FOUND"
	CategoryNameExists    = "CATEGORY_NAME_EXISTS"
	CategoryInUse         = "CATEGORY_IN_USE"
	OrderNotFound         = "ORDER_NOT_FOUND"
	UserNotFound          = "USER_NOT_FOUND"

	// cart / order
	CartEmpty          = "CART_EMPTY"
	OrderTotalMismatch = "ORDER_TOTAL_MISMATCH"

	// uploads
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// throttling
	RateLimited = "RATE_LIMITED"

	// internal
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
