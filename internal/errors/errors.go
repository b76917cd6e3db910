package errors

import "errors"

// Initialization failures surfaced by bootstrap.
var (
	ErrFailedToConnectYDB        = errors.New("failed to connect to YDB")
	ErrJWTSecretKeyNotConfigured = errors.New("JWT secret key is not configured")
	ErrFailedToInitStorageClient = errors.New("failed to initialize storage client")
)

// Token handling failures.
var (
	ErrUnexpectedSigningMethod      = errors.New("unexpected token signing method")
	ErrFailedToParseToken           = errors.New("failed to parse token")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidRefreshToken          = errors.New("invalid refresh token")
	ErrFailedToGenerateAccessToken  = errors.New("failed to generate access token")
	ErrFailedToGenerateRefreshToken = errors.New("failed to generate refresh token")
	ErrAuthHeaderEmpty              = errors.New("authorization header is empty")
	ErrAuthHeaderWrongFormat        = errors.New("authorization header format must be Bearer {token}")
)

// Access control failures.
var (
	ErrUserRoleNotFoundInContext = errors.New("user role not found in context")
	ErrAccessDenied              = errors.New("access denied")
)
