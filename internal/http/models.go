package http

// Auth Request/Response Models

// RegisterRequest represents a registration request
// @Description	Registration request with user details
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role"`
}

// RegisterResponse represents a registration response
// @Description	Registration response with user ID and message
type RegisterResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// VerifyEmailRequest represents an email verification request
// @Description	Email verification request with email and code
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// VerifyEmailResponse represents an email verification response
type VerifyEmailResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// LoginRequest represents a login request
// @Description	Login request with email and password
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a login response
// @Description	Login response with tokens and user info
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         *UserInfo `json:"user"`
}

// RefreshTokenRequest represents a refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse represents a refresh token response
type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// UserInfo represents user profile data in API responses
type UserInfo struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

// Upload Request/Response Models

// UploadIntentRequest represents a single upload reservation request
// @Description	Upload intent request with content type and original file name
type UploadIntentRequest struct {
	ContentType  string `json:"content_type" validate:"required"`
	OriginalName string `json:"original_name"`
}

// UploadIntentResponse carries the pre-signed URL and the upload identity
type UploadIntentResponse struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	ID        string `json:"id"`
}

// UploadIntentsRequest represents a batch upload reservation request
type UploadIntentsRequest struct {
	ContentType   string   `json:"content_type" validate:"required"`
	OriginalNames []string `json:"original_names"`
	Count         int      `json:"count" validate:"required,min=1"`
}

// UploadIntentsResponse lists the reserved upload identities
type UploadIntentsResponse struct {
	Uploads []UploadIntentResponse `json:"uploads"`
}

// Portfolio Request/Response Models

// SavePortfolioItemRequest creates or updates a portfolio item
// @Description	Portfolio item payload; image_file_ids reference pending uploads
type SavePortfolioItemRequest struct {
	ItemID       string   `json:"item_id"`
	Title        string   `json:"title" validate:"required"`
	ContentHTML  string   `json:"content_html"`
	ImageFileIDs []string `json:"image_file_ids"`
	ImageKeys    []string `json:"image_keys"`
}

// ErrorResponse represents an error response
// @Description	Standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
