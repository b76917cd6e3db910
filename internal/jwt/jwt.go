package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/makerloft/craftfolio-backend/internal/config"
	app_errors "github.com/makerloft/craftfolio-backend/internal/errors"
)

// Claims carried inside every issued token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 tokens.
type JWTManager struct {
	secretKey     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewJWTManager returns nil when no secret is configured; callers must treat
// a nil manager as "auth disabled".
func NewJWTManager(cfg *config.Config) *JWTManager {
	if cfg.JWTSecretKey == "" {
		return nil
	}
	return &JWTManager{
		secretKey:     cfg.JWTSecretKey,
		accessExpiry:  time.Hour * 24,
		refreshExpiry: time.Hour * 24 * 7,
	}
}

// GenerateTokenPair issues an access and a refresh token for the user.
func (j *JWTManager) GenerateTokenPair(userID, email, role string) (string, string, error) {
	accessToken, err := j.generateToken(userID, email, role, j.accessExpiry)
	if err != nil {
		return "", "", app_errors.ErrFailedToGenerateAccessToken
	}

	refreshToken, err := j.generateToken(userID, email, role, j.refreshExpiry)
	if err != nil {
		return "", "", app_errors.ErrFailedToGenerateRefreshToken
	}

	return accessToken, refreshToken, nil
}

func (j *JWTManager) generateToken(userID, email, role string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ValidateToken parses and verifies a token, returning its claims.
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, app_errors.ErrUnexpectedSigningMethod
		}
		return []byte(j.secretKey), nil
	})

	if err != nil {
		return nil, app_errors.ErrFailedToParseToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, app_errors.ErrInvalidToken
	}

	return claims, nil
}

// RefreshAccessToken mints a fresh access token from a valid refresh token.
func (j *JWTManager) RefreshAccessToken(refreshTokenString string) (string, error) {
	claims, err := j.ValidateToken(refreshTokenString)
	if err != nil {
		return "", app_errors.ErrInvalidRefreshToken
	}

	accessToken, err := j.generateToken(claims.UserID, claims.Email, claims.Role, j.accessExpiry)
	if err != nil {
		return "", app_errors.ErrFailedToGenerateAccessToken
	}

	return accessToken, nil
}

// ExtractTokenFromHeader strips the Bearer prefix from an Authorization header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", app_errors.ErrAuthHeaderEmpty
	}

	const bearerPrefix = "Bearer "
	if len(authHeader) < len(bearerPrefix) || authHeader[:len(bearerPrefix)] != bearerPrefix {
		return "", app_errors.ErrAuthHeaderWrongFormat
	}

	return authHeader[len(bearerPrefix):], nil
}
