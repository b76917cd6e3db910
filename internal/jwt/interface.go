package jwt

type TokenManager interface {
	GenerateTokenPair(userID, email, role string) (string, string, error)
	ValidateToken(tokenString string) (*Claims, error)
	RefreshAccessToken(refreshTokenString string) (string, error)
}
