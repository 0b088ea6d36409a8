package auth

import "github.com/golang-jwt/jwt/v5"

type Authenticator interface {
	GenerateTokens(profileID string, role string) (string, string, error)
	ValidateAccessToken(token string) (*jwt.Token, error)
	ValidateRefreshToken(token string) (*jwt.Token, error)
}
