package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService signs and validates the opaque bearer tokens carried in the
// websocket handshake. The signing key comes from configuration, never from
// source.
type TokenService struct {
	key []byte
	ttl time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{key: []byte(secret), ttl: ttl}
}

// Generate creates a signed JWT for a specific user.
func (s *TokenService) Generate(userID string, roles []string) (string, error) {
	expirationTime := time.Now().Add(s.ttl)

	claims := &CustomClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "team-hub",
		},
	}

	// HS256 (HMAC with SHA256), signed with the server's secret key.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Validate parses and validates the signature and expiration of a JWT string.
func (s *TokenService) Validate(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
