package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Auth errors.
var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// Claims is the JWT claim set for API tokens. Single-user system: the
// token authenticates the device, not an account.
type Claims struct {
	jwt.RegisteredClaims
}

// AuthService issues and validates the HS256 API tokens that gate the
// HTTP API and the WebSocket stream.
type AuthService struct {
	secret []byte
	expiry time.Duration
	log    zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(secret string, expiry time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		secret: []byte(secret),
		expiry: expiry,
		log:    log.With().Str("component", "auth_service").Logger(),
	}
}

// IssueToken mints a signed API token valid for the configured expiry.
func (s *AuthService) IssueToken() (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "medprep-client",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies an API token.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
