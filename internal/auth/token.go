package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleAdmin is the only role issued by this service.
const RoleAdmin = "ADMIN"

// MinSecretLength is the HS256 key size in bytes.
const MinSecretLength = 32

var (
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrSubjectMismatch = errors.New("token subject mismatch")
)

// Claims is the payload of an access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig defines signing settings.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// TokenProvider issues and validates HS256 access tokens.
type TokenProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenProvider(cfg TokenConfig) (*TokenProvider, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &TokenProvider{secret: cfg.Secret, ttl: cfg.TTL, now: time.Now}, nil
}

// TTL is the validity window of issued tokens.
func (p *TokenProvider) TTL() time.Duration {
	return p.ttl
}

// Generate signs a token for username that expires after the configured TTL.
func (p *TokenProvider) Generate(username string) (string, error) {
	issuedAt := p.now()
	claims := &Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(p.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry and returns the claims.
func (p *TokenProvider) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Validate parses the token and checks it was issued to username.
func (p *TokenProvider) Validate(tokenString, username string) (*Claims, error) {
	claims, err := p.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Subject != username {
		return nil, ErrSubjectMismatch
	}
	return claims, nil
}
