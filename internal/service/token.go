package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sumire/saju-auth/internal/domain"
)

// TokenConfig holds the signing parameters for issued tokens.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Claims are the JWT claims carried by an issued token.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenProvider signs and verifies HS256 bearer tokens.
type TokenProvider struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenProvider creates a new TokenProvider.
func NewTokenProvider(cfg TokenConfig) (*TokenProvider, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TTL)
	}
	return &TokenProvider{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// CreateToken signs a token for subject with the given role.
func (p *TokenProvider) CreateToken(subject string, role domain.Role) (string, error) {
	now := p.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenSigning, err)
	}
	return signed, nil
}

// ParseToken verifies tokenString and returns its claims.
func (p *TokenProvider) ParseToken(tokenString string) (*Claims, error) {
	var claims Claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse token: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return &claims, nil
}
