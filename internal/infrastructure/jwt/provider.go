package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/eventure/identity-api/internal/config"
	"github.com/eventure/identity-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields. Access and refresh tokens carry the
// same claims; they differ only in signing secret and lifetime.
type Claims struct {
	SubjectID string `json:"subject_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs. Access and refresh tokens use
// independent secrets so one can never be replayed as the other.
type Provider struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

func (p *Provider) SignAccess(subjectID, role string) (string, error) {
	return sign(subjectID, role, p.accessSecret, p.accessTTL)
}

func (p *Provider) SignRefresh(subjectID, role string) (string, error) {
	return sign(subjectID, role, p.refreshSecret, p.refreshTTL)
}

func (p *Provider) VerifyAccess(tokenStr string) (*Claims, error) {
	return verify(tokenStr, p.accessSecret)
}

func (p *Provider) VerifyRefresh(tokenStr string) (*Claims, error) {
	return verify(tokenStr, p.refreshSecret)
}

func sign(subjectID, role string, secret []byte, ttl time.Duration) (string, error) {
	claims := Claims{
		SubjectID: subjectID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// verify parses and validates the token. Expiry is reported as
// domain.ErrTokenExpired so callers can offer a refresh; every other failure
// (bad signature, malformed, wrong secret) is domain.ErrTokenInvalid.
func verify(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token expired: %w", domain.ErrTokenExpired)
		}
		return nil, fmt.Errorf("parse token: %w", domain.ErrTokenInvalid)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrTokenInvalid)
	}
	return claims, nil
}
