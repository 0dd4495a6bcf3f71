package jwtinfra

import (
	"errors"
	"testing"
	"time"

	"github.com/eventure/identity-api/internal/config"
	"github.com/eventure/identity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(accessTTL, refreshTTL time.Duration) *Provider {
	return NewProvider(&config.Config{
		JWTAccessSecret:  "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessTokenTTL:   accessTTL,
		RefreshTokenTTL:  refreshTTL,
	})
}

func TestSignAndVerifyAccess_RoundTrip(t *testing.T) {
	p := newTestProvider(time.Hour, 7*24*time.Hour)

	tok, err := p.SignAccess("s1", domain.RoleOrganizer)
	require.NoError(t, err)

	claims, err := p.VerifyAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.SubjectID)
	assert.Equal(t, domain.RoleOrganizer, claims.Role)
}

func TestVerifyAccess_Expired(t *testing.T) {
	p := newTestProvider(-time.Minute, 7*24*time.Hour)

	tok, err := p.SignAccess("s1", domain.RoleUser)
	require.NoError(t, err)

	_, err = p.VerifyAccess(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenExpired))
	assert.False(t, errors.Is(err, domain.ErrTokenInvalid), "expiry must be distinguishable from a bad signature")
}

func TestVerifyAccess_Garbage(t *testing.T) {
	p := newTestProvider(time.Hour, 7*24*time.Hour)

	_, err := p.VerifyAccess("not.a.token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestVerify_WrongSecret(t *testing.T) {
	p1 := newTestProvider(time.Hour, 7*24*time.Hour)
	p2 := NewProvider(&config.Config{
		JWTAccessSecret:  "a-different-secret",
		JWTRefreshSecret: "another-different-secret",
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,
	})

	tok, err := p1.SignAccess("s1", domain.RoleUser)
	require.NoError(t, err)

	_, err = p2.VerifyAccess(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	p := newTestProvider(time.Hour, 7*24*time.Hour)

	access, err := p.SignAccess("s1", domain.RoleUser)
	require.NoError(t, err)

	_, err = p.VerifyRefresh(access)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestSignAndVerifyRefresh_RoundTrip(t *testing.T) {
	p := newTestProvider(time.Hour, 7*24*time.Hour)

	tok, err := p.SignRefresh("s2", domain.RoleUser)
	require.NoError(t, err)

	claims, err := p.VerifyRefresh(tok)
	require.NoError(t, err)
	assert.Equal(t, "s2", claims.SubjectID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}
