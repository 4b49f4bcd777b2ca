package token_test

import (
	"testing"
	"time"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/token"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	now    time.Time
	issuer *token.Issuer
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.issuer = token.NewIssuer(token.NewHMACSigner("test-secret"), time.Hour,
		token.WithNowTime(func() time.Time { return f.now }))
	return f
}

// TestIssuer_RoundTrip verifies an issued token introspects to the same identity.
func TestIssuer_RoundTrip(t *testing.T) {
	f := setupTestFixture(t)

	raw, err := f.issuer.Issue("admin@verbai.com", "Admin", "super_admin")
	require.NoError(t, err)

	info, err := f.issuer.Introspect("Bearer " + raw)
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, "admin@verbai.com", info.Email)
	require.Equal(t, "super_admin", info.Role)
	require.Equal(t, f.now.Add(time.Hour), info.ExpiresAt)
}

// TestIssuer_Expired verifies tokens past their ttl are rejected.
func TestIssuer_Expired(t *testing.T) {
	f := setupTestFixture(t)

	raw, err := f.issuer.Issue("admin@verbai.com", "Admin", "admin")
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	info, err := f.issuer.Introspect(raw)
	require.ErrorIs(t, err, errors.ErrTokenExpired)
	require.False(t, info.Active)
}

// TestIssuer_WrongSecret verifies tokens signed with another secret are invalid.
func TestIssuer_WrongSecret(t *testing.T) {
	f := setupTestFixture(t)

	other := token.NewIssuer(token.NewHMACSigner("other-secret"), time.Hour,
		token.WithNowTime(func() time.Time { return f.now }))
	raw, err := other.Issue("admin@verbai.com", "Admin", "admin")
	require.NoError(t, err)

	_, err = f.issuer.Introspect(raw)
	require.ErrorIs(t, err, errors.ErrInvalidToken)

	_, err = f.issuer.Introspect("")
	require.ErrorIs(t, err, errors.ErrInvalidToken)
}
