package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newClockedService(t *testing.T, now *time.Time) *JWTService {
	t.Helper()

	svc, err := NewJWTService(JWTConfig{
		Secret: "secret",
		Issuer: "test-suite",
		Clock:  func() time.Time { return *now },
	})
	require.NoError(t, err)
	return svc
}

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
}

func TestIssueAndVerifySession(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newClockedService(t, &now)

	token, err := svc.IssueSession(SessionInput{UserID: "user-123", Identifier: "bob"})
	require.NoError(t, err)

	claims, err := svc.VerifySession(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, "bob", claims.Identifier)
}

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newClockedService(t, &now)

	short, err := svc.IssueSession(SessionInput{UserID: "user-123"})
	require.NoError(t, err)
	remembered, err := svc.IssueSession(SessionInput{UserID: "user-123", Remember: true})
	require.NoError(t, err)

	// Inside the two hour window both are valid.
	now = now.Add(time.Hour)
	_, err = svc.VerifySession(short)
	require.NoError(t, err)
	_, err = svc.VerifySession(remembered)
	require.NoError(t, err)

	// Past two hours only the remembered session survives.
	now = now.Add(2 * time.Hour)
	_, err = svc.VerifySession(short)
	require.Error(t, err)
	_, err = svc.VerifySession(remembered)
	require.NoError(t, err)

	// Remembered sessions expire after 60 days.
	now = now.Add(61 * 24 * time.Hour)
	_, err = svc.VerifySession(remembered)
	require.Error(t, err)
}

func TestVerifySessionRejectsTampering(t *testing.T) {
	now := time.Now()
	svc := newClockedService(t, &now)

	token, err := svc.IssueSession(SessionInput{UserID: "user-123"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = svc.VerifySession(tampered)
	require.Error(t, err)
}

func TestVerifySessionRejectsWrongSecret(t *testing.T) {
	now := time.Now()
	svc := newClockedService(t, &now)

	other, err := NewJWTService(JWTConfig{Secret: "different", Issuer: "test-suite"})
	require.NoError(t, err)

	token, err := other.IssueSession(SessionInput{UserID: "user-123"})
	require.NoError(t, err)

	_, err = svc.VerifySession(token)
	require.Error(t, err)
}
