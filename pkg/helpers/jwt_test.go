package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	tok, exp, err := m.Generate("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	tok, _, err := NewJWTManager("a", time.Hour).Generate("user-1")
	require.NoError(t, err)

	_, err = NewJWTManager("b", time.Hour).Parse(tok)
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := m.Generate("user-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(tok)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	_, err := NewJWTManager("secret", time.Hour).Parse("not.a.token")
	assert.Error(t, err)
}
