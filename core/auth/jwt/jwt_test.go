package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndParse(t *testing.T) {
	j, err := New(&Config{Secret: testSecret, Audience: []string{"webpush-api"}})
	require.NoError(t, err)

	token, err := j.Issue("user-42")
	require.NoError(t, err)

	claims, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Owner())
	assert.Equal(t, "webpush", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(720*time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, err = j.Issue("")
	assert.ErrorIs(t, err, ErrMissingOwner)
}

func TestParseRejects(t *testing.T) {
	j, err := New(&Config{Secret: testSecret, TTL: time.Hour})
	require.NoError(t, err)

	other, err := New(&Config{Secret: testSecret + "x"})
	require.NoError(t, err)
	forged, err := other.Issue("user-42")
	require.NoError(t, err)
	_, err = j.Parse(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	j.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := j.Issue("user-42")
	require.NoError(t, err)
	_, err = j.Parse(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	// a token signed with another algorithm is refused even with the right key
	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-42",
		Issuer:    "webpush",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := hs512.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = j.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "webpush",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err = noSubject.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = j.Parse(raw)
	assert.ErrorIs(t, err, ErrMissingOwner)

	_, err = j.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrConfigInvalid)

	_, err = New(&Config{})
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = New(&Config{Secret: testSecret, SigningMethod: "RS256"})
	assert.ErrorIs(t, err, ErrConfigInvalid)

	cfg := &Config{Secret: testSecret}
	_, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "HS256", cfg.SigningMethod)
	assert.Equal(t, 720*time.Hour, cfg.TTL)
}
