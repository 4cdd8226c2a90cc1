package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return &Manager{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Issuer:     "gurukul-backend",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager()
	token, err := m.NewAccessToken("admin", RoleAdmin)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.Equal(t, "admin", claims.Subject)
}

func TestRefreshTokenHasID(t *testing.T) {
	m := newTestManager()
	token, claims, err := m.NewRefreshToken("admin", RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.Equal(t, KindRefresh, parsed.Kind)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	token, err := newTestManager().NewAccessToken("admin", RoleAdmin)
	require.NoError(t, err)

	other := newTestManager()
	other.Secret = []byte("other")
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	m := newTestManager()
	m.AccessTTL = -time.Minute
	token, err := m.NewAccessToken("admin", RoleAdmin)
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "wrong"))
	_, err = HashPassword("")
	assert.Error(t, err)
}
