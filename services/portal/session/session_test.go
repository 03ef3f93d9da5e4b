package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carenest/services/portal/models"
)

type failingStorage struct{ *MemoryStorage }

func (failingStorage) Get(context.Context, string, string) (string, bool, error) {
	return "", false, errors.New("storage unavailable")
}

func TestSessionStartsLoading(t *testing.T) {
	s := New("sid", NewMemoryStorage())

	assert.True(t, s.Loading())
	assert.False(t, s.IsAuthenticated())
}

func TestLoginPersistsKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	s := New("sid", store)

	err := s.Login(ctx, models.TokenPair{Access: "acc", Refresh: "ref"}, models.RoleCaregiver, 7)
	require.NoError(t, err)

	assert.False(t, s.Loading())
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, models.RoleCaregiver, s.Role())
	assert.Equal(t, "7", s.UserID())

	assert.Equal(t, map[string]string{
		KeyAccess:  "acc",
		KeyRefresh: "ref",
		KeyRole:    "caregiver",
		KeyUserID:  "7",
	}, store.Snapshot("sid"))
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	require.NoError(t, New("sid", store).Login(ctx, models.TokenPair{Access: "acc"}, models.RoleAdmin, 1))

	s := New("sid", store)
	require.NoError(t, s.Restore(ctx))
	assert.False(t, s.Loading())
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, models.RoleAdmin, s.Role())

	// role without a token is not a login
	require.NoError(t, store.Delete(ctx, "sid", KeyAccess))
	s = New("sid", store)
	require.NoError(t, s.Restore(ctx))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Role())
}

func TestRestoreStorageFailureKeepsLoading(t *testing.T) {
	s := New("sid", failingStorage{NewMemoryStorage()})

	require.Error(t, s.Restore(context.Background()))
	assert.True(t, s.Loading())
	assert.False(t, s.IsAuthenticated())
}

func TestLogoutClearsKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	s := New("sid", store)
	require.NoError(t, s.Login(ctx, models.TokenPair{Access: "acc", Refresh: "ref"}, models.RoleCaregiver, 3))
	require.NoError(t, s.MarkVerificationModalShown(ctx))

	require.NoError(t, s.Logout(ctx))

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Role())
	for _, key := range []string{KeyAccess, KeyRefresh, KeyRole, KeyUserID, KeyVerificationModalShown} {
		_, ok, err := store.Get(ctx, "sid", key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	shown, err := s.VerificationModalShown(ctx)
	require.NoError(t, err)
	assert.False(t, shown)
}

func TestVerificationModalFlag(t *testing.T) {
	ctx := context.Background()
	s := New("sid", NewMemoryStorage())

	shown, err := s.VerificationModalShown(ctx)
	require.NoError(t, err)
	assert.False(t, shown)

	require.NoError(t, s.MarkVerificationModalShown(ctx))
	shown, err = s.VerificationModalShown(ctx)
	require.NoError(t, err)
	assert.True(t, shown)
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()
	s := New("sid", NewMemoryStorage())

	_, err := s.TokenSource(ctx).Token()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, s.Login(ctx, models.TokenPair{Access: "acc", Refresh: "ref"}, models.RoleCareseeker, 2))

	tok, err := s.TokenSource(ctx).Token()
	require.NoError(t, err)
	assert.Equal(t, "acc", tok.AccessToken)
	assert.Equal(t, "ref", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.Type())

	access, err := s.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acc", access)
}

func TestFlashIsReadOnce(t *testing.T) {
	ctx := context.Background()
	s := New("sid", NewMemoryStorage())

	f, err := s.PopFlash(ctx)
	require.NoError(t, err)
	assert.Nil(t, f)

	require.NoError(t, s.SetFlash(ctx, models.Flash{Kind: models.FlashSuccess, Message: "Verification rejected"}))

	f, err = s.PopFlash(ctx)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, models.FlashSuccess, f.Kind)
	assert.Equal(t, "Verification rejected", f.Message)

	f, err = s.PopFlash(ctx)
	require.NoError(t, err)
	assert.Nil(t, f)
}
