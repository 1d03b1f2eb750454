package credstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portalauth "github.com/lexvia/go-portal-auth"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	profile := storedProfile()

	token, loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, loaded)

	require.NoError(t, store.Save(ctx, "tok-1", profile))

	token, loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, profile.ID, loaded.ID)

	require.NoError(t, store.Clear(ctx))

	token, loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, loaded)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	profile := storedProfile()

	require.NoError(t, store.Save(ctx, "tok-1", profile))

	// Mutating the caller's profile after save does not leak in.
	profile.Role = portalauth.RoleAdmin

	_, first, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, portalauth.RoleAffiliate, first.Role)

	// Mutating a loaded profile does not leak back.
	first.Role = portalauth.RoleAdmin

	_, second, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, portalauth.RoleAffiliate, second.Role)
}
