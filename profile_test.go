package portalauth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portalauth "github.com/lexvia/go-portal-auth"
)

func TestProfileValidate(t *testing.T) {
	profile := testProfile()
	assert.NoError(t, profile.Validate())

	nilID := testProfile()
	nilID.ID = uuid.Nil
	assert.Error(t, nilID.Validate())

	badEmail := testProfile()
	badEmail.Email = "not an email"
	assert.Error(t, badEmail.Validate())

	noRole := testProfile()
	noRole.Role = ""
	assert.Error(t, noRole.Validate())

	badRole := testProfile()
	badRole.Role = "superuser"
	assert.Error(t, badRole.Validate())

	badTier := testProfile()
	badTier.Tier = "gold"
	assert.Error(t, badTier.Validate())

	// Tier is optional; the zero value reads as free elsewhere.
	noTier := testProfile()
	noTier.Tier = ""
	assert.NoError(t, noTier.Validate())
}

func TestProfileRolePredicates(t *testing.T) {
	profile := testProfile()
	profile.Role = portalauth.RoleEditor

	assert.False(t, profile.IsAdmin())
	assert.True(t, profile.HasRole(portalauth.RoleEditor))
	assert.False(t, profile.HasRole(portalauth.RoleClient))
	assert.True(t, profile.RoleAtLeast(portalauth.RoleAffiliate))
	assert.False(t, profile.RoleAtLeast(portalauth.RoleAdmin))

	admin := testProfile()
	admin.Role = portalauth.RoleAdmin
	assert.True(t, admin.IsAdmin())

	var nilProfile *portalauth.Profile
	assert.False(t, nilProfile.IsAdmin())
	assert.False(t, nilProfile.HasRole(portalauth.RoleClient))
	assert.False(t, nilProfile.RoleAtLeast(portalauth.RoleClient))
}

func TestProfileDisplayName(t *testing.T) {
	profile := testProfile()
	assert.Equal(t, "Ana Torres", profile.DisplayName())

	profile.Name = ""
	assert.Equal(t, "ana", profile.DisplayName())

	var nilProfile *portalauth.Profile
	assert.Equal(t, "", nilProfile.DisplayName())
}

func TestProfileClone(t *testing.T) {
	profile := testProfile()

	clone := profile.Clone()
	require.NotNil(t, clone)
	require.NotSame(t, profile, clone)

	clone.Role = portalauth.RoleAdmin
	assert.Equal(t, portalauth.RoleClient, profile.Role)

	var nilProfile *portalauth.Profile
	assert.Nil(t, nilProfile.Clone())
}
