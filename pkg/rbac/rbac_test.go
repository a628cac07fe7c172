package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleCustomer, RoleRestaurantOwner, RolePlatformAdmin, RoleSuperAdmin} {
		assert.True(t, ValidRole(role), role)
	}
	assert.False(t, ValidRole("moderator"))
	assert.False(t, ValidRole(""))
}

func TestHasCapability(t *testing.T) {
	t.Run("customer can book but not manage", func(t *testing.T) {
		assert.True(t, HasCapability(RoleCustomer, CapabilityCreateBooking))
		assert.False(t, HasCapability(RoleCustomer, CapabilityManageOffers))
		assert.False(t, HasCapability(RoleCustomer, CapabilityViewAdminStats))
	})

	t.Run("owner manages restaurants and offers", func(t *testing.T) {
		assert.True(t, HasCapability(RoleRestaurantOwner, CapabilityManageRestaurants))
		assert.True(t, HasCapability(RoleRestaurantOwner, CapabilityManageOffers))
		assert.False(t, HasCapability(RoleRestaurantOwner, CapabilityViewAdminStats))
	})

	t.Run("only super admin replays events and manages users", func(t *testing.T) {
		assert.True(t, HasCapability(RoleSuperAdmin, CapabilityReplayEvents))
		assert.True(t, HasCapability(RoleSuperAdmin, CapabilityManageUsers))
		assert.False(t, HasCapability(RolePlatformAdmin, CapabilityReplayEvents))
		assert.False(t, HasCapability(RolePlatformAdmin, CapabilityManageUsers))
	})

	t.Run("unknown role has nothing", func(t *testing.T) {
		assert.False(t, HasCapability("moderator", CapabilityViewOffers))
	})
}

func TestCheckCapability(t *testing.T) {
	assert.NoError(t, CheckCapability(RoleSuperAdmin, CapabilityViewAdminStats))

	err := CheckCapability(RoleCustomer, CapabilityViewAdminStats)
	assert.Error(t, err)

	var denied *CapabilityDeniedError
	assert.ErrorAs(t, err, &denied)
	assert.Equal(t, RoleCustomer, denied.Role)
	assert.Equal(t, CapabilityViewAdminStats, denied.Capability)
}

func TestCapabilitiesReturnsCopy(t *testing.T) {
	caps := Capabilities(RoleCustomer)
	assert.NotEmpty(t, caps)

	caps[0] = "tampered"
	assert.NotContains(t, Capabilities(RoleCustomer), "tampered")

	assert.Nil(t, Capabilities("moderator"))
}
