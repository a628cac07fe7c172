package rbac

// Capability constants. Handlers never check roles directly; they ask
// for a capability and the table below decides which roles carry it.
const (
	CapabilityViewOffers        = "offer:view"
	CapabilityManageOffers      = "offer:manage"
	CapabilityViewRestaurants   = "restaurant:view"
	CapabilityManageRestaurants = "restaurant:manage"
	CapabilityCreateBooking     = "booking:create"
	CapabilityViewOwnBookings   = "booking:view_own"
	CapabilityViewAllBookings   = "booking:view_all"
	CapabilityViewAdminStats    = "admin:stats"
	CapabilityManageUsers       = "admin:users"
	CapabilityReplayEvents      = "admin:replay"
)

// Role constants.
const (
	RoleCustomer        = "customer"
	RoleRestaurantOwner = "restaurant_owner"
	RolePlatformAdmin   = "platform_admin"
	RoleSuperAdmin      = "super_admin"
)

// roleCapabilities is the single role -> capability mapping. Navigation
// and endpoint guards both consult it, so the authorization model lives
// in one place.
var roleCapabilities = map[string][]string{
	RoleCustomer: {
		CapabilityViewOffers,
		CapabilityViewRestaurants,
		CapabilityCreateBooking,
		CapabilityViewOwnBookings,
	},
	RoleRestaurantOwner: {
		CapabilityViewOffers,
		CapabilityManageOffers,
		CapabilityViewRestaurants,
		CapabilityManageRestaurants,
		CapabilityViewOwnBookings,
		CapabilityViewAllBookings,
	},
	RolePlatformAdmin: {
		CapabilityViewOffers,
		CapabilityManageOffers,
		CapabilityViewRestaurants,
		CapabilityManageRestaurants,
		CapabilityViewOwnBookings,
		CapabilityViewAllBookings,
		CapabilityViewAdminStats,
	},
	RoleSuperAdmin: {
		CapabilityViewOffers,
		CapabilityManageOffers,
		CapabilityViewRestaurants,
		CapabilityManageRestaurants,
		CapabilityViewOwnBookings,
		CapabilityViewAllBookings,
		CapabilityViewAdminStats,
		CapabilityManageUsers,
		CapabilityReplayEvents,
	},
}

// ValidRole reports whether role is one of the four platform roles.
func ValidRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}

// Capabilities returns a copy of the capability set for a role.
func Capabilities(role string) []string {
	caps, ok := roleCapabilities[role]
	if !ok {
		return nil
	}
	out := make([]string, len(caps))
	copy(out, caps)
	return out
}

// HasCapability checks whether a role carries the given capability.
func HasCapability(role, capability string) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// CheckCapability returns a typed error when the role lacks the
// capability, which is easier to surface from middleware.
func CheckCapability(role, capability string) error {
	if !HasCapability(role, capability) {
		return &CapabilityDeniedError{Role: role, Capability: capability}
	}
	return nil
}

type CapabilityDeniedError struct {
	Role       string
	Capability string
}

func (e *CapabilityDeniedError) Error() string {
	return "insufficient permissions"
}
