package portalauth

// UserRole is the profile's portal role
type UserRole string

const (
	// RoleClient is a portal client (own case files, forum participation)
	RoleClient UserRole = "client"
	// RoleAffiliate is an affiliate partner (client access plus referral panel)
	RoleAffiliate UserRole = "affiliate"
	// RoleEditor is a content editor (affiliate access plus content management)
	RoleEditor UserRole = "editor"
	// RoleAdmin is a site administrator
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleClient, RoleAffiliate, RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleClient:    0,
		RoleAffiliate: 1,
		RoleEditor:    2,
		RoleAdmin:     3,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleClient,
		RoleAffiliate,
		RoleEditor,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
