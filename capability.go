package portalauth

import "fmt"

type capabilityKind int

const (
	capabilityNone capabilityKind = iota
	capabilityAuthenticated
	capabilityRoleAtLeast
	capabilityPremium
)

// Capability is the tagged descriptor of what a protected view requires. The
// previously triplicated guards (auth-only, admin-only, premium-only) collapse
// into one evaluator parametrized by a Capability.
type Capability struct {
	kind capabilityKind
	role UserRole
}

// Public requires nothing; the guard always grants.
func Public() Capability {
	return Capability{kind: capabilityNone}
}

// Authenticated requires a live session, any role, any tier.
func Authenticated() Capability {
	return Capability{kind: capabilityAuthenticated}
}

// RoleAtLeast requires a live session whose role satisfies the minimum.
func RoleAtLeast(role UserRole) Capability {
	return Capability{kind: capabilityRoleAtLeast, role: role}
}

// Premium requires a live session with verified premium entitlement.
func Premium() Capability {
	return Capability{kind: capabilityPremium}
}

// RequiresAuth reports whether the capability needs a session at all.
func (c Capability) RequiresAuth() bool {
	return c.kind != capabilityNone
}

// MinimumRole returns the required role, if any.
func (c Capability) MinimumRole() (UserRole, bool) {
	if c.kind != capabilityRoleAtLeast {
		return "", false
	}
	return c.role, true
}

// RequiresPremium reports whether the capability needs verified entitlement.
func (c Capability) RequiresPremium() bool {
	return c.kind == capabilityPremium
}

func (c Capability) String() string {
	switch c.kind {
	case capabilityNone:
		return "public"
	case capabilityAuthenticated:
		return "authenticated"
	case capabilityRoleAtLeast:
		return fmt.Sprintf("role>=%s", c.role)
	case capabilityPremium:
		return "premium"
	default:
		return "unknown"
	}
}

// Denial copy shown on the destination view after a guard redirect. The portal
// front end is Spanish.
const (
	ReasonLoginRequired   = "Acceso denegado. Debes iniciar sesión para continuar."
	ReasonAdminRequired   = "Acceso denegado. Se requieren privilegios de administrador."
	ReasonPremiumRequired = "Se requiere una suscripción premium para acceder a este contenido."
	ReasonCheckFailed     = "No se pudo verificar tu suscripción. Inténtalo de nuevo."
)

// roleDenialReason returns the copy for a failed role check.
func roleDenialReason(minRole UserRole) string {
	if minRole == RoleAdmin {
		return ReasonAdminRequired
	}
	return fmt.Sprintf("Acceso denegado. Se requiere el rol %s o superior.", minRole)
}
