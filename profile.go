package portalauth

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

// Profile is the durable identity record for a portal account. It exists in
// memory only while a session token does (and vice versa); SessionManager
// enforces the pairing on every mutation.
type Profile struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name,omitempty"`
	Email     string           `json:"email"`
	Role      UserRole         `json:"role"`
	Tier      SubscriptionTier `json:"subscription_tier"`
	AvatarRef string           `json:"avatar_ref,omitempty"`
}

// Validate will run validation rules
func (p Profile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.By(validateUUIDNotNil)),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Role, validation.Required, validation.In(
			RoleClient,
			RoleAffiliate,
			RoleEditor,
			RoleAdmin,
		)),
		validation.Field(&p.Tier, validation.In(
			TierFree,
			TierPremium,
			TierEnterprise,
		)),
	)
}

func validateUUIDNotNil(value any) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return errors.New("a non-nil UUID is required")
	}
	return nil
}

// IsAdmin is derived from Role and therefore consistent with it by construction.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// HasRole checks if the profile has the exact role
func (p *Profile) HasRole(role UserRole) bool {
	return p != nil && p.Role == role
}

// RoleAtLeast checks if the profile's role meets the minimum required level
func (p *Profile) RoleAtLeast(minRole UserRole) bool {
	return p != nil && p.Role.IsAtLeast(minRole)
}

// DisplayName returns the profile name, falling back to the email local part.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}
	if strings.Contains(p.Email, "@") {
		return strings.Split(p.Email, "@")[0]
	}
	return p.Email
}

// Clone returns a copy so callers can never mutate manager-held state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
