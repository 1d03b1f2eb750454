package gotrue

import (
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"

	portalauth "github.com/lexvia/go-portal-auth"
)

// backendUser is the backend's user record. Display fields ride in
// user_metadata (visitor-editable); role and subscription tier ride in
// app_metadata, which only the backend can write.
type backendUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	AppMetadata  map[string]any `json:"app_metadata"`
}

// tokenGrant is the password-grant response.
type tokenGrant struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        *backendUser `json:"user"`
}

func (u *backendUser) toProfile() *portalauth.Profile {
	if u == nil {
		return nil
	}

	role := portalauth.RoleClient
	if parsed, ok := portalauth.ParseRole(metadataString(u.AppMetadata, "role")); ok {
		role = parsed
	}

	tier := portalauth.TierFree
	if parsed, ok := portalauth.ParseTier(metadataString(u.AppMetadata, "subscription_tier")); ok {
		tier = parsed
	}

	return &portalauth.Profile{
		ID:        u.profileID(),
		Name:      metadataString(u.UserMetadata, "name"),
		Email:     u.Email,
		Role:      role,
		Tier:      tier,
		AvatarRef: metadataString(u.UserMetadata, "avatar_ref"),
	}
}

// profileID parses the backend subject as a UUID; subjects issued by older
// backends are not UUIDs, so those get a stable hashid-derived one keyed on
// the email.
func (u *backendUser) profileID() uuid.UUID {
	if id, err := uuid.Parse(u.ID); err == nil {
		return id
	}
	if id, err := hashid.NewUUID(u.Email); err == nil {
		return id
	}
	return uuid.Nil
}

func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	if raw, ok := metadata[key]; ok {
		if val, ok := raw.(string); ok {
			return val
		}
	}
	return ""
}
