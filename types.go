package portalauth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Credentials is the token/profile pair a successful sign-in or session
// resolution yields. The two travel together everywhere: there is no session
// without a profile and no profile without a session.
type Credentials struct {
	Token   string
	Profile *Profile
}

// ProfileFields are the sign-up attributes forwarded to the identity backend
// as account metadata. The credential pair itself is transient adapter input
// and is never persisted locally.
type ProfileFields struct {
	Name      string `json:"name,omitempty"`
	AvatarRef string `json:"avatar_ref,omitempty"`
}

// PendingSignUp describes a registration awaiting backend confirmation.
// Sign-up never grants a session; confirmation happens outside this library.
type PendingSignUp struct {
	UserID string
	Email  string
}

// CredentialStore persists the token/profile pair across process restarts.
// Save must be atomic: a reader never observes only one half of the pair, and
// a load that finds one half without the other reports none. Implementations
// map medium failures to ErrStorageUnavailable; SessionManager is the only
// writer and recovers those locally.
type CredentialStore interface {
	Save(ctx context.Context, token string, profile *Profile) error
	Load(ctx context.Context) (string, *Profile, error)
	Clear(ctx context.Context) error
}

// IdentityProvider wraps the external authentication backend.
type IdentityProvider interface {
	// SignUp registers an account. It does not grant a session.
	SignUp(ctx context.Context, email, secret string, fields ProfileFields) (*PendingSignUp, error)
	// SignIn exchanges an email/secret pair for credentials.
	SignIn(ctx context.Context, email, secret string) (*Credentials, error)
	// SignOut invalidates the backend session for token. Idempotent.
	SignOut(ctx context.Context, token string) error
	// CurrentSession asks the backend for its view of the live session,
	// independent of any locally persisted credentials. (nil, nil) means none.
	CurrentSession(ctx context.Context) (*Credentials, error)
	// RequestPasswordReset triggers the backend reset email flow.
	RequestPasswordReset(ctx context.Context, email string) error
	// UpdatePassword sets a new secret for the session identified by token.
	UpdatePassword(ctx context.Context, token, newSecret string) error
}

// BillingVerifier confirms premium entitlement against the billing system.
// Used by EntitlementResolver on routes that demand verified billing state.
type BillingVerifier interface {
	ConfirmPremium(ctx context.Context, profile *Profile) (bool, error)
}

// BillingVerifierFunc adapts a function to the BillingVerifier interface.
type BillingVerifierFunc func(ctx context.Context, profile *Profile) (bool, error)

// ConfirmPremium implements BillingVerifier.
func (f BillingVerifierFunc) ConfirmPremium(ctx context.Context, profile *Profile) (bool, error) {
	if f == nil {
		return false, nil
	}
	return f(ctx, profile)
}

// provisionalVerifier trusts the subscription tier on the profile. Default
// verifier when no billing integration is configured.
type provisionalVerifier struct{}

func (provisionalVerifier) ConfirmPremium(_ context.Context, profile *Profile) (bool, error) {
	return profile != nil && profile.Tier.GrantsPremium(), nil
}

func normalizeBillingVerifier(v BillingVerifier) BillingVerifier {
	if v == nil {
		return provisionalVerifier{}
	}
	return v
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] PORTALAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] PORTALAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] PORTALAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] PORTALAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
