package portalauth

import "github.com/goliatone/go-errors"

const (
	TextCodeInvalidInput       = "identity_invalid_input"
	TextCodeInvalidCredentials = "identity_invalid_credentials"
	TextCodeNetworkUnavailable = "identity_network_unavailable"
	TextCodeSessionExpired     = "identity_session_expired"
	TextCodeStorageUnavailable = "credentials_storage_unavailable"
	TextCodeInsufficientRole   = "guard_insufficient_role"
	TextCodeNotEntitled        = "guard_insufficient_entitlement"
	TextCodeEntitlementCheck   = "entitlement_check_failed"
)

// ErrInvalidInput is returned when a sign-up or credential payload fails validation.
var ErrInvalidInput = errors.New("invalid input", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidInput).
	WithCode(errors.CodeBadRequest)

// ErrInvalidCredentials is returned when the identity backend rejects an email/secret pair.
// It is always surfaced verbatim to the sign-in caller, never retried silently.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrNetworkUnavailable is returned when the identity or billing backend cannot be reached.
var ErrNetworkUnavailable = errors.New("identity backend unreachable", errors.CategoryOperation).
	WithTextCode(TextCodeNetworkUnavailable).
	WithCode(errors.CodeInternal)

// ErrSessionExpired is returned when a persisted or server-side session is no longer valid.
var ErrSessionExpired = errors.New("session expired", errors.CategoryAuth).
	WithTextCode(TextCodeSessionExpired).
	WithCode(errors.CodeUnauthorized)

// ErrStorageUnavailable is returned by credential stores when the medium is unreachable.
// The session manager recovers it locally: degrade to unauthenticated, log only.
var ErrStorageUnavailable = errors.New("credential storage unavailable", errors.CategoryInternal).
	WithTextCode(TextCodeStorageUnavailable).
	WithCode(errors.CodeInternal)

// ErrInsufficientRole is returned by Require helpers when the profile role does
// not satisfy the minimum. Guards report this condition as a terminal state, not an error.
var ErrInsufficientRole = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole).
	WithCode(errors.CodeForbidden)

// ErrInsufficientEntitlement is returned by Require helpers when the profile is
// not entitled to premium content.
var ErrInsufficientEntitlement = errors.New("insufficient entitlement", errors.CategoryAuthz).
	WithTextCode(TextCodeNotEntitled).
	WithCode(errors.CodeForbidden)

// ErrEntitlementCheckFailed is returned when the billing confirmation call
// itself failed. Distinct from ErrInsufficientEntitlement so a caller can offer
// "retry" instead of "upgrade".
var ErrEntitlementCheckFailed = errors.New("entitlement check failed", errors.CategoryOperation).
	WithTextCode(TextCodeEntitlementCheck).
	WithCode(errors.CodeInternal)

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// IsInvalidCredentials reports whether err represents a rejected credential pair.
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, TextCodeInvalidCredentials)
}

// IsNetworkUnavailable reports whether err represents an unreachable backend.
func IsNetworkUnavailable(err error) bool {
	return hasTextCode(err, TextCodeNetworkUnavailable)
}

// IsSessionExpired reports whether err represents an expired session.
func IsSessionExpired(err error) bool {
	return hasTextCode(err, TextCodeSessionExpired)
}

// IsStorageUnavailable reports whether err represents an unavailable credential store.
func IsStorageUnavailable(err error) bool {
	return hasTextCode(err, TextCodeStorageUnavailable)
}

// IsInsufficientRole reports whether err represents a failed role requirement.
func IsInsufficientRole(err error) bool {
	return hasTextCode(err, TextCodeInsufficientRole)
}

// IsInsufficientEntitlement reports whether err represents a confirmed lack of
// premium entitlement.
func IsInsufficientEntitlement(err error) bool {
	return hasTextCode(err, TextCodeNotEntitled)
}

// IsEntitlementCheckFailed reports whether err represents a failed billing
// confirmation, as opposed to a confirmed lack of entitlement.
func IsEntitlementCheckFailed(err error) bool {
	return hasTextCode(err, TextCodeEntitlementCheck)
}
