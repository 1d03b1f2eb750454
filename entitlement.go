package portalauth

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultVerifyTimeout bounds a single billing confirmation call.
var DefaultVerifyTimeout = 5 * time.Second

// EntitlementResolver answers "may this profile access premium content now".
// The cheap path trusts the subscription tier; the strict path confirms the
// tier against the billing system once per session and caches the verdict.
// All premium checks in the portal go through these predicates so a policy
// change (a trial tier, say) is a one-place edit.
type EntitlementResolver struct {
	verifier BillingVerifier
	timeout  time.Duration
	logger   Logger

	mu       sync.Mutex
	verified map[string]bool
}

// ResolverOption customizes entitlement resolver construction.
type ResolverOption func(*EntitlementResolver)

// WithBillingVerifier sets the billing confirmation collaborator.
func WithBillingVerifier(v BillingVerifier) ResolverOption {
	return func(r *EntitlementResolver) {
		r.verifier = normalizeBillingVerifier(v)
	}
}

// WithVerifyTimeout bounds each billing confirmation call.
func WithVerifyTimeout(d time.Duration) ResolverOption {
	return func(r *EntitlementResolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithResolverLogger overrides the default logger.
func WithResolverLogger(logger Logger) ResolverOption {
	return func(r *EntitlementResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewEntitlementResolver returns a resolver that, absent a billing verifier,
// treats the subscription tier as authoritative.
func NewEntitlementResolver(opts ...ResolverOption) *EntitlementResolver {
	r := &EntitlementResolver{
		verifier: provisionalVerifier{},
		timeout:  DefaultVerifyTimeout,
		verified: map[string]bool{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	r.logger = normalizeLogger(r.logger)

	return r
}

// CheckPremium is the cheap path: the tier alone, provisionally entitled.
func (r *EntitlementResolver) CheckPremium(profile *Profile) bool {
	return profile != nil && profile.Tier.GrantsPremium()
}

// VerifyPremium is the strict path: one billing confirmation per session
// token, cached for the session's lifetime. A free tier short-circuits to
// false without a network call. A failed confirmation fails closed and is
// reported as ErrEntitlementCheckFailed, distinguishable from a confirmed
// lack of entitlement; failures are never cached so a retry re-confirms.
func (r *EntitlementResolver) VerifyPremium(ctx context.Context, token string, profile *Profile) (bool, error) {
	if !r.CheckPremium(profile) {
		return false, nil
	}

	r.mu.Lock()
	if verdict, ok := r.verified[token]; ok && token != "" {
		r.mu.Unlock()
		return verdict, nil
	}
	r.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	entitled, err := r.verifier.ConfirmPremium(callCtx, profile)
	if err != nil {
		r.logger.Warn("billing confirmation failed, failing closed", "error", err)
		return false, goerrors.Wrap(err, goerrors.CategoryOperation, "entitlement check failed").
			WithTextCode(TextCodeEntitlementCheck)
	}

	if token != "" {
		r.mu.Lock()
		r.verified[token] = entitled
		r.mu.Unlock()
	}

	return entitled, nil
}

// Forget drops the cached verdict for a session token. SessionManager calls
// this on token rotation and logout.
func (r *EntitlementResolver) Forget(token string) {
	if token == "" {
		return
	}
	r.mu.Lock()
	delete(r.verified, token)
	r.mu.Unlock()
}

// RequirePremium is a convenience predicate for non-HTTP callers: nil when
// entitled, ErrInsufficientEntitlement when confirmed not, and the
// ErrEntitlementCheckFailed condition when confirmation itself failed.
func (r *EntitlementResolver) RequirePremium(ctx context.Context, token string, profile *Profile) error {
	entitled, err := r.VerifyPremium(ctx, token, profile)
	if err != nil {
		return err
	}
	if !entitled {
		return ErrInsufficientEntitlement.Clone().WithMetadata(map[string]any{
			"tier": string(profileTier(profile)),
		})
	}
	return nil
}

func profileTier(profile *Profile) SubscriptionTier {
	if profile == nil {
		return TierFree
	}
	return profile.Tier
}
