package portalauth

import "context"

// GuardState is the authorization guard's state for a protected view.
type GuardState string

const (
	// GuardChecking means the session is still resolving: render a neutral
	// placeholder, never protected content, never a redirect.
	GuardChecking GuardState = "checking"
	// GuardGranted means the wrapped protected content may render.
	GuardGranted GuardState = "granted"
	// GuardDeniedUnauthenticated means no live session exists.
	GuardDeniedUnauthenticated GuardState = "denied-unauthenticated"
	// GuardDeniedRole means the session's role does not satisfy the minimum.
	GuardDeniedRole GuardState = "denied-role"
	// GuardDeniedEntitlement means premium entitlement is missing or could not
	// be confirmed.
	GuardDeniedEntitlement GuardState = "denied-entitlement"
)

// Denied reports whether the state is one of the denied terminals.
func (s GuardState) Denied() bool {
	switch s {
	case GuardDeniedUnauthenticated, GuardDeniedRole, GuardDeniedEntitlement:
		return true
	default:
		return false
	}
}

// Decision is a guard's answer for one capability. Denied decisions carry the
// redirect destination and a human-readable reason so the destination view can
// display context without re-deriving it. Retryable marks an entitlement
// denial caused by a failed billing confirmation rather than a confirmed lack
// of entitlement: offer "retry", not "upgrade".
type Decision struct {
	State      GuardState
	Reason     string
	RedirectTo string
	Retryable  bool
}

// Granted reports whether protected content may render.
func (d Decision) Granted() bool {
	return d.State == GuardGranted
}

const (
	// DefaultLoginPath is where unauthenticated and role-denied visitors land.
	DefaultLoginPath = "/login"
	// DefaultUpgradePath is where entitlement-denied visitors land.
	DefaultUpgradePath = "/suscripcion"
)

// Guard evaluates capability descriptors against the session manager and the
// entitlement resolver. It holds no mutable state of its own, so any number of
// concurrent evaluations on the same page are independently idempotent: none
// of them mutates the session or the credential store.
type Guard struct {
	sessions     *SessionManager
	entitlements *EntitlementResolver
	loginPath    string
	upgradePath  string
	logger       Logger
}

// GuardOption customizes guard construction.
type GuardOption func(*Guard)

// WithEntitlementResolver sets the resolver used for Premium capabilities.
func WithEntitlementResolver(resolver *EntitlementResolver) GuardOption {
	return func(g *Guard) {
		if resolver != nil {
			g.entitlements = resolver
		}
	}
}

// WithLoginPath overrides the redirect destination for authentication and
// role denials.
func WithLoginPath(path string) GuardOption {
	return func(g *Guard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithUpgradePath overrides the redirect destination for entitlement denials.
func WithUpgradePath(path string) GuardOption {
	return func(g *Guard) {
		if path != "" {
			g.upgradePath = path
		}
	}
}

// WithGuardLogger overrides the default logger.
func WithGuardLogger(logger Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGuard returns a guard over the given session manager.
func NewGuard(sessions *SessionManager, opts ...GuardOption) *Guard {
	g := &Guard{
		sessions:    sessions,
		loginPath:   DefaultLoginPath,
		upgradePath: DefaultUpgradePath,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	g.logger = normalizeLogger(g.logger)

	if g.entitlements == nil {
		g.entitlements = NewEntitlementResolver()
	}

	return g
}

// Sessions returns the session manager the guard evaluates against.
func (g *Guard) Sessions() *SessionManager {
	return g.sessions
}

// Evaluate runs one non-blocking pass of the guard state machine. While the
// session is resolving it reports GuardChecking with no redirect. A ctx that
// is done before the decision lands discards the result: the error is
// returned, the zero Decision carries no redirect, and nothing was mutated.
func (g *Guard) Evaluate(ctx context.Context, capability Capability) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	snap := g.sessions.Snapshot()

	if !snap.State.Settled() {
		return Decision{State: GuardChecking}, nil
	}

	if !capability.RequiresAuth() {
		return Decision{State: GuardGranted}, nil
	}

	if !snap.IsAuthenticated() {
		// The reason names the capability the visitor lacks, not just the
		// missing session, so the login view can explain what is gated.
		reason := ReasonLoginRequired
		if minRole, ok := capability.MinimumRole(); ok {
			reason = roleDenialReason(minRole)
		}
		return g.denied(GuardDeniedUnauthenticated, reason, g.loginPath, false), nil
	}

	if minRole, ok := capability.MinimumRole(); ok && !snap.Profile.RoleAtLeast(minRole) {
		return g.denied(GuardDeniedRole, roleDenialReason(minRole), g.loginPath, false), nil
	}

	if capability.RequiresPremium() {
		entitled, err := g.entitlements.VerifyPremium(ctx, snap.Token, snap.Profile)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Decision{}, ctxErr
		}
		if err != nil {
			return g.denied(GuardDeniedEntitlement, ReasonCheckFailed, g.upgradePath, true), nil
		}
		if !entitled {
			return g.denied(GuardDeniedEntitlement, ReasonPremiumRequired, g.upgradePath, false), nil
		}
	}

	return Decision{State: GuardGranted}, nil
}

// Authorize blocks until the session manager settles, then evaluates. It is
// the call sites' cancellation point: when the owning view is torn down before
// the check resolves, ctx cancellation discards the pending result and no
// redirect is ever issued for a consumer that no longer exists.
func (g *Guard) Authorize(ctx context.Context, capability Capability) (Decision, error) {
	updates := g.sessions.Watch(ctx)

	for {
		decision, err := g.Evaluate(ctx, capability)
		if err != nil {
			return Decision{}, err
		}
		if decision.State != GuardChecking {
			return decision, nil
		}

		select {
		case <-ctx.Done():
			return Decision{}, ctx.Err()
		case _, ok := <-updates:
			if !ok {
				return Decision{}, ctx.Err()
			}
		}
	}
}

// RequireRole is a convenience predicate for non-HTTP callers: nil when the
// current session's role satisfies minRole.
func (g *Guard) RequireRole(minRole UserRole) error {
	snap := g.sessions.Snapshot()
	if !snap.IsAuthenticated() {
		return ErrInsufficientRole.Clone().WithMetadata(map[string]any{
			"required": string(minRole),
			"reason":   "unauthenticated",
		})
	}
	if !snap.Profile.RoleAtLeast(minRole) {
		return ErrInsufficientRole.Clone().WithMetadata(map[string]any{
			"role":     string(snap.Profile.Role),
			"required": string(minRole),
		})
	}
	return nil
}

func (g *Guard) denied(state GuardState, reason, redirectTo string, retryable bool) Decision {
	g.logger.Debug("guard denial", "state", state, "reason", reason)
	return Decision{
		State:      state,
		Reason:     reason,
		RedirectTo: redirectTo,
		Retryable:  retryable,
	}
}
