// Package portalauth is the identity/session core of the portal: the logic
// deciding, for any protected view, whether the current visitor may see it and
// under which entitlement.
//
// Session lifecycle:
//   - SessionManager is the single source of truth for authentication state:
//     uninitialized → resolving → {authenticated, unauthenticated}. Resolve
//     rehydrates at startup from the identity backend, falling back to the
//     credential store; Login/Logout are the only writers of that store, so
//     the token/profile co-invariant holds everywhere.
//   - The resolving state is observable on purpose. Boolean queries answer as
//     unauthenticated while resolution is in flight, but guards read the state
//     itself and stay in checking, which is what prevents a valid session from
//     flashing through a login redirect on startup.
//
// Authorization:
//   - One parametrized Guard replaces per-route ad-hoc checks. A Capability
//     (Public, Authenticated, RoleAtLeast, Premium) describes what a view
//     requires; Evaluate/Authorize drive the guard state machine and yield a
//     Decision carrying the denial reason and redirect destination.
//   - EntitlementResolver centralizes premium access: tier as the cheap path,
//     a cached per-session billing confirmation as the strict path, failing
//     closed but distinguishable from a confirmed lack of entitlement.
//
// Collaborators are injected: CredentialStore (see credstore), IdentityProvider
// (see provider/gotrue), BillingVerifier. HTTP wiring lives in
// middleware/guardware.
package portalauth
