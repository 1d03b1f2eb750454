// Package gotrue adapts a GoTrue-style identity backend (sign-up, sign-in,
// sign-out, password reset, session resolution) to the portalauth
// IdentityProvider interface. Tokens stay opaque to this client; role and
// subscription tier ride in the backend's app metadata.
package gotrue
