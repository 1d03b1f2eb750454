// Package credstore persists the session token/profile pair across process
// restarts. Writes are atomic: a reader never observes only one half of the
// pair, and a load that finds a half-written record self-heals to none. When
// the medium is unavailable every operation reports
// portalauth.ErrStorageUnavailable and the session layer degrades to
// unauthenticated instead of crashing.
package credstore
