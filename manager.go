package portalauth

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultResolveTimeout bounds the startup session resolution call. A backend
// that never answers resolves to unauthenticated instead of leaving every
// guard in checking indefinitely.
var DefaultResolveTimeout = 10 * time.Second

// SessionManager is the single source of truth for the current authentication
// state. It is the only writer of the credential store, which preserves the
// token/profile co-invariant, and it publishes state changes to watchers only
// after the store write has fully completed.
type SessionManager struct {
	mu       sync.RWMutex
	state    SessionState
	token    string
	profile  *Profile
	provider IdentityProvider
	store    CredentialStore

	entitlements   *EntitlementResolver
	logger         Logger
	resolveTimeout time.Duration
	now            func() time.Time

	watcherMu   sync.Mutex
	watchers    map[int]chan Snapshot
	nextWatcher int
}

// ManagerOption customizes session manager construction.
type ManagerOption func(*SessionManager)

// WithLogger overrides the default logger.
func WithLogger(logger Logger) ManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithResolveTimeout bounds the startup CurrentSession call.
func WithResolveTimeout(d time.Duration) ManagerOption {
	return func(m *SessionManager) {
		if d > 0 {
			m.resolveTimeout = d
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *SessionManager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithEntitlements attaches an entitlement resolver whose per-session cache is
// rotated on login and dropped on logout.
func WithEntitlements(resolver *EntitlementResolver) ManagerOption {
	return func(m *SessionManager) {
		m.entitlements = resolver
	}
}

// NewSessionManager returns a manager in the uninitialized state. Call Resolve
// once at startup to rehydrate the session.
func NewSessionManager(provider IdentityProvider, store CredentialStore, opts ...ManagerOption) *SessionManager {
	m := &SessionManager{
		state:          SessionUninitialized,
		provider:       provider,
		store:          store,
		resolveTimeout: DefaultResolveTimeout,
		now:            time.Now,
		watchers:       map[int]chan Snapshot{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	m.logger = normalizeLogger(m.logger)

	return m
}

// Resolve drives uninitialized → resolving → {authenticated, unauthenticated}.
// It asks the backend for its view of the session first (to detect server-side
// invalidation), and on none or network failure falls back to the credential
// store's last known value, which is adopted as non-authoritative. Persisted
// tokens with a past expiry are discarded silently. Resolve never fails for
// storage or network reasons; the returned error reports ctx cancellation only.
func (m *SessionManager) Resolve(ctx context.Context) (Snapshot, error) {
	m.setResolving()

	callCtx, cancel := context.WithTimeout(ctx, m.resolveTimeout)
	creds, err := m.provider.CurrentSession(callCtx)
	cancel()

	if err == nil && creds != nil {
		loginErr := m.Login(ctx, creds.Token, creds.Profile)
		if loginErr == nil {
			return m.Snapshot(), nil
		}
		m.logger.Warn("session resolution: backend credentials rejected locally", "error", loginErr)
	}

	if err != nil {
		if ctx.Err() != nil {
			m.settleUnauthenticated()
			return m.Snapshot(), goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during session resolution")
		}
		m.logger.Warn("session resolution: backend unavailable, using persisted credentials", "error", err)
	}

	token, profile, storeErr := m.store.Load(ctx)
	if storeErr != nil {
		m.logger.Warn("session resolution: credential store unavailable", "error", storeErr)
		m.settleUnauthenticated()
		return m.Snapshot(), nil
	}

	if token == "" || profile == nil {
		m.settleUnauthenticated()
		return m.Snapshot(), nil
	}

	if tokenExpired(token, m.now()) {
		m.logger.Info("session resolution: persisted token expired, clearing")
		m.clearStore(ctx)
		m.settleUnauthenticated()
		return m.Snapshot(), nil
	}

	m.adopt(token, profile)
	return m.Snapshot(), nil
}

// Login sets the in-memory session, writes through to the credential store,
// and transitions to authenticated. The store write completes before the new
// state becomes visible to watchers, so a guard re-evaluation scheduled by the
// change notification never reads a partial value. Re-login rotates the token.
func (m *SessionManager) Login(ctx context.Context, token string, profile *Profile) error {
	if token == "" || profile == nil {
		return ErrInvalidInput.Clone().WithMetadata(map[string]any{
			"reason": "login requires both a token and a profile",
		})
	}

	if err := profile.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid profile for login").
			WithTextCode(TextCodeInvalidInput)
	}

	m.mu.Lock()
	previous := m.token

	if err := m.store.Save(ctx, token, profile); err != nil {
		// Degrades to a memory-only session rather than failing the login.
		m.logger.Warn("credential store save failed", "error", err)
	}

	m.token = token
	m.profile = profile.Clone()
	m.state = SessionAuthenticated
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if m.entitlements != nil {
		if previous != "" && previous != token {
			m.entitlements.Forget(previous)
		}
	}

	m.publish(snap)
	return nil
}

// Logout clears the in-memory state and the credential store together,
// transitions to unauthenticated, and best-effort notifies the backend. It is
// idempotent and never fails loudly.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.token
	m.token = ""
	m.profile = nil
	m.state = SessionUnauthenticated

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("credential store clear failed", "error", err)
	}

	snap := m.snapshotLocked()
	m.mu.Unlock()

	if m.entitlements != nil && token != "" {
		m.entitlements.Forget(token)
	}

	if token != "" {
		if err := m.provider.SignOut(ctx, token); err != nil {
			m.logger.Warn("backend sign-out failed, local state cleared regardless", "error", err)
		}
	}

	m.publish(snap)
}

// State returns the lifecycle state. This is the query that lets guards
// distinguish resolving from unauthenticated.
func (m *SessionManager) State() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated is safe to call at any time; during resolution it answers
// false, same as unauthenticated.
func (m *SessionManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == SessionAuthenticated && m.profile != nil
}

// CurrentUser returns a copy of the profile, or nil when unauthenticated.
func (m *SessionManager) CurrentUser() *Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != SessionAuthenticated {
		return nil
	}
	return m.profile.Clone()
}

// HasRole reports whether the current profile's role is at least role.
func (m *SessionManager) HasRole(role UserRole) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == SessionAuthenticated && m.profile.RoleAtLeast(role)
}

// Token returns the current session token, empty when unauthenticated.
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != SessionAuthenticated {
		return ""
	}
	return m.token
}

// Snapshot returns a consistent state/token/profile read.
func (m *SessionManager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *SessionManager) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.state}
	if m.state == SessionAuthenticated {
		snap.Token = m.token
		snap.Profile = m.profile.Clone()
	}
	return snap
}

// Watch returns a channel that receives a snapshot after every state change.
// The channel keeps only the latest snapshot (slow consumers skip intermediate
// states) and is closed when ctx is done.
func (m *SessionManager) Watch(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	m.watcherMu.Lock()
	id := m.nextWatcher
	m.nextWatcher++
	m.watchers[id] = ch
	m.watcherMu.Unlock()

	go func() {
		<-ctx.Done()
		m.watcherMu.Lock()
		delete(m.watchers, id)
		close(ch)
		m.watcherMu.Unlock()
	}()

	return ch
}

func (m *SessionManager) publish(snap Snapshot) {
	m.watcherMu.Lock()
	defer m.watcherMu.Unlock()
	for _, ch := range m.watchers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (m *SessionManager) setResolving() {
	m.mu.Lock()
	m.state = SessionResolving
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
}

func (m *SessionManager) settleUnauthenticated() {
	m.mu.Lock()
	m.token = ""
	m.profile = nil
	m.state = SessionUnauthenticated
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
}

// adopt installs persisted credentials without writing them back to the store;
// the value is already durable and non-authoritative until the backend can be
// reached again.
func (m *SessionManager) adopt(token string, profile *Profile) {
	m.mu.Lock()
	m.token = token
	m.profile = profile.Clone()
	m.state = SessionAuthenticated
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
}

func (m *SessionManager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("credential store clear failed", "error", err)
	}
}
