package guardware_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	portalauth "github.com/lexvia/go-portal-auth"
	"github.com/lexvia/go-portal-auth/credstore"
	"github.com/lexvia/go-portal-auth/middleware/guardware"
)

// stubProvider is an identity backend that never answers with a session.
type stubProvider struct{}

func (stubProvider) SignUp(context.Context, string, string, portalauth.ProfileFields) (*portalauth.PendingSignUp, error) {
	return nil, nil
}

func (stubProvider) SignIn(context.Context, string, string) (*portalauth.Credentials, error) {
	return nil, nil
}

func (stubProvider) SignOut(context.Context, string) error { return nil }

func (stubProvider) CurrentSession(context.Context) (*portalauth.Credentials, error) {
	return nil, nil
}

func (stubProvider) RequestPasswordReset(context.Context, string) error { return nil }

func (stubProvider) UpdatePassword(context.Context, string, string) error { return nil }

type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any)  {}
func (quietLogger) Warn(string, ...any)  {}
func (quietLogger) Error(string, ...any) {}

func newManager(t *testing.T) *portalauth.SessionManager {
	t.Helper()
	return portalauth.NewSessionManager(stubProvider{}, credstore.NewMemoryStore(),
		portalauth.WithLogger(quietLogger{}))
}

func loggedInGuard(t *testing.T, role portalauth.UserRole) *portalauth.Guard {
	t.Helper()

	manager := newManager(t)
	err := manager.Login(context.Background(), "tok-1", &portalauth.Profile{
		ID:    uuid.New(),
		Email: "ana@lexvia.example",
		Role:  role,
		Tier:  portalauth.TierFree,
	})
	require.NoError(t, err)

	return portalauth.NewGuard(manager, portalauth.WithGuardLogger(quietLogger{}))
}

func loggedOutGuard(t *testing.T) *portalauth.Guard {
	t.Helper()
	manager := newManager(t)
	manager.Logout(context.Background())
	return portalauth.NewGuard(manager, portalauth.WithGuardLogger(quietLogger{}))
}

func TestGuardwareGrantsAndAttachesSession(t *testing.T) {
	guard := loggedInGuard(t, portalauth.RoleClient)

	var reqCtx context.Context
	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("SetContext", mock.Anything).Run(func(args mock.Arguments) {
		reqCtx = args.Get(0).(context.Context)
	}).Return()
	ctx.On("Locals", "profile", mock.Anything).Return(nil)

	handlerCalled := false
	middleware := guardware.New(guardware.Config{
		Guard:      guard,
		Capability: portalauth.Authenticated(),
		Logger:     quietLogger{},
	})

	err := middleware(func(c router.Context) error {
		handlerCalled = true
		return nil
	})(ctx)

	require.NoError(t, err)
	assert.True(t, handlerCalled)

	require.NotNil(t, reqCtx)
	profile, ok := portalauth.ProfileFromContext(reqCtx)
	require.True(t, ok)
	assert.Equal(t, "ana@lexvia.example", profile.Email)

	snap, ok := portalauth.SnapshotFromContext(reqCtx)
	require.True(t, ok)
	assert.True(t, snap.IsAuthenticated())
}

func TestGuardwareDeniedInvokesDenyHandler(t *testing.T) {
	guard := loggedOutGuard(t)

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())

	var denied portalauth.Decision
	handlerCalled := false

	middleware := guardware.New(guardware.Config{
		Guard:      guard,
		Capability: portalauth.Authenticated(),
		Logger:     quietLogger{},
		DenyHandler: func(c router.Context, decision portalauth.Decision) error {
			denied = decision
			return nil
		},
	})

	err := middleware(func(c router.Context) error {
		handlerCalled = true
		return nil
	})(ctx)

	require.NoError(t, err)
	assert.False(t, handlerCalled, "protected handler must not run on denial")
	assert.Equal(t, portalauth.GuardDeniedUnauthenticated, denied.State)
	assert.Equal(t, portalauth.DefaultLoginPath, denied.RedirectTo)
}

func TestGuardwareRoleDenialReachesDenyHandler(t *testing.T) {
	guard := loggedInGuard(t, portalauth.RoleClient)

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())

	var denied portalauth.Decision
	middleware := guardware.New(guardware.Config{
		Guard:      guard,
		Capability: portalauth.RoleAtLeast(portalauth.RoleAdmin),
		Logger:     quietLogger{},
		DenyHandler: func(c router.Context, decision portalauth.Decision) error {
			denied = decision
			return nil
		},
	})

	err := middleware(func(c router.Context) error { return nil })(ctx)
	require.NoError(t, err)
	assert.Equal(t, portalauth.GuardDeniedRole, denied.State)
	assert.Equal(t, "Acceso denegado. Se requieren privilegios de administrador.", denied.Reason)
}

func TestGuardwareFilterSkipsGuard(t *testing.T) {
	// An unsettled session would otherwise hold the request until timeout.
	guard := portalauth.NewGuard(newManager(t), portalauth.WithGuardLogger(quietLogger{}))

	ctx := router.NewMockContext()

	middleware := guardware.New(guardware.Config{
		Guard:      guard,
		Capability: portalauth.Authenticated(),
		Logger:     quietLogger{},
		Filter: func(c router.Context) bool {
			return true
		},
	})

	err := middleware(func(c router.Context) error { return nil })(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestGuardwareTimeoutTreatsCheckingAsUnauthenticated(t *testing.T) {
	// The session never settles; the bounded wait must not hang the request.
	guard := portalauth.NewGuard(newManager(t), portalauth.WithGuardLogger(quietLogger{}))

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())

	var denied portalauth.Decision
	middleware := guardware.New(guardware.Config{
		Guard:      guard,
		Capability: portalauth.Authenticated(),
		Timeout:    50 * time.Millisecond,
		Logger:     quietLogger{},
		DenyHandler: func(c router.Context, decision portalauth.Decision) error {
			denied = decision
			return nil
		},
	})

	start := time.Now()
	err := middleware(func(c router.Context) error { return nil })(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, portalauth.GuardDeniedUnauthenticated, denied.State)
	assert.Equal(t, portalauth.ReasonLoginRequired, denied.Reason)
}

func TestGuardwareRequiresGuard(t *testing.T) {
	assert.Panics(t, func() {
		guardware.New(guardware.Config{})
	})
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := guardware.GetDefaultConfig(guardware.Config{
		Guard: loggedOutGuard(t),
	})

	assert.Equal(t, guardware.DefaultCheckTimeout, cfg.Timeout)
	assert.Equal(t, "rejected_route", cfg.RejectedRouteKey)
	assert.NotNil(t, cfg.ErrorHandler)
	assert.NotNil(t, cfg.DenyHandler)
	assert.NotNil(t, cfg.Logger)
}
