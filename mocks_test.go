package portalauth_test

import (
	"context"
	"strings"
	"sync"

	portalauth "github.com/lexvia/go-portal-auth"
	"github.com/stretchr/testify/mock"
)

// MockIdentityProvider implements portalauth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, email, secret string, fields portalauth.ProfileFields) (*portalauth.PendingSignUp, error) {
	args := m.Called(ctx, email, secret, fields)
	pending, _ := args.Get(0).(*portalauth.PendingSignUp)
	return pending, args.Error(1)
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, secret string) (*portalauth.Credentials, error) {
	args := m.Called(ctx, email, secret)
	creds, _ := args.Get(0).(*portalauth.Credentials)
	return creds, args.Error(1)
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockIdentityProvider) CurrentSession(ctx context.Context) (*portalauth.Credentials, error) {
	args := m.Called(ctx)
	creds, _ := args.Get(0).(*portalauth.Credentials)
	return creds, args.Error(1)
}

func (m *MockIdentityProvider) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockIdentityProvider) UpdatePassword(ctx context.Context, token, newSecret string) error {
	args := m.Called(ctx, token, newSecret)
	return args.Error(0)
}

// MockCredentialStore implements portalauth.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Save(ctx context.Context, token string, profile *portalauth.Profile) error {
	args := m.Called(ctx, token, profile)
	return args.Error(0)
}

func (m *MockCredentialStore) Load(ctx context.Context) (string, *portalauth.Profile, error) {
	args := m.Called(ctx)
	profile, _ := args.Get(1).(*portalauth.Profile)
	return args.String(0), profile, args.Error(2)
}

func (m *MockCredentialStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBillingVerifier implements portalauth.BillingVerifier
type MockBillingVerifier struct {
	mock.Mock
}

func (m *MockBillingVerifier) ConfirmPremium(ctx context.Context, profile *portalauth.Profile) (bool, error) {
	args := m.Called(ctx, profile)
	return args.Bool(0), args.Error(1)
}

// testLogger records log lines so tests can assert on degradation paths
// without scraping stdout.
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) record(format string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, format)
}

func (l *testLogger) Debug(format string, args ...any) { l.record(format) }
func (l *testLogger) Info(format string, args ...any)  { l.record(format) }
func (l *testLogger) Warn(format string, args ...any)  { l.record(format) }
func (l *testLogger) Error(format string, args ...any) { l.record(format) }

func (l *testLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
