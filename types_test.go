package portalauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	calls int
}

func (r *recordingLogger) Error(format string, args ...any) { r.calls++ }
func (r *recordingLogger) Warn(format string, args ...any)  { r.calls++ }
func (r *recordingLogger) Info(format string, args ...any)  { r.calls++ }
func (r *recordingLogger) Debug(format string, args ...any) { r.calls++ }

func TestNormalizeLogger(t *testing.T) {
	assert.Equal(t, defLogger{}, normalizeLogger(nil))

	custom := &recordingLogger{}
	assert.Same(t, custom, normalizeLogger(custom))
}

func TestConstructorsDefaultLogger(t *testing.T) {
	manager := NewSessionManager(nil, nil)
	assert.Equal(t, defLogger{}, manager.logger)

	guard := NewGuard(manager)
	assert.Equal(t, defLogger{}, guard.logger)

	resolver := NewEntitlementResolver()
	assert.Equal(t, defLogger{}, resolver.logger)
}
