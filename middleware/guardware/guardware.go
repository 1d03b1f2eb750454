package guardware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"

	portalauth "github.com/lexvia/go-portal-auth"
)

// DefaultCheckTimeout bounds how long a request may sit in checking before it
// is treated as unauthenticated.
var DefaultCheckTimeout = 15 * time.Second

// Config parametrizes one guarded route group.
type Config struct {
	// Guard evaluates the capability. Required.
	Guard *portalauth.Guard

	// Capability describes what the wrapped routes require.
	Capability portalauth.Capability

	// Timeout bounds the authorization wait. Default: DefaultCheckTimeout.
	Timeout time.Duration

	// Filter skips the guard for matching requests (optional).
	Filter func(router.Context) bool

	// ErrorHandler handles unexpected evaluation errors.
	ErrorHandler router.ErrorHandler

	// DenyHandler renders a denied decision. The default remembers the
	// rejected route and redirects with the denial reason flashed.
	DenyHandler func(router.Context, portalauth.Decision) error

	// RejectedRouteKey names the cookie remembering the route a denied
	// visitor tried to reach, so the login flow can send them back.
	RejectedRouteKey string

	// Logger overrides the default logger.
	Logger portalauth.Logger
}

// GetDefaultConfig applies defaults over an optional user Config.
func GetDefaultConfig(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Guard == nil {
		panic("guardware: Config.Guard is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCheckTimeout
	}
	if cfg.RejectedRouteKey == "" {
		cfg.RejectedRouteKey = "rejected_route"
	}
	if cfg.Logger == nil {
		cfg.Logger = defaultLogger{}
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			return err
		}
	}
	if cfg.DenyHandler == nil {
		cfg.DenyHandler = makeDenyRedirect(cfg)
	}

	return cfg
}

// New wraps protected routes in an authorization guard. Granted requests
// proceed with the profile and session snapshot attached to the request
// context; denied requests are redirected to the decision's destination with
// the denial reason flashed for the destination view. A session that is still
// resolving past the timeout is treated as unauthenticated rather than
// holding the request in checking indefinitely.
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			checkCtx, cancel := context.WithTimeout(ctx.Context(), cfg.Timeout)
			decision, err := cfg.Guard.Authorize(checkCtx, cfg.Capability)
			cancel()

			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					decision = portalauth.Decision{
						State:      portalauth.GuardDeniedUnauthenticated,
						Reason:     portalauth.ReasonLoginRequired,
						RedirectTo: portalauth.DefaultLoginPath,
					}
				} else if errors.Is(err, context.Canceled) {
					// The consumer is gone; a redirect would land nowhere.
					return nil
				} else {
					return cfg.ErrorHandler(ctx, err)
				}
			}

			if decision.Granted() {
				snap := cfg.Guard.Sessions().Snapshot()
				reqCtx := portalauth.WithSnapshot(ctx.Context(), snap)
				if snap.Profile != nil {
					reqCtx = portalauth.WithProfile(reqCtx, snap.Profile)
					ctx.Locals("profile", snap.Profile)
				}
				ctx.SetContext(reqCtx)
				return hf(ctx)
			}

			return cfg.DenyHandler(ctx, decision)
		}
	}
}

func makeDenyRedirect(cfg Config) func(router.Context, portalauth.Decision) error {
	return func(ctx router.Context, decision portalauth.Decision) error {
		return denyRedirect(ctx, cfg, decision)
	}
}

func denyRedirect(ctx router.Context, cfg Config, decision portalauth.Decision) error {
	cfg.Logger.Info(
		"guard denied request",
		"state", string(decision.State),
		"path", ctx.OriginalURL(),
		"detail", print.MaybePrettyJSON(map[string]any{
			"reason":    decision.Reason,
			"retryable": decision.Retryable,
		}),
	)

	setRejectedRoute(ctx, cfg.RejectedRouteKey)

	statusCode := http.StatusSeeOther
	if ctx.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}

	return flash.WithError(ctx, router.ViewContext{
		"error_message": decision.Reason,
		"guard_state":   string(decision.State),
		"retryable":     decision.Retryable,
	}).Redirect(decision.RedirectTo, statusCode)
}

func setRejectedRoute(ctx router.Context, key string) {
	ctx.Cookie(&router.Cookie{
		Name:     key,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

type defaultLogger struct{}

func (defaultLogger) Debug(string, ...any) {}
func (defaultLogger) Info(string, ...any)  {}
func (defaultLogger) Warn(string, ...any)  {}
func (defaultLogger) Error(string, ...any) {}
