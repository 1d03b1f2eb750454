package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"

	portalauth "github.com/lexvia/go-portal-auth"
)

var _ portalauth.IdentityProvider = (*Client)(nil)

// Client is an HTTP JSON client for a GoTrue-style identity backend.
type Client struct {
	config Config
	http   *http.Client
	logger portalauth.Logger
}

// NewClient creates an identity provider over the configured backend.
func NewClient(cfg Config) (*Client, error) {
	if cfg.baseURL() == "" {
		return nil, portalauth.ErrInvalidInput.Clone().WithMetadata(map[string]any{
			"reason": "gotrue: base URL is required",
		})
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Client{
		config: cfg,
		http:   cfg.httpClient(),
		logger: logger,
	}, nil
}

type signUpPayload struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

func (p signUpPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 72)),
	)
}

type signInPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p signInPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// SignUp implements portalauth.IdentityProvider. It never grants a session:
// the backend holds the account pending until the visitor confirms by email.
func (c *Client) SignUp(ctx context.Context, email, secret string, fields portalauth.ProfileFields) (*portalauth.PendingSignUp, error) {
	payload := signUpPayload{
		Email:    email,
		Password: secret,
		Data:     profileFieldsData(fields),
	}

	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid sign-up payload").
			WithTextCode(portalauth.TextCodeInvalidInput)
	}

	var user backendUser
	if err := c.do(ctx, http.MethodPost, "/signup", "", payload, &user); err != nil {
		return nil, err
	}

	return &portalauth.PendingSignUp{
		UserID: user.ID,
		Email:  user.Email,
	}, nil
}

// SignIn implements portalauth.IdentityProvider.
func (c *Client) SignIn(ctx context.Context, email, secret string) (*portalauth.Credentials, error) {
	payload := signInPayload{Email: email, Password: secret}
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid sign-in payload").
			WithTextCode(portalauth.TextCodeInvalidInput)
	}

	var grant tokenGrant
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", payload, &grant); err != nil {
		return nil, err
	}

	if grant.AccessToken == "" || grant.User == nil {
		return nil, portalauth.ErrNetworkUnavailable.Clone().WithMetadata(map[string]any{
			"reason": "backend returned a grant without token or user",
		})
	}

	return &portalauth.Credentials{
		Token:   grant.AccessToken,
		Profile: grant.User.toProfile(),
	}, nil
}

// SignOut implements portalauth.IdentityProvider. Idempotent and quiet: a
// backend that cannot be reached is logged, never surfaced, because the caller
// clears local state regardless of the backend ack.
func (c *Client) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	err := c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
	if err != nil {
		c.logger.Warn("gotrue: sign-out not acknowledged", "error", err)
	}
	return nil
}

// CurrentSession implements portalauth.IdentityProvider. A backend answer of
// "no session" (missing token source or a rejected token) is (nil, nil), not
// an error; only transport failures report ErrNetworkUnavailable.
func (c *Client) CurrentSession(ctx context.Context) (*portalauth.Credentials, error) {
	if c.config.TokenSource == nil {
		return nil, nil
	}

	token, ok := c.config.TokenSource(ctx)
	if !ok || token == "" {
		return nil, nil
	}

	var user backendUser
	err := c.do(ctx, http.MethodGet, "/user", token, nil, &user)
	if err != nil {
		if portalauth.IsSessionExpired(err) || portalauth.IsInvalidCredentials(err) {
			return nil, nil
		}
		return nil, err
	}

	return &portalauth.Credentials{
		Token:   token,
		Profile: user.toProfile(),
	}, nil
}

// RequestPasswordReset implements portalauth.IdentityProvider.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid email for password reset").
			WithTextCode(portalauth.TextCodeInvalidInput)
	}
	return c.do(ctx, http.MethodPost, "/recover", "", payload, nil)
}

// UpdatePassword implements portalauth.IdentityProvider.
func (c *Client) UpdatePassword(ctx context.Context, token, newSecret string) error {
	if err := validation.Validate(newSecret, validation.Required, validation.Length(8, 72)); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password").
			WithTextCode(portalauth.TextCodeInvalidInput)
	}
	payload := map[string]string{"password": newSecret}
	return c.do(ctx, http.MethodPut, "/user", token, payload, nil)
}

func profileFieldsData(fields portalauth.ProfileFields) map[string]any {
	data := map[string]any{}
	if fields.Name != "" {
		data["name"] = fields.Name
	}
	if fields.AvatarRef != "" {
		data["avatar_ref"] = fields.AvatarRef
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

func (c *Client) do(ctx context.Context, method, path, token string, payload, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.config.timeout())
	defer cancel()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "gotrue: failed to encode request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(callCtx, method, c.config.baseURL()+path, body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "gotrue: failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("apikey", c.config.APIKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "gotrue: backend unreachable").
			WithTextCode(portalauth.TextCodeNetworkUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "gotrue: failed to read response").
			WithTextCode(portalauth.TextCodeNetworkUnavailable)
	}

	if resp.StatusCode >= 400 {
		return c.mapError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "gotrue: unexpected response shape").
				WithTextCode(portalauth.TextCodeNetworkUnavailable)
		}
	}

	return nil
}

// backendError covers both error shapes the backend emits.
type backendError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Code             int    `json:"code"`
	Msg              string `json:"msg"`
}

func (e backendError) message() string {
	if e.ErrorDescription != "" {
		return e.ErrorDescription
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Error
}

func (c *Client) mapError(status int, raw []byte) error {
	var body backendError
	_ = json.Unmarshal(raw, &body)
	message := body.message()

	meta := map[string]any{"status": status}
	if message != "" {
		meta["backend_message"] = message
	}

	switch {
	case status == http.StatusUnauthorized:
		return portalauth.ErrSessionExpired.Clone().WithMetadata(meta)
	case body.Error == "invalid_grant",
		strings.Contains(strings.ToLower(message), "invalid login credentials"):
		return portalauth.ErrInvalidCredentials.Clone().WithMetadata(meta)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return portalauth.ErrInvalidInput.Clone().WithMetadata(meta)
	case status >= 500:
		return portalauth.ErrNetworkUnavailable.Clone().WithMetadata(meta)
	default:
		return goerrors.New(fmt.Sprintf("gotrue: unexpected status %d", status), goerrors.CategoryOperation).
			WithMetadata(meta)
	}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
