// Package gateway is the single point of outbound communication with the
// SwiftChat backend API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"github.com/jrsteele09/swiftchat-web/internal/metrics"
	"github.com/jrsteele09/swiftchat-web/tokens"
	"github.com/jrsteele09/swiftchat-web/users"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// TokenStore is satisfied by *tokens.Store
type TokenStore interface {
	Save(ctx context.Context, pair tokens.Pair)
	Get(ctx context.Context) *tokens.Pair
	Clear(ctx context.Context)
}

// UserStore is satisfied by *users.Store
type UserStore interface {
	Save(ctx context.Context, user *users.User)
	Get(ctx context.Context) *users.User
	Clear(ctx context.Context)
}

// Client talks to the backend on behalf of one browser context
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	users      UserStore
	metrics    metrics.Recorder
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTransport replaces the base transport; bearer attachment is layered on top
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.httpClient.Transport = &bearerTransport{base: rt, tokens: c.tokens}
		}
	}
}

func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.metrics = r
		}
	}
}

// New creates a client. baseURL may be empty; every call then fails with a setup error.
func New(baseURL string, tokenStore TokenStore, userStore UserStore, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: &bearerTransport{base: http.DefaultTransport, tokens: tokenStore},
		},
		tokens:  tokenStore,
		users:   userStore,
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login authenticates with email and password and persists the returned session
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var resp AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if err := c.persist(ctx, "login", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*Ack, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.ack(ctx, "register", http.MethodPost, "/auth/register", body)
}

func (c *Client) VerifyEmail(ctx context.Context, token string) (*Ack, error) {
	return c.ack(ctx, "verify_email", http.MethodGet, "/auth/verify?token="+url.QueryEscape(token), nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*Ack, error) {
	return c.ack(ctx, "request_password_reset", http.MethodPost, "/auth/reset-password/request", map[string]string{"email": email})
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) (*Ack, error) {
	body := map[string]string{"resetToken": resetToken, "newPassword": newPassword}
	return c.ack(ctx, "confirm_password_reset", http.MethodPost, "/auth/reset-password/confirm", body)
}

// OAuthRedirectURL is where the browser goes to start a provider login.
// The backend answers it with a redirect, so it is never fetched here.
func (c *Client) OAuthRedirectURL(provider string) string {
	return c.baseURL + "/auth/oauth2/" + url.PathEscape(provider)
}

type oauthCallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state,omitempty"`
}

// ExchangeOAuthCode trades a provider code for a session and persists it
func (c *Client) ExchangeOAuthCode(ctx context.Context, provider, code, state string) (*AuthResponse, error) {
	path := "/auth/oauth2/" + url.PathEscape(provider) + "/callback"

	var resp AuthResponse
	if err := c.do(ctx, "oauth_callback", http.MethodPost, path, oauthCallbackRequest{Code: code, State: state}, &resp); err != nil {
		return nil, err
	}
	if err := c.persist(ctx, "oauth_callback", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetCurrentUser(ctx context.Context) (*users.User, error) {
	var user *users.User
	if err := c.do(ctx, "current_user", http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &APIError{Message: "Invalid response from the server", Status: http.StatusOK, kind: failureDecode}
	}
	return user, nil
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, "dashboard_stats", http.MethodGet, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	var out UserPage
	if err := c.do(ctx, "list_users", http.MethodGet, "/admin/users?"+pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID string, fields map[string]any) (*Ack, error) {
	return c.ack(ctx, "update_user", http.MethodPut, "/admin/users/"+url.PathEscape(userID), fields)
}

func (c *Client) DeleteUser(ctx context.Context, userID string) (*Ack, error) {
	return c.ack(ctx, "delete_user", http.MethodDelete, "/admin/users/"+url.PathEscape(userID), nil)
}

func (c *Client) ListReports(ctx context.Context, page, limit int) (*ReportPage, error) {
	var out ReportPage
	if err := c.do(ctx, "list_reports", http.MethodGet, "/moderation/reports?"+pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResolveReport(ctx context.Context, reportID, resolution string) (*Ack, error) {
	path := "/moderation/reports/" + url.PathEscape(reportID) + "/resolve"
	return c.ack(ctx, "resolve_report", http.MethodPost, path, map[string]string{"resolution": resolution})
}

// CheckHealth calls the backend's /health endpoint
func (c *Client) CheckHealth(ctx context.Context) HealthStatus {
	return CheckHealth(ctx, c.baseURL, DefaultHealthTimeout)
}

// persist writes the session from resp into the stores. Nothing is written
// when the response carries no access token.
func (c *Client) persist(ctx context.Context, op string, resp *AuthResponse) error {
	pair := resp.Pair()
	if !pair.Valid() {
		log.Warn().Str("operation", op).Msg("gateway: auth response without access token")
		return &APIError{Message: apperrors.ErrNoToken.Error(), Err: apperrors.ErrNoToken, kind: failureNoToken}
	}

	c.tokens.Save(ctx, pair)
	if resp.User != nil {
		c.users.Save(ctx, resp.User)
	}
	return nil
}

func (c *Client) ack(ctx context.Context, op, method, path string, body any) (*Ack, error) {
	ack := Ack{Success: true}
	if err := c.do(ctx, op, method, path, body, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	err := c.send(ctx, method, path, body, out)

	if err != nil {
		log.Debug().Err(err).Str("operation", op).Str("outcome", err.outcome()).Msg("gateway call failed")
		c.metrics.RecordGatewayCall(op, err.outcome(), time.Since(start))
		return err
	}
	c.metrics.RecordGatewayCall(op, "ok", time.Since(start))
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) *APIError {
	if c.baseURL == "" {
		return setupError(apperrors.ErrAPIBaseURLNotSet)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return setupError(err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return setupError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return connectivityError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}

	if out == nil || emptyBody(data) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{
			Message: "Invalid response from the server",
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("[gateway decode] %w", err),
			kind:    failureDecode,
		}
	}
	return nil
}

func pageQuery(page, limit int) string {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}.Encode()
}
