package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/swiftchat-web/gateway"
	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"github.com/jrsteele09/swiftchat-web/storage"
	"github.com/jrsteele09/swiftchat-web/tokens"
	"github.com/jrsteele09/swiftchat-web/users"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	server *httptest.Server
	client *gateway.Client
	tokens *tokens.Store
	users  *users.Store
}

func newFixture(t *testing.T, handler http.HandlerFunc) *testFixture {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := storage.NewInMemoryBackend()
	tokenStore := tokens.NewStore(storage.NewArea(backend, "b1"), nil)
	userStore := users.NewStore(storage.NewArea(backend, "b1"), nil, users.Roles{})

	return &testFixture{
		server: server,
		client: gateway.New(server.URL, tokenStore, userStore),
		tokens: tokenStore,
		users:  userStore,
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestLogin_PersistsTokensAndUser(t *testing.T) {
	var got map[string]string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"accessToken":"t1","refreshToken":"r1","user":{"id":"1","name":"A","email":"a@x.com"}}`)
	})

	resp, err := f.client.Login(context.Background(), "a@x.com", "Secret123")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"email": "a@x.com", "password": "Secret123"}, got)
	require.Equal(t, "t1", resp.AccessToken)

	require.Equal(t, &tokens.Pair{AccessToken: "t1", RefreshToken: "r1"}, f.tokens.Get(context.Background()))
	require.Equal(t, "1", f.users.Get(context.Background()).ID)
}

func TestLogin_WithoutAccessTokenWritesNothing(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"user":{"id":"1"}}`)
	})

	_, err := f.client.Login(context.Background(), "a@x.com", "Secret123")
	require.ErrorIs(t, err, apperrors.ErrNoToken)
	require.EqualError(t, err, "No token received after login")
	require.Nil(t, f.tokens.Get(context.Background()))
	require.Nil(t, f.users.Get(context.Background()))
}

func TestErrorNormalisation_ServerMessage(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
	})

	_, err := f.client.Login(context.Background(), "a@x.com", "bad")
	require.EqualError(t, err, "Invalid credentials")
	require.Equal(t, http.StatusUnauthorized, gateway.StatusOf(err))
	require.True(t, gateway.IsUnauthorized(err))
	require.Nil(t, f.tokens.Get(context.Background()))
}

func TestErrorNormalisation_ErrorField(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"email already registered"}`)
	})

	_, err := f.client.Register(context.Background(), "Ann", "a@x.com", "Secret123")
	require.EqualError(t, err, "email already registered")
}

func TestErrorNormalisation_GenericStatus(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := f.client.GetCurrentUser(context.Background())
	require.EqualError(t, err, "Error 503: Service Unavailable")
	require.False(t, gateway.IsUnauthorized(err))
}

func TestErrorNormalisation_NoResponse(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	store := tokens.NewStore(storage.NewArea(storage.NewInMemoryBackend(), "b1"), nil)
	client := gateway.New(url, store, users.NewStore(nil, nil, users.Roles{}))

	_, err := client.GetCurrentUser(context.Background())
	require.EqualError(t, err, gateway.ConnectivityMessage)
	require.Equal(t, 0, gateway.StatusOf(err))
}

func TestErrorNormalisation_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client := gateway.New(server.URL, tokens.NewStore(nil, nil), users.NewStore(nil, nil, users.Roles{}),
		gateway.WithTimeout(50*time.Millisecond))

	_, err := client.GetCurrentUser(context.Background())
	require.EqualError(t, err, gateway.ConnectivityMessage)
}

func TestErrorNormalisation_SetupFailure(t *testing.T) {
	client := gateway.New("", tokens.NewStore(nil, nil), users.NewStore(nil, nil, users.Roles{}))
	_, err := client.GetCurrentUser(context.Background())
	require.ErrorIs(t, err, apperrors.ErrAPIBaseURLNotSet)
	require.EqualError(t, err, apperrors.ErrAPIBaseURLNotSet.Error())

	bad := gateway.New("http://bad host", tokens.NewStore(nil, nil), users.NewStore(nil, nil, users.Roles{}))
	_, err = bad.GetCurrentUser(context.Background())
	require.Error(t, err)
	require.NotEqual(t, gateway.ConnectivityMessage, err.Error())
}

func TestErrorNormalisation_UnsentRequestKeepsItsOwnText(t *testing.T) {
	client := gateway.New("api.example.com", tokens.NewStore(nil, nil), users.NewStore(nil, nil, users.Roles{}))

	_, err := client.GetCurrentUser(context.Background())
	require.Error(t, err)
	require.NotEqual(t, gateway.ConnectivityMessage, err.Error())
	require.Contains(t, err.Error(), "unsupported protocol scheme")
	require.Equal(t, 0, gateway.StatusOf(err))
}

func TestBearerIsReadAtCallTime(t *testing.T) {
	var seen []string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"id":"1","name":"A","email":"a@x.com"}`)
	})
	ctx := context.Background()

	_, err := f.client.GetCurrentUser(ctx)
	require.NoError(t, err)

	f.tokens.Save(ctx, tokens.Pair{AccessToken: "t1"})
	_, err = f.client.GetCurrentUser(ctx)
	require.NoError(t, err)

	f.tokens.Save(ctx, tokens.Pair{AccessToken: "t2"})
	_, err = f.client.GetCurrentUser(ctx)
	require.NoError(t, err)

	require.Equal(t, []string{"", "Bearer t1", "Bearer t2"}, seen)
}

func TestExchangeOAuthCode_NestedTokens(t *testing.T) {
	var body map[string]string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/oauth2/google/callback", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, `{"tokens":{"accessToken":"t1"},"user":{"id":"1","name":"A","email":"a@x.com"}}`)
	})

	resp, err := f.client.ExchangeOAuthCode(context.Background(), "google", "abc", "xyz")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"code": "abc", "state": "xyz"}, body)
	require.Equal(t, "t1", resp.Pair().AccessToken)
	require.Equal(t, "t1", f.tokens.Get(context.Background()).AccessToken)
	require.Equal(t, "a@x.com", f.users.Get(context.Background()).Email)
}

func TestExchangeOAuthCode_StateOmittedWhenEmpty(t *testing.T) {
	var raw map[string]any
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeJSON(w, http.StatusOK, `{"accessToken":"t1"}`)
	})

	_, err := f.client.ExchangeOAuthCode(context.Background(), "github", "abc", "")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"code": "abc"}, raw)
	require.Nil(t, f.users.Get(context.Background()))
}

func TestAckOperations(t *testing.T) {
	type call struct {
		method, uri string
		body        map[string]string
	}
	var calls []call
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, uri: r.URL.RequestURI()}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&c.body)
		}
		calls = append(calls, c)
		writeJSON(w, http.StatusOK, `{"success":true,"message":"ok"}`)
	})
	ctx := context.Background()

	ack, err := f.client.Register(ctx, "Ann", "a@x.com", "Secret123")
	require.NoError(t, err)
	require.True(t, ack.Success)
	require.Equal(t, "ok", ack.Message)
	require.Nil(t, ack.Session)

	_, err = f.client.VerifyEmail(ctx, "a b&c")
	require.NoError(t, err)
	_, err = f.client.RequestPasswordReset(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = f.client.ConfirmPasswordReset(ctx, "rt", "NewSecret1")
	require.NoError(t, err)

	require.Equal(t, []call{
		{method: http.MethodPost, uri: "/auth/register", body: map[string]string{"name": "Ann", "email": "a@x.com", "password": "Secret123"}},
		{method: http.MethodGet, uri: "/auth/verify?token=a+b%26c"},
		{method: http.MethodPost, uri: "/auth/reset-password/request", body: map[string]string{"email": "a@x.com"}},
		{method: http.MethodPost, uri: "/auth/reset-password/confirm", body: map[string]string{"resetToken": "rt", "newPassword": "NewSecret1"}},
	}, calls)
}

func TestVerifyEmail_AckWithSession(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"verified","accessToken":"t1","user":{"id":"1"}}`)
	})

	ack, err := f.client.VerifyEmail(context.Background(), "tok")
	require.NoError(t, err)
	require.True(t, ack.Success)
	require.NotNil(t, ack.Session)
	require.Equal(t, "t1", ack.Session.Pair().AccessToken)
	// Verification never persists on its own
	require.Nil(t, f.tokens.Get(context.Background()))
}

func TestAck_EmptyBody(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ack, err := f.client.DeleteUser(context.Background(), "42")
	require.NoError(t, err)
	require.True(t, ack.Success)
}

func TestOAuthRedirectURL(t *testing.T) {
	client := gateway.New("https://api.example.com", tokens.NewStore(nil, nil), users.NewStore(nil, nil, users.Roles{}))
	require.Equal(t, "https://api.example.com/auth/oauth2/google", client.OAuthRedirectURL("google"))
	require.Equal(t, "https://api.example.com/auth/oauth2/a%2Fb", client.OAuthRedirectURL("a/b"))
}

func TestDashboardOperations(t *testing.T) {
	var hits atomic.Int32
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.Method + " " + r.URL.RequestURI() {
		case "GET /dashboard/stats":
			writeJSON(w, http.StatusOK, `{"userCount":3,"messageCount":10,"activeUsers":2}`)
		case "GET /admin/users?limit=10&page=2":
			writeJSON(w, http.StatusOK, `{"users":[{"id":"1","name":"A","email":"a@x.com"}],"total":11,"page":2,"limit":10}`)
		case "PUT /admin/users/7":
			writeJSON(w, http.StatusOK, `{"success":true}`)
		case "GET /moderation/reports?limit=5&page=1":
			writeJSON(w, http.StatusOK, `{"reports":[{"id":"r1","reason":"spam","status":"open"}],"total":1,"page":1,"limit":5}`)
		case "POST /moderation/reports/r1/resolve":
			writeJSON(w, http.StatusOK, `{"success":false,"message":"already resolved"}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	stats, err := f.client.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, &gateway.Stats{UserCount: 3, MessageCount: 10, ActiveUsers: 2}, stats)

	page, err := f.client.ListUsers(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	require.Equal(t, 11, page.Total)

	_, err = f.client.UpdateUser(ctx, "7", map[string]any{"name": "B"})
	require.NoError(t, err)

	reports, err := f.client.ListReports(ctx, 0, 5)
	require.NoError(t, err)
	require.Equal(t, "spam", reports.Reports[0].Reason)

	ack, err := f.client.ResolveReport(ctx, "r1", "dismissed")
	require.NoError(t, err)
	require.False(t, ack.Success)
	require.Equal(t, "already resolved", ack.Message)

	require.EqualValues(t, 5, hits.Load())
}

func TestGetCurrentUser_InvalidBody(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `not json`)
	})

	_, err := f.client.GetCurrentUser(context.Background())
	require.EqualError(t, err, "Invalid response from the server")
}
