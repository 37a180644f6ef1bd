package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/swiftchat-web/gateway"
	"github.com/jrsteele09/swiftchat-web/session"
	"github.com/jrsteele09/swiftchat-web/tokens"
	"github.com/stretchr/testify/require"
)

func TestCompleteHandshake_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.controller.Resolve(ctx)
	f.api.exchangeResp = &gateway.AuthResponse{AccessToken: "t1", User: alice}

	result := session.CompleteHandshake(ctx, f.controller, session.CallbackParams{Provider: "google", Code: "abc", State: "xyz"}, "/dashboard")
	require.True(t, result.OK())
	require.Equal(t, "/dashboard", result.RedirectTo)
	require.Equal(t, alice, result.User)

	require.Equal(t, &tokens.Pair{AccessToken: "t1"}, f.tokens.Get(ctx))
	require.Equal(t, alice, f.users.Get(ctx))
	require.Equal(t, 1, f.api.exchangeCalls)
}

func TestCompleteHandshake_ProviderError(t *testing.T) {
	f := newFixture(t)

	result := session.CompleteHandshake(context.Background(), f.controller, session.CallbackParams{Provider: "google", Error: "access_denied"}, "/dashboard")
	require.False(t, result.OK())
	require.Equal(t, "Authentication error: access_denied", result.Error)
	require.Zero(t, f.api.exchangeCalls)
}

func TestCompleteHandshake_MissingCode(t *testing.T) {
	f := newFixture(t)

	result := session.CompleteHandshake(context.Background(), f.controller, session.CallbackParams{Provider: "google"}, "/dashboard")
	require.Equal(t, "No authentication code received from the provider", result.Error)
	require.Empty(t, result.RedirectTo)
	require.Zero(t, f.api.exchangeCalls)
}

func TestCompleteHandshake_ExchangeFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.controller.Resolve(ctx)
	f.api.exchangeErr = errors.New("Invalid authorization code")

	result := session.CompleteHandshake(ctx, f.controller, session.CallbackParams{Provider: "github", Code: "bad"}, "/dashboard")
	require.Equal(t, "Invalid authorization code", result.Error)
	require.Nil(t, f.tokens.Get(ctx))
	require.Equal(t, session.StateAnonymous, f.controller.State())
}
