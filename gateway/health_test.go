package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/swiftchat-web/gateway"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth(t *testing.T) {
	ctx := context.Background()

	status := gateway.CheckHealth(ctx, "", time.Second)
	require.False(t, status.IsHealthy)
	require.Equal(t, "API_BASE_URL is not defined in environment variables", status.Message)

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
	}))
	defer ok.Close()
	require.Equal(t, gateway.HealthStatus{IsHealthy: true, Message: "Successfully connected to API"}, gateway.CheckHealth(ctx, ok.URL, time.Second))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()
	require.Equal(t, "API responded with status: 502 Bad Gateway", gateway.CheckHealth(ctx, down.URL, time.Second).Message)

	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)
	require.Equal(t, "Connection to API timed out. The server might be slow or unreachable.", gateway.CheckHealth(ctx, slow.URL, 50*time.Millisecond).Message)

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()
	require.Equal(t, "Could not connect to API. Check if the server is running and the URL is correct.", gateway.CheckHealth(ctx, closedURL, time.Second).Message)
}
