package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/swiftchat-web/gateway"
	"github.com/stretchr/testify/require"
)

func runHealthcheck(t *testing.T, baseURL string) (gateway.HealthStatus, error) {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("API_BASE_URL", baseURL)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"healthcheck"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()

	var status gateway.HealthStatus
	require.NoError(t, json.Unmarshal(out.Bytes(), &status))
	return status, err
}

func TestHealthcheck_Healthy(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(api.Close)

	status, err := runHealthcheck(t, api.URL)
	require.NoError(t, err)
	require.True(t, status.IsHealthy)
}

func TestHealthcheck_UnhealthyReturnsError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(api.Close)

	status, err := runHealthcheck(t, api.URL)
	require.Error(t, err)
	require.False(t, status.IsHealthy)
	require.Contains(t, err.Error(), status.Message)
}
