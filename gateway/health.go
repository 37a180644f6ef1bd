package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const DefaultHealthTimeout = 5 * time.Second

// HealthStatus is the result of a backend connectivity check
type HealthStatus struct {
	IsHealthy bool   `json:"isHealthy"`
	Message   string `json:"message"`
}

// CheckHealth calls GET {baseURL}/health within timeout and describes the outcome
func CheckHealth(ctx context.Context, baseURL string, timeout time.Duration) HealthStatus {
	if baseURL == "" {
		return HealthStatus{Message: "API_BASE_URL is not defined in environment variables"}
	}
	if timeout <= 0 {
		timeout = DefaultHealthTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return HealthStatus{Message: fmt.Sprintf("Error connecting to API: %v", err)}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return HealthStatus{Message: "Connection to API timed out. The server might be slow or unreachable."}
		}
		return HealthStatus{Message: "Could not connect to API. Check if the server is running and the URL is correct."}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return HealthStatus{Message: fmt.Sprintf("API responded with status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))}
	}
	return HealthStatus{IsHealthy: true, Message: "Successfully connected to API"}
}
