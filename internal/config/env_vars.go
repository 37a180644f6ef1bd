package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar       = "PORT"
	appNameVar       = "APP_NAME"
	apiBaseURLVar    = "API_BASE_URL"
	repositoryURLVar = "REPOSITORY_URL"
	logLevelVar      = "LOG_LEVEL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "SwiftChat")
}

func (EnvVars) GetEnv() string {
	return GetEnv("ENV", "DEV")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetAPIBaseURL returns the base URL of the messaging backend (e.g., "https://api.swiftchat.example")
// Every gateway call and the OAuth redirect are built from it
func (EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, ""), "/")
}

// GetRepositoryURL is an optional external link to the source repository, shown in the footer
func (EnvVars) GetRepositoryURL() string {
	return GetEnv(repositoryURLVar, "")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	return GetDuration("REQUEST_TIMEOUT", 10*time.Second)
}

func (EnvVars) GetHealthCheckTimeout() time.Duration {
	return GetDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second)
}

// GetEnv looks the variable up in the process environment, then in the
// loaded config file, and falls back to defaultValue
func GetEnv(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := fileValue(envVar); ok && value != "" {
		return value
	}
	return defaultValue
}

func GetBool(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(GetEnv(envVar, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(GetEnv(envVar, defaultValue.String()))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func GetInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(GetEnv(envVar, strconv.Itoa(defaultValue)))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
