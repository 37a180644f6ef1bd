package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	RolesConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetAPIBaseURL() string
	GetRepositoryURL() string
	GetRequestTimeout() time.Duration
	GetHealthCheckTimeout() time.Duration
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Roles
	Storage
}

func New() Config {
	return mainConfig{}
}
