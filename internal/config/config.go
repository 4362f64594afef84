package config

import "time"

type Config interface {
	EnvConfig
	GatewayConfig
	StoreConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

// GatewayConfig describes how to reach the WARP API gateway and the Google
// OIDC issuer used for federated login.
type GatewayConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetOIDCIssuer() string
	GetOIDCClientID() string
}

// StoreConfig describes where durable session state lives on disk.
type StoreConfig interface {
	GetDataFolder() string
	GetCredentialKey() []byte
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
