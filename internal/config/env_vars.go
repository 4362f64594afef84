package config

import (
	"encoding/hex"
	"os"
	"strconv"
	"time"
)

const (
	appNameVar        = "APP_NAME"
	envVar            = "ENV"
	apiBaseURLVar     = "API_BASE_URL"
	requestTimeoutVar = "REQUEST_TIMEOUT_SECONDS"
	oidcIssuerVar     = "OIDC_ISSUER"
	oidcClientIDVar   = "OIDC_CLIENT_ID"
	dataFolderVar     = "DATA_FOLDER"
	credentialKeyVar  = "CREDENTIAL_KEY"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "WARP Portal Session")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "development")
}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(requestTimeoutVar, "10"))
	if err != nil || seconds <= 0 {
		seconds = 10
	}
	return time.Duration(seconds) * time.Second
}

func (EnvVars) GetOIDCIssuer() string {
	return GetEnv(oidcIssuerVar, "https://accounts.google.com")
}

func (EnvVars) GetOIDCClientID() string {
	return GetEnv(oidcClientIDVar, "")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(dataFolderVar, ".warp-portal")
}

// GetCredentialKey returns the 32-byte key used to encrypt the credential file,
// decoded from hex. An unset or malformed key yields nil, which stores the
// credential unencrypted.
func (EnvVars) GetCredentialKey() []byte {
	raw := GetEnv(credentialKeyVar, "")
	if raw == "" {
		return nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil || len(key) != 32 {
		return nil
	}
	return key
}

func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
