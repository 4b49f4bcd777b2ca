package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	apiSecretKey       = "api_secret"
	tokenTTLKey        = "token_ttl"
	credentialsFileKey = "credentials_file"
	adminEmailKey      = "admin_email"
	adminPasswordKey   = "admin_password"
)

type SecurityConfig interface {
	GetAPISecret() string
	GetTokenTTL() time.Duration
	GetCredentialsFile() string
	GetSystemAdminEmail() string
	GetSystemAdminPassword() string
}

type Security struct {
	v *viper.Viper
}

var _ SecurityConfig = Security{}

// GetAPISecret is the HMAC key for API bearer tokens. Empty disables API auth.
func (s Security) GetAPISecret() string {
	return s.v.GetString(apiSecretKey)
}

func (s Security) GetTokenTTL() time.Duration {
	return s.v.GetDuration(tokenTTLKey)
}

// GetCredentialsFile defaults to users.yaml inside the data folder.
func (s Security) GetCredentialsFile() string {
	if f := s.v.GetString(credentialsFileKey); f != "" {
		return f
	}
	return filepath.Join(s.v.GetString(dataFolderKey), "users.yaml")
}

func (s Security) GetSystemAdminEmail() string {
	return s.v.GetString(adminEmailKey)
}

// GetSystemAdminPassword is used when the credential table is first created.
// When empty a random password is generated and logged once.
func (s Security) GetSystemAdminPassword() string {
	return s.v.GetString(adminPasswordKey)
}
