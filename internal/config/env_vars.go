package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	portKey          = "port"
	appNameKey       = "app_name"
	envKey           = "env"
	dataFolderKey    = "data_folder"
	baseURLKey       = "base_url"
	logLevelKey      = "log_level"
	defaultTenantKey = "default_tenant"
)

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.v.GetString(portKey)
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(appNameKey)
}

func (e EnvVars) GetDataFolder() string {
	return e.v.GetString(dataFolderKey)
}

// GetBaseURL returns the public URL of the document service (e.g., "https://studio.verbai.com").
func (e EnvVars) GetBaseURL() string {
	return strings.TrimSuffix(e.v.GetString(baseURLKey), "/")
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString(logLevelKey)
}

// GetDefaultTenantID is the tenant selected on first start and the tenant
// used by the document service when a request does not name one.
func (e EnvVars) GetDefaultTenantID() string {
	return e.v.GetString(defaultTenantKey)
}

func (e EnvVars) GetEnv() string {
	env := e.v.GetString(envKey)
	if env == "" {
		return "DEV"
	}
	return strings.ToUpper(env)
}
