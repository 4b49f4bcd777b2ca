package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "VERBAI"

type Config interface {
	EnvConfig
	CorsConfig
	StorageConfig
	SecurityConfig
	AssistantConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetBaseURL() string
	GetLogLevel() string
	GetDefaultTenantID() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Storage
	Security
	Assistant
}

// New loads .env, an optional verbai.yaml in the working directory and
// VERBAI_* environment variables. Errors reading the config file fall back to
// defaults.
func New() Config {
	c, err := Load("")
	if err != nil {
		return FromViper(newViper())
	}
	return c
}

// Load reads configuration from configFile (or ./verbai.yaml when empty).
// A missing default config file is not an error; a missing explicit one is.
func Load(configFile string) (Config, error) {
	_ = godotenv.Load()

	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("verbai")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("[config Load] failed to read config file: %w", err)
		}
	}
	return FromViper(v), nil
}

// FromViper builds a Config over an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	return mainConfig{
		EnvVars:   EnvVars{v: v},
		Cors:      Cors{v: v},
		Storage:   Storage{v: v},
		Security:  Security{v: v},
		Assistant: Assistant{v: v},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(portKey, "8080")
	v.SetDefault(appNameKey, "VerbAI Studio")
	v.SetDefault(envKey, "DEV")
	v.SetDefault(dataFolderKey, "./data")
	v.SetDefault(baseURLKey, "http://localhost:8080")
	v.SetDefault(logLevelKey, "info")
	v.SetDefault(defaultTenantKey, "verbai-agency")

	v.SetDefault(allowedOriginsKey, "*")

	v.SetDefault(backendKey, BackendLocal)
	v.SetDefault(cacheKey, CacheRedis)
	v.SetDefault(redisAddrKey, "localhost:6379")
	v.SetDefault(redisPasswordKey, "")
	v.SetDefault(redisDBKey, 0)
	v.SetDefault(storagePrefixKey, "verbai_data_v1_")
	v.SetDefault(remoteURLKey, "http://localhost:8080")
	v.SetDefault(remoteTimeoutKey, "10s")
	v.SetDefault(databaseURLKey, "")

	v.SetDefault(apiSecretKey, "")
	v.SetDefault(tokenTTLKey, "24h")
	v.SetDefault(credentialsFileKey, "")
	v.SetDefault(adminEmailKey, "admin@verbai.com")
	v.SetDefault(adminPasswordKey, "")

	v.SetDefault(geminiAPIKeyKey, "")
	v.SetDefault(geminiModelKey, "gemini-2.5-flash")
	v.SetDefault(geminiBaseURLKey, "https://generativelanguage.googleapis.com")
	v.SetDefault(assistantTimeoutKey, "30s")
}
