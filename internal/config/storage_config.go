package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	BackendLocal    = "local"
	BackendRemote   = "remote"
	BackendPostgres = "postgres"

	CacheRedis  = "redis"
	CacheMemory = "memory"
)

const (
	backendKey       = "backend"
	cacheKey         = "cache"
	redisAddrKey     = "redis_addr"
	redisPasswordKey = "redis_password"
	redisDBKey       = "redis_db"
	storagePrefixKey = "storage_prefix"
	remoteURLKey     = "remote_url"
	remoteTimeoutKey = "remote_timeout"
	databaseURLKey   = "database_url"
)

// StorageConfig selects and parameterises the segment persistence backend.
type StorageConfig interface {
	GetBackend() string
	GetCache() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetStoragePrefix() string
	GetRemoteURL() string
	GetRemoteTimeout() time.Duration
	GetDatabaseURL() string
}

type Storage struct {
	v *viper.Viper
}

var _ StorageConfig = Storage{}

func (s Storage) GetBackend() string {
	return s.v.GetString(backendKey)
}

// GetCache selects the key-value store holding local state: redis or memory.
func (s Storage) GetCache() string {
	return s.v.GetString(cacheKey)
}

func (s Storage) GetRedisAddr() string {
	return s.v.GetString(redisAddrKey)
}

func (s Storage) GetRedisPassword() string {
	return s.v.GetString(redisPasswordKey)
}

func (s Storage) GetRedisDB() int {
	return s.v.GetInt(redisDBKey)
}

func (s Storage) GetStoragePrefix() string {
	return s.v.GetString(storagePrefixKey)
}

func (s Storage) GetRemoteURL() string {
	return s.v.GetString(remoteURLKey)
}

func (s Storage) GetRemoteTimeout() time.Duration {
	return s.v.GetDuration(remoteTimeoutKey)
}

func (s Storage) GetDatabaseURL() string {
	return s.v.GetString(databaseURLKey)
}
