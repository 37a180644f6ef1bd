package config

type StorageConfig interface {
	GetDatabaseURL() string
	GetStorageSealKey() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetDatabaseURL selects the Postgres backend for durable browser storage.
// Empty means browser storage lives in memory only.
func (Storage) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}

// GetStorageSealKey enables encryption of stored tokens and user records at rest
func (Storage) GetStorageSealKey() string {
	return GetEnv("STORAGE_SEAL_KEY", "")
}
