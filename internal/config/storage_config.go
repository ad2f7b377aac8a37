package config

type StorageConfig interface {
	GetCredentialsDriver() string
	GetCredentialsFile() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
	GetSQLiteDSN() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetCredentialsDriver() string {
	return GetEnv("CREDENTIALS_DRIVER", "file")
}

func (Storage) GetCredentialsFile() string {
	return GetEnv("CREDENTIALS_FILE", ".far7tna-credentials.json")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return GetIntEnv("REDIS_DB", 0)
}

func (Storage) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "far7tna:")
}

func (Storage) GetSQLiteDSN() string {
	return GetEnv("SQLITE_DSN", "far7tna.db")
}
