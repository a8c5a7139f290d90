package store

import (
	"context"
	"fmt"

	"github.com/sweetpotato0/chainsocket/config"
	"github.com/sweetpotato0/chainsocket/memory"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendSQLite   = "sqlite"
)

// PostgresConfigFromEnv loads PostgreSQL configuration from environment variables
func PostgresConfigFromEnv() *PostgresConfig {
	return &PostgresConfig{
		Host:     config.GetEnv("POSTGRES_HOST", "localhost"),
		Port:     config.GetEnvInt("POSTGRES_PORT", 5432),
		User:     config.GetEnv("POSTGRES_USER", "postgres"),
		Password: config.GetEnv("POSTGRES_PASSWORD", ""),
		DBName:   config.GetEnv("POSTGRES_DB", "chainsocket"),
		SSLMode:  config.GetEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// RedisConfigFromEnv loads Redis configuration from environment variables
func RedisConfigFromEnv() *RedisConfig {
	return &RedisConfig{
		Addr:     config.GetEnv("REDIS_ADDR", "localhost:6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetEnvInt("REDIS_DB", 0),
		Prefix:   config.GetEnv("REDIS_PREFIX", "chainsocket:vars:"),
		TTL:      config.GetEnvDuration("REDIS_TTL", 0),
	}
}

// MongoConfigFromEnv loads MongoDB configuration from environment variables
func MongoConfigFromEnv() *MongoConfig {
	return &MongoConfig{
		URI:        config.GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database:   config.GetEnv("MONGODB_DB", "chainsocket"),
		Collection: config.GetEnv("MONGODB_COLLECTION", "vars"),
	}
}

// SQLitePathFromEnv returns the SQLite database path
func SQLitePathFromEnv() string {
	return config.GetEnv("SQLITE_PATH", "chainsocket.db")
}

// Open connects the named backend using its environment configuration. The
// returned close function releases the connection.
func Open(ctx context.Context, backend string) (memory.VarStore, func() error, error) {
	switch backend {
	case "", BackendMemory:
		return NewInMemoryStore(), func() error { return nil }, nil
	case BackendRedis:
		cfg := RedisConfigFromEnv()
		if err := config.ValidateRedisConfig(cfg.Addr, cfg.DB, cfg.Prefix); err != nil {
			return nil, nil, err
		}
		s := NewRedisStore(cfg)
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("failed to ping Redis: %w", err)
		}
		return s, s.Close, nil
	case BackendPostgres:
		s, err := NewPostgresStore(ctx, PostgresConfigFromEnv())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case BackendMongo:
		cfg := MongoConfigFromEnv()
		if err := config.ValidateMongoDBConfig(cfg.URI, cfg.Database, cfg.Collection); err != nil {
			return nil, nil, err
		}
		s, err := NewMongoStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return s.Close(context.Background()) }, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(ctx, SQLitePathFromEnv())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown memory backend %q", backend)
	}
}
