package storage

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Params struct {
	Driver        string
	DataDir       string
	SQLitePath    string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisPrefix   string
	CacheEnabled  bool
	CacheSizeMB   int

	PostgresHost     string
	PostgresPort     string
	PostgresDBName   string
	PostgresUser     string
	PostgresPassword string

	TracingEnabled bool
	// MetricsRegisterer receives the connection pool collector, when the driver has a pool.
	MetricsRegisterer prometheus.Registerer
}

// New builds the store for the configured driver, wrapped in a CachedStore when enabled.
func New(ctx context.Context, params Params) (Store, error) {
	store, err := newDriverStore(ctx, params)
	if err != nil {
		return nil, err
	}

	if params.CacheEnabled {
		log.Debugf("storage: freecache enabled, %d MB", params.CacheSizeMB)
		return NewCachedStore(store, params.CacheSizeMB), nil
	}
	return store, nil
}

func newDriverStore(ctx context.Context, params Params) (Store, error) {
	switch strings.ToLower(params.Driver) {
	case "", DriverFile:
		log.Debugf("storage: file store in [%s]", params.DataDir)
		return NewFileStore(params.DataDir)
	case DriverSQLite:
		dbPath := params.SQLitePath
		if dbPath == "" {
			dbPath = filepath.Join(params.DataDir, "gymtracker.db")
		}
		log.Debugf("storage: sqlite store at [%s]", dbPath)
		return NewSQLiteStore(ctx, dbPath)
	case DriverRedis:
		return newRedisStore(ctx, params)
	case DriverPostgres:
		return newPostgresStore(ctx, params)
	case DriverMemory:
		log.Warnln("storage: memory store, nothing will survive a restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", params.Driver)
	}
}

func newRedisStore(ctx context.Context, params Params) (Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.RedisHost, params.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})
	rdb.AddHook(redisotel.NewTracingHook())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, multierr.Combine(
			fmt.Errorf("redis ping [%s]: %w", rdb.Options().Addr, err),
			rdb.Close(),
		)
	}

	log.Debugf("storage: redis store at [%s], prefix [%s]", rdb.Options().Addr, params.RedisPrefix)
	return NewRedisStore(rdb, params.RedisPrefix), nil
}

func newPostgresStore(ctx context.Context, params Params) (Store, error) {
	pool, err := NewPostgresPool(ctx, NewPostgresPoolParams{
		Host:           params.PostgresHost,
		Port:           params.PostgresPort,
		DBName:         params.PostgresDBName,
		User:           params.PostgresUser,
		Password:       params.PostgresPassword,
		TracingEnabled: params.TracingEnabled,
	})
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping [%s:%s]: %w", params.PostgresHost, params.PostgresPort, err)
	}

	store, err := NewPostgresStore(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	if params.MetricsRegisterer != nil {
		pgxpoolCollector := pgxpoolprometheus.NewCollector(
			pool,
			map[string]string{"db_name": params.PostgresDBName},
		)
		if err := params.MetricsRegisterer.Register(pgxpoolCollector); err != nil {
			log.Errorf("storage: register pgxpool collector: %s", err)
		}
	}

	log.Debugf("storage: postgres store at [%s:%s/%s]", params.PostgresHost, params.PostgresPort, params.PostgresDBName)
	return store, nil
}
