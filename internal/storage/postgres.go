package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/2beens/gymtracker/internal/telemetry/tracing"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type NewPostgresPoolParams struct {
	Host           string
	Port           string
	DBName         string
	User           string
	Password       string
	TracingEnabled bool
}

func NewPostgresPool(ctx context.Context, params NewPostgresPoolParams) (*pgxpool.Pool, error) {
	user := params.User
	if user == "" {
		user = "postgres"
	}
	connURL := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, params.Password),
		Host:   net.JoinHostPort(params.Host, params.Port),
		Path:   params.DBName,
	}
	if params.Password == "" {
		connURL.User = url.User(user)
	}

	poolConfig, err := pgxpool.ParseConfig(connURL.String())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if params.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return db, nil
}

// pgxConn is the part of *pgxpool.Pool the store runs its queries on.
type pgxConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps the blobs in a single gymtracker_kv table.
type PostgresStore struct {
	conn  pgxConn
	close func()
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates the kv table when missing. The store owns the pool and closes it.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	store := newPostgresStoreWithConn(pool, pool.Close)
	if err := store.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func newPostgresStoreWithConn(conn pgxConn, closeFn func()) *PostgresStore {
	if closeFn == nil {
		closeFn = func() {}
	}
	return &PostgresStore{
		conn:  conn,
		close: closeFn,
	}
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS gymtracker_kv (
		key        VARCHAR PRIMARY KEY,
		value      BYTEA       NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`
	if _, err := s.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postgresStore.load")
	span.SetAttributes(attribute.String("key", key))
	defer func() {
		if errors.Is(err, ErrNotFound) {
			tracing.EndSpanWithErrCheck(span, nil)
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var blob []byte
	row := s.conn.QueryRow(ctx, `SELECT value FROM gymtracker_kv WHERE key = $1`, key)
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan [%s]: %w", key, err)
	}
	return blob, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, blob []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postgresStore.save")
	span.SetAttributes(attribute.String("key", key), attribute.Int("size", len(blob)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `
	INSERT INTO gymtracker_kv (key, value, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`

	tag, err := s.conn.Exec(ctx, query, key, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert [%s]: %w", key, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("upsert [%s]: %d rows affected", key, tag.RowsAffected())
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.close()
	return nil
}
