package db

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/curingwithcare/care-site/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database holds the database connection pool
type Database struct {
	Pool *pgxpool.Pool
}

// NewDatabase connects to dsn with retry logic for serverless databases
func NewDatabase(ctx context.Context, dsn string) (*Database, error) {
	return NewDatabaseWithRetry(ctx, dsn, 5, time.Second)
}

// NewDatabaseWithRetry connects with exponential backoff between attempts.
func NewDatabaseWithRetry(ctx context.Context, dsn string, maxRetries int, initialDelay time.Duration) (*Database, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: no DATABASE_URL configured", ErrUnavailable)
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Simple protocol keeps the Supabase/pgbouncer transaction pooler happy
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	origHost := poolConfig.ConnConfig.Host
	poolConfig.ConnConfig.DialFunc = preferIPv4Dialer(origHost)
	if poolConfig.ConnConfig.TLSConfig != nil && poolConfig.ConnConfig.TLSConfig.ServerName == "" {
		poolConfig.ConnConfig.TLSConfig.ServerName = origHost
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialDelay
	bo.MaxElapsedTime = 0
	var retries uint64
	if maxRetries > 1 {
		retries = uint64(maxRetries - 1)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx)

	var pool *pgxpool.Pool
	attempt := 0
	connect := func() error {
		attempt++
		logging.LogKV("info", "db connect attempt", map[string]interface{}{
			"attempt": attempt,
			"max":     maxRetries,
			"user":    poolConfig.ConnConfig.User,
			"host":    poolConfig.ConnConfig.Host,
			"port":    poolConfig.ConnConfig.Port,
		})
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := p.Ping(pingCtx); err != nil {
			p.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}
		pool = p
		return nil
	}
	notify := func(err error, next time.Duration) {
		logging.LogKV("warn", "db connect failed", map[string]interface{}{
			"attempt":  attempt,
			"error":    err,
			"retry_in": next.String(),
		})
	}

	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
	}

	logging.LogKV("info", "db connection established", map[string]interface{}{"attempt": attempt})
	return &Database{Pool: pool}, nil
}

func preferIPv4Dialer(origHost string) func(ctx context.Context, network, address string) (net.Conn, error) {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(address)
		if err != nil || host == "" || port == "" {
			host = origHost
			port = "5432"
		}
		ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err == nil {
			for _, ipa := range ips {
				if ipv4 := ipa.IP.To4(); ipv4 != nil {
					return (&net.Dialer{}).DialContext(ctx, "tcp4", net.JoinHostPort(ipv4.String(), port))
				}
			}
			if len(ips) > 0 {
				return (&net.Dialer{}).DialContext(ctx, "tcp", net.JoinHostPort(ips[0].IP.String(), port))
			}
		}
		return (&net.Dialer{}).DialContext(ctx, "tcp", address)
	}
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
		logging.LogKV("info", "db connection pool closed", nil)
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return ErrUnavailable
	}
	return db.Pool.Ping(ctx)
}

// Fetch runs q against Postgres and returns the rows in the order produced
// by the query.
func (db *Database) Fetch(ctx context.Context, q Query) ([]Row, error) {
	if db == nil || db.Pool == nil {
		return nil, fetchFailed(q.Collection, ErrUnavailable)
	}
	sql, args, err := q.SQL()
	if err != nil {
		return nil, fetchFailed(q.Collection, err)
	}
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fetchFailed(q.Collection, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fetchFailed(q.Collection, err)
	}
	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return out, nil
}
