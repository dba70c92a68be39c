package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteTable = "translation_cache"

// SQLiteCache is a SharedCache persisted in a SQLite database. It survives
// restarts and can be shared by processes on the same host.
type SQLiteCache struct {
	db  *sql.DB
	sq  sq.StatementBuilderType
	now func() time.Time
}

// OpenSQLiteCache opens (or creates) the database at dsn and prepares the
// cache table.
func OpenSQLiteCache(dsn string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if strings.Contains(dsn, ":memory:") {
		// Every connection to :memory: is its own database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}

	c, err := NewSQLiteCache(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// NewSQLiteCache uses an already opened database.
func NewSQLiteCache(db *sql.DB) (*SQLiteCache, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + sqliteTable + ` (
        cache_key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        expires_at INTEGER NOT NULL DEFAULT 0
    )`); err != nil {
		return nil, fmt.Errorf("create %s: %w", sqliteTable, err)
	}
	return &SQLiteCache{db: db, sq: sq.StatementBuilder, now: time.Now}, nil
}

// Get retrieves a non-expired value.
func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool, error) {
	q := c.sq.Select("value", "expires_at").
		From(sqliteTable).
		Where(sq.Eq{"cache_key": key}).
		Limit(1)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return "", false, err
	}

	var (
		value     string
		expiresAt int64
	)
	if err := c.db.QueryRowContext(ctx, sqlStr, args...).Scan(&value, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	if expiresAt != 0 && c.now().UnixNano() >= expiresAt {
		return "", false, nil
	}
	return value, true, nil
}

// Set upserts a value.
func (c *SQLiteCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = c.now().Add(ttl).UnixNano()
	}
	q := c.sq.
		Insert(sqliteTable).
		Columns("cache_key", "value", "expires_at").
		Values(key, value, expiresAt).
		Suffix("ON CONFLICT(cache_key) DO UPDATE SET value=excluded.value, expires_at=excluded.expires_at")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (c *SQLiteCache) PurgeExpired(ctx context.Context) (int64, error) {
	q := c.sq.Delete(sqliteTable).
		Where(sq.And{
			sq.NotEq{"expires_at": 0},
			sq.LtOrEq{"expires_at": c.now().UnixNano()},
		})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ping checks that the database file is still usable.
func (c *SQLiteCache) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

var _ SharedCache = (*SQLiteCache)(nil)
