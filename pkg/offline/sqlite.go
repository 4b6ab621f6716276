package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-vanreport/internal/sqlitedb"
)

var cacheSchema = []string{
	`CREATE TABLE IF NOT EXISTS cache_containers (
		name       TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		seq        INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cache_entries (
		container TEXT NOT NULL REFERENCES cache_containers(name) ON DELETE CASCADE,
		url       TEXT NOT NULL,
		status    INTEGER NOT NULL,
		header    BLOB,
		body      BLOB,
		stored_at INTEGER NOT NULL,
		PRIMARY KEY (container, url)
	)`,
}

// SQLiteStorage persists containers in a SQLite database so a proxy restart
// keeps serving the last installed app shell.
type SQLiteStorage struct {
	db   *sql.DB
	owns bool
	now  func() time.Time
}

var _ CacheStorage = (*SQLiteStorage)(nil)

// OpenSQLiteStorage opens the database at path and ensures the schema.
func OpenSQLiteStorage(ctx context.Context, path string) (*SQLiteStorage, error) {
	db, err := sqlitedb.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	storage, err := NewSQLiteStorage(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	storage.owns = true
	return storage, nil
}

// NewSQLiteStorage wraps an existing handle; the caller keeps ownership.
func NewSQLiteStorage(ctx context.Context, db *sql.DB) (*SQLiteStorage, error) {
	if db == nil {
		return nil, errors.New("offline: sqlite database is nil")
	}
	if err := sqlitedb.Migrate(ctx, db, cacheSchema...); err != nil {
		return nil, err
	}
	return &SQLiteStorage{db: db, now: time.Now}, nil
}

// Close releases the database when OpenSQLiteStorage created it.
func (s *SQLiteStorage) Close() error {
	if s == nil || !s.owns {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) Open(ctx context.Context, name string) (Container, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("offline: container name is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_containers (name, created_at, seq)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM cache_containers))
		 ON CONFLICT(name) DO NOTHING`,
		name, s.now().UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("offline: open container %q: %w", name, err)
	}
	return &sqliteContainer{storage: s, name: name}, nil
}

func (s *SQLiteStorage) Has(ctx context.Context, name string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_containers WHERE name = ?`, name).Scan(&count); err != nil {
		return false, fmt.Errorf("offline: lookup container %q: %w", name, err)
	}
	return count > 0, nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, name string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("offline: delete container %q: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cache_entries WHERE container = ?`, name); err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("offline: delete entries of %q: %w", name, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM cache_containers WHERE name = ?`, name)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("offline: delete container %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("offline: commit delete of %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, nil
	}
	return affected > 0, nil
}

func (s *SQLiteStorage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM cache_containers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("offline: list containers: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

type sqliteContainer struct {
	storage *SQLiteStorage
	name    string
}

func (c *sqliteContainer) Name() string { return c.name }

func (c *sqliteContainer) Put(ctx context.Context, key string, resp *Response) error {
	if resp == nil {
		return errors.New("offline: response is nil")
	}
	header, err := json.Marshal(resp.Header)
	if err != nil {
		return fmt.Errorf("offline: encode header for %q: %w", key, err)
	}
	_, err = c.storage.db.ExecContext(ctx,
		`INSERT INTO cache_entries (container, url, status, header, body, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(container, url) DO UPDATE SET
		   status = excluded.status, header = excluded.header,
		   body = excluded.body, stored_at = excluded.stored_at`,
		c.name, key, resp.Status, header, resp.Body, c.storage.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("offline: store %q in %q: %w", key, c.name, err)
	}
	return nil
}

func (c *sqliteContainer) Match(ctx context.Context, key string) (*Response, bool, error) {
	var (
		status int
		header []byte
		body   []byte
	)
	err := c.storage.db.QueryRowContext(ctx,
		`SELECT status, header, body FROM cache_entries WHERE container = ? AND url = ?`,
		c.name, key,
	).Scan(&status, &header, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("offline: match %q in %q: %w", key, c.name, err)
	}
	resp := &Response{URL: key, Status: status, Body: body}
	if len(header) > 0 {
		if err := json.Unmarshal(header, &resp.Header); err != nil {
			return nil, false, fmt.Errorf("offline: decode header for %q: %w", key, err)
		}
	}
	return resp, true, nil
}

func (c *sqliteContainer) Keys(ctx context.Context) ([]string, error) {
	rows, err := c.storage.db.QueryContext(ctx,
		`SELECT url FROM cache_entries WHERE container = ? ORDER BY url`, c.name)
	if err != nil {
		return nil, fmt.Errorf("offline: list entries of %q: %w", c.name, err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, rows.Err()
}
