// Package sqlite keeps cache records in a SQLite database, one table per
// collection with key as the primary key.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/unkn0wn-root/calcache/codec"
	"github.com/unkn0wn-root/calcache/record"
	"github.com/unkn0wn-root/calcache/store"
)

type Config struct {
	Path  string                          // database file; ":memory:" is allowed for single-connection use
	Codec codec.Codec[record.CacheRecord] // encodes the doc column; nil => JSON
}

type Store struct {
	db     *sql.DB
	codec  codec.Codec[record.CacheRecord]
	tables sync.Map // collection -> struct{}, tables already created
	closed atomic.Bool
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at cfg.Path.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("sqlite store: path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// each connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return New(db, cfg.Codec), nil
}

// New wraps an open database. The store takes ownership of db.
func New(db *sql.DB, c codec.Codec[record.CacheRecord]) *Store {
	if c == nil {
		c = codec.JSON[record.CacheRecord]{}
	}
	return &Store{db: db, codec: c}
}

// Execute checks out one connection for the duration of fn and returns it to
// the pool on every exit path.
func (s *Store) Execute(ctx context.Context, collection string, fn func(store.Session) error) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	if err := store.ValidateCollection(collection); err != nil {
		return err
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("sqlite conn: %w", err)
	}
	defer conn.Close()

	if err := s.ensureTable(ctx, conn, collection); err != nil {
		return err
	}
	return fn(&session{s: s, conn: conn, table: collection})
}

func (s *Store) Close(context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureTable(ctx context.Context, conn *sql.Conn, table string) error {
	if _, ok := s.tables.Load(table); ok {
		return nil
	}
	_, err := conn.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %q (
			key        TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			doc        BLOB NOT NULL
		)`, table))
	if err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	s.tables.Store(table, struct{}{})
	return nil
}

type session struct {
	s     *Store
	conn  *sql.Conn
	table string
}

var (
	_ store.Session  = (*session)(nil)
	_ store.Upserter = (*session)(nil)
)

func (x *session) Exists(ctx context.Context, q store.Query) (bool, error) {
	query := fmt.Sprintf(`SELECT 1 FROM %q WHERE key = ?`, x.table)
	args := []any{q.Key}
	if !q.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, q.Since.UnixNano())
	}
	var one int
	err := x.conn.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %q: %w", q.Key, err)
	}
	return true, nil
}

func (x *session) Find(ctx context.Context, q store.Query) (record.CacheRecord, bool, error) {
	var (
		createdAt int64
		blob      []byte
	)
	err := x.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT created_at, doc FROM %q WHERE key = ?`, x.table), q.Key,
	).Scan(&createdAt, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return record.CacheRecord{}, false, nil
	}
	if err != nil {
		return record.CacheRecord{}, false, fmt.Errorf("find %q: %w", q.Key, err)
	}
	doc, err := x.s.codec.Decode(blob)
	if err != nil {
		return record.CacheRecord{}, false, fmt.Errorf("%w: %w", record.ErrMalformed, err)
	}
	doc.Key = q.Key
	doc.CreatedAt = time.Unix(0, createdAt).UTC()
	if !q.Matches(doc) {
		return record.CacheRecord{}, false, nil
	}
	return doc, true, nil
}

func (x *session) Insert(ctx context.Context, doc record.CacheRecord) error {
	n, err := x.write(ctx, doc, `INSERT INTO %q (key, created_at, doc) VALUES (?, ?, ?)
		ON CONFLICT(key) DO NOTHING`)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrDuplicateKey
	}
	return nil
}

func (x *session) Replace(ctx context.Context, doc record.CacheRecord) error {
	blob, err := x.encode(doc)
	if err != nil {
		return err
	}
	res, err := x.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %q SET created_at = ?, doc = ? WHERE key = ?`, x.table),
		doc.CreatedAt.UnixNano(), blob, doc.Key)
	if err != nil {
		return fmt.Errorf("replace %q: %w", doc.Key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace %q: %w", doc.Key, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (x *session) Upsert(ctx context.Context, doc record.CacheRecord) error {
	_, err := x.write(ctx, doc, `INSERT INTO %q (key, created_at, doc) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET created_at = excluded.created_at, doc = excluded.doc`)
	return err
}

// write runs an INSERT statement template against the session table and
// returns the number of affected rows.
func (x *session) write(ctx context.Context, doc record.CacheRecord, stmt string) (int64, error) {
	blob, err := x.encode(doc)
	if err != nil {
		return 0, err
	}
	res, err := x.conn.ExecContext(ctx, fmt.Sprintf(stmt, x.table),
		doc.Key, doc.CreatedAt.UnixNano(), blob)
	if err != nil {
		return 0, fmt.Errorf("write %q: %w", doc.Key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("write %q: %w", doc.Key, err)
	}
	return n, nil
}

// encode serializes the events only; key and created_at live in their own columns.
func (x *session) encode(doc record.CacheRecord) ([]byte, error) {
	blob, err := x.s.codec.Encode(record.CacheRecord{Events: doc.Events})
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", doc.Key, err)
	}
	return blob, nil
}
