package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const currentVersion = 2

var (
	ErrNotFound           = errors.New("not found")
	ErrConstraint         = errors.New("constraint violation")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")
)

type Store struct {
	db   *sqlx.DB
	psql sq.StatementBuilderType
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	raw, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: the store is a single local file used from one
	// logical thread, and :memory: databases live per connection.
	raw.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := raw.Exec(p); err != nil {
			raw.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{
		db:   sqlx.NewDb(raw, "sqlite3"),
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
	if err := s.migrate(); err != nil {
		raw.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// classify maps SQLite constraint failures onto ErrConstraint.
func classify(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	return err
}

func (s *Store) insert(b sq.InsertBuilder) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build SQL query: %w", err)
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// change runs an UPDATE or DELETE and reports ErrNotFound when no row matched.
func (s *Store) change(b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query: %w", err)
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// patch applies fields to table row id. An empty field set touches nothing.
func (s *Store) patch(table string, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return s.change(s.psql.Update(table).SetMap(fields).Where(sq.Eq{"id": id}))
}

func (s *Store) remove(table string, id int64) error {
	return s.change(s.psql.Delete(table).Where(sq.Eq{"id": id}))
}

func (s *Store) selectAll(dest any, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query: %w", err)
	}
	return s.db.Select(dest, query, args...)
}

func (s *Store) selectOne(dest any, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query: %w", err)
	}
	err = s.db.Get(dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
