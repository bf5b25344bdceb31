package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Fixed width so stored timestamps sort lexically in time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// OpenSQLite opens the database at path with immediate write transactions
// and a single connection, so concurrent updates queue instead of failing
// with SQLITE_BUSY. Migrations are applied before returning.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin kv tx: %w", err)
	}
	if err := fn(&sqliteTx{ctx: ctx, tx: tx, now: r.now}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit kv tx: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AppendCompletion(ctx context.Context, in Completion) error {
	if strings.TrimSpace(in.ID) == "" {
		return errors.New("storage: completion id is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (id, focus_minutes, completed_at)
		VALUES (?, ?, ?)`,
		in.ID, in.FocusMinutes, mustTime(in.CompletedAt),
	)
	return err
}

func (r *SQLiteRepository) GetCompletion(ctx context.Context, id string) (Completion, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, focus_minutes, completed_at
		FROM completions WHERE id = ?`, id)
	item, err := scanCompletion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Completion{}, ErrNotFound
		}
		return Completion{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) ListCompletions(ctx context.Context, filter CompletionListFilter) ([]Completion, error) {
	query := `SELECT id, focus_minutes, completed_at FROM completions`
	args := make([]any, 0, 3)
	if filter.Since != nil {
		query += ` WHERE completed_at >= ?`
		args = append(args, mustTime(*filter.Since))
	}
	query += ` ORDER BY completed_at DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Completion, 0)
	for rows.Next() {
		item, scanErr := scanCompletion(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

type sqliteTx struct {
	ctx context.Context
	tx  *sql.Tx
	now func() time.Time
}

func (t *sqliteTx) Get(key string) (string, bool, error) {
	var value string
	err := t.tx.QueryRowContext(t.ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (t *sqliteTx) Set(key, value string) error {
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, mustTime(t.now()),
	)
	return err
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompletion(s scanner) (Completion, error) {
	var out Completion
	var completed string
	if err := s.Scan(&out.ID, &out.FocusMinutes, &completed); err != nil {
		return Completion{}, err
	}
	completedAt, err := parseRequiredTime(completed)
	if err != nil {
		return Completion{}, err
	}
	out.CompletedAt = completedAt
	return out, nil
}
