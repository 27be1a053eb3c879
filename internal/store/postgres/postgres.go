// Package postgres stores entities as JSONB documents alongside the
// columns used for filtering, sorting and uniqueness.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

var (
	_ store.Store      = (*Store)(nil)
	_ store.EventStore = (*Store)(nil)
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Store) Close() error                   { return s.db.Close() }

// table describes how one entity type maps onto its SQL table
type table[T any] struct {
	name       string
	kind       string
	id         func(T) string
	version    func(T) int64
	setVersion func(*T, int64)
	columns    func(T) map[string]any
	sorts      map[string]string
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func (t table[T]) row(v T) (map[string]any, error) {
	doc, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t.kind, err)
	}
	cols := t.columns(v)
	cols["id"] = t.id(v)
	cols["version"] = t.version(v)
	cols["doc"] = doc
	return cols, nil
}

func insert[T any](ctx context.Context, db *sql.DB, t table[T], v T) (T, error) {
	t.setVersion(&v, 1)
	cols, err := t.row(v)
	if err != nil {
		return v, err
	}
	query, args, err := psql.Insert(t.name).SetMap(cols).ToSql()
	if err != nil {
		return v, fmt.Errorf("build insert %s: %w", t.kind, err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return v, err
	}
	return v, nil
}

func scanDoc[T any](row interface{ Scan(...any) error }, kind string) (T, error) {
	var v T
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		return v, err
	}
	if err := json.Unmarshal(doc, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", kind, err)
	}
	return v, nil
}

func get[T any](ctx context.Context, db *sql.DB, t table[T], where sq.Sqlizer, what string) (T, error) {
	var zero T
	query, args, err := psql.Select("doc").From(t.name).Where(where).ToSql()
	if err != nil {
		return zero, fmt.Errorf("build select %s: %w", t.kind, err)
	}
	v, err := scanDoc[T](db.QueryRowContext(ctx, query, args...), t.kind)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %s: %w", t.kind, what, domain.ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("get %s %s: %w", t.kind, what, err)
	}
	return v, nil
}

func list[T any](ctx context.Context, db *sql.DB, t table[T], where sq.And, page pagination.Params) ([]T, int, error) {
	countQuery, args, err := psql.Select("COUNT(*)").From(t.name).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count %s: %w", t.kind, err)
	}
	var total int
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", t.kind, err)
	}

	col, ok := t.sorts[page.SortBy]
	if !ok {
		col = "created_at"
	}
	dir, nulls, idDir := "ASC", "FIRST", "ASC"
	if page.SortDesc {
		dir, nulls, idDir = "DESC", "LAST", "DESC"
	}
	b := psql.Select("doc").From(t.name).Where(where).
		OrderBy(fmt.Sprintf("%s %s NULLS %s", col, dir, nulls), "id "+idDir).
		Offset(uint64(page.Skip))
	if page.Limit > 0 {
		b = b.Limit(uint64(page.Limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list %s: %w", t.kind, err)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", t.kind, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scanDoc[T](rows, t.kind)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

// update writes v only if the stored version still equals v's version
func update[T any](ctx context.Context, db *sql.DB, t table[T], v T) (T, error) {
	var zero T
	id, expected := t.id(v), t.version(v)
	t.setVersion(&v, expected+1)
	cols, err := t.row(v)
	if err != nil {
		return zero, err
	}
	delete(cols, "id")
	query, args, err := psql.Update(t.name).SetMap(cols).
		Where(sq.Eq{"id": id, "version": expected}).ToSql()
	if err != nil {
		return zero, fmt.Errorf("build update %s: %w", t.kind, err)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return zero, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", t.kind, id, err)
	}
	if n == 1 {
		return v, nil
	}

	var current int64
	err = db.QueryRowContext(ctx, "SELECT version FROM "+t.name+" WHERE id = $1", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %s: %w", t.kind, id, domain.ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", t.kind, id, err)
	}
	return zero, fmt.Errorf("%s %s at version %d, have %d: %w", t.kind, id, current, expected, domain.ErrStaleVersion)
}

func remove(ctx context.Context, db *sql.DB, name, kind, id string) error {
	query, args, err := psql.Delete(name).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s: %w", kind, err)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}
