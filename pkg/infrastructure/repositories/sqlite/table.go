package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/vsinha/procure/pkg/domain/entities"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// table maps one entity type onto a table of indexed columns plus a JSON data column.
type table[T any] struct {
	name    string
	entity  string
	columns []string
	// values returns the id followed by one value per column.
	values func(*T) []any
}

// nullable stores empty strings as NULL so optional unique columns never collide.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (t table[T]) upsert(ctx context.Context, q querier, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", t.entity, err)
	}

	cols := append([]string{"id"}, t.columns...)
	cols = append(cols, "data")
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	updates := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		t.name, strings.Join(cols, ", "), placeholders, strings.Join(updates, ", "),
	)

	args := append(t.values(v), string(data))
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", t.entity, entities.ErrDuplicate)
		}
		return fmt.Errorf("failed to save %s: %w", t.entity, err)
	}
	return nil
}

// one returns the single row matching where, or a NotFoundError keyed by key.
func (t table[T]) one(ctx context.Context, q querier, key, where string, args ...any) (*T, error) {
	var data string
	query := fmt.Sprintf("SELECT data FROM %s WHERE %s", t.name, where)
	err := q.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.NewNotFound(t.entity, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", t.entity, err)
	}
	return t.decode(data)
}

func (t table[T]) get(ctx context.Context, q querier, id string) (*T, error) {
	return t.one(ctx, q, id, "id = ?", id)
}

// list returns rows matching f in insertion order.
func (t table[T]) list(ctx context.Context, q querier, f filter) ([]*T, error) {
	query := fmt.Sprintf("SELECT data FROM %s%s ORDER BY rowid", t.name, f.clause())
	rows, err := q.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.entity, err)
		}
		v, err := t.decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (t table[T]) decode(data string) (*T, error) {
	v := new(T)
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", t.entity, err)
	}
	return v, nil
}

// filter accumulates AND-ed WHERE conditions.
type filter struct {
	conds []string
	args  []any
}

func (f filter) eq(column, value string) filter {
	if value == "" {
		return f
	}
	f.conds = append(f.conds, column+" = ?")
	f.args = append(f.args, value)
	return f
}

func (f filter) in(column string, values []string) filter {
	if len(values) == 0 {
		return f
	}
	f.conds = append(f.conds, fmt.Sprintf("%s IN (%s)", column, strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")))
	for _, v := range values {
		f.args = append(f.args, v)
	}
	return f
}

func (f filter) where(cond string, args ...any) filter {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
	return f
}

func (f filter) clause() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

func isUniqueViolation(err error) bool {
	var serr *msqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func statuses[S ~string](in []S) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
