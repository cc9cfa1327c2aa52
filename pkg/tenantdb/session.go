package tenantdb

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Session is the query surface handed to tenant-scoped work. Both
// *pgxpool.Pool and *pgxpool.Conn satisfy it, so scoped and unscoped
// sessions look the same to callers.
type Session interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionFunc receives a session scoped to the current tenant.
type SessionFunc func(ctx context.Context, s Session) error

// runScoped applies the scoping statement, runs fn, and undoes the scoping
// on every exit path, including fn panics and cancelled requests. A pooled
// connection must never carry a stale tenant forward, so the reset runs on a
// cancellation-proof context and its failure surfaces alongside fn's error.
func runScoped(ctx context.Context, s Session, setSQL string, setArgs []any, resetSQL string, fn SessionFunc) (err error) {
	if _, execErr := s.Exec(ctx, setSQL, setArgs...); execErr != nil {
		return errors.Join(ErrScopingFailed, execErr)
	}

	defer func() {
		if _, resetErr := s.Exec(context.WithoutCancel(ctx), resetSQL); resetErr != nil {
			err = errors.Join(err, ErrScopeResetFailed, resetErr)
		}
	}()

	return fn(ctx, s)
}

var identifierRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// validIdentifier guards values interpolated into DDL and search_path
// statements, where placeholders are unavailable.
func validIdentifier(name string) bool {
	return name != "" && len(name) <= 63 && identifierRe.MatchString(name)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
