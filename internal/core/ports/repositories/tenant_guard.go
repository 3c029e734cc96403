package repositories

import (
	"context"
)

// Row is a single result row keyed by column name.
type Row = map[string]any

// Conditions maps column names to match values for the structured query
// surface. A nil value matches IS NULL; a slice value matches IN (...);
// anything else matches equality. The guard always ANDs its own
// tenant_id predicate on top.
type Conditions = map[string]any

// SelectOptions tunes a structured Select beyond plain conditions.
type SelectOptions struct {
	Columns []string // defaults to *
	Joins   []string // raw JOIN clauses, e.g. "JOIN vehicles v ON v.vehicle_id = c.vehicle_id"
	OrderBy string
	GroupBy string
	Having  string
	Limit   int
	Offset  int
}

// TenantGuard is the tenant-scoped storage transport every caller uses.
// An instance is bound to exactly one tenant for its whole lifetime:
//
//   - structured reads and writes always carry a tenant_id predicate;
//   - Insert stamps the bound tenant id over whatever the caller supplied;
//   - Update strips tenant_id from the payload so ownership cannot be
//     reassigned;
//   - raw SQL against tenant-owned tables is refused unless it carries a
//     recognizable tenant predicate (strict mode).
//
// Update and Delete return affected-row counts; callers treat 0 as "not
// found for this tenant", not as a distinct error.
type TenantGuard interface {
	// TenantID returns the tenant the guard is bound to.
	TenantID() int64

	Select(ctx context.Context, table string, conds Conditions, opts *SelectOptions) ([]Row, error)
	// SelectOne returns the first matching row, or apperrors.ErrNotFound.
	SelectOne(ctx context.Context, table string, conds Conditions, opts *SelectOptions) (Row, error)
	Count(ctx context.Context, table string, conds Conditions) (int64, error)

	// Insert returns the generated identifier of the new row.
	Insert(ctx context.Context, table string, data map[string]any) (int64, error)
	Update(ctx context.Context, table string, data map[string]any, conds Conditions) (int64, error)
	Delete(ctx context.Context, table string, conds Conditions) (int64, error)

	// Query is the raw read escape hatch for SQL too complex for the
	// structured surface. It is strict-mode checked.
	Query(ctx context.Context, sqlText string, params ...any) ([]Row, error)
	// ExecuteRaw is the raw write escape hatch, strict-mode checked unless
	// skipTenantCheck is set for statements over tables known not to be
	// tenant-owned (exchange rates, global settings).
	ExecuteRaw(ctx context.Context, sqlText string, params []any, skipTenantCheck bool) (int64, error)

	// Transaction runs fn inside one database transaction on a single
	// borrowed connection. fn receives a guard bound to the same tenant and
	// that connection. Commit on nil return, rollback on error; the
	// connection is released on every exit path.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx TenantGuard) error) error
}
