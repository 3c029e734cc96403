package pgsql

import (
	"context"
	"fmt"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/dealerledger/dealer_ledger_app/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
)

// TenantGuard is the pgx implementation of the tenant-scoped repository.
// One instance is bound to one tenant for its whole lifetime and shares
// nothing mutable beyond the pool handle it was given.
type TenantGuard struct {
	db      DBTX
	tenant  domain.TenantContext
	auditor portssvc.SecurityAuditor
}

// NewTenantGuard binds a guard to one tenant over an explicit database
// handle (pool or transaction). It fails fast with
// apperrors.ErrInvalidTenant on a zero-value or otherwise invalid tenant
// context; there is no silent default tenant.
func NewTenantGuard(db DBTX, tenant domain.TenantContext, auditor portssvc.SecurityAuditor) (*TenantGuard, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: nil database handle", apperrors.ErrValidation)
	}
	if tenant.TenantID() <= 0 {
		return nil, fmt.Errorf("%w: guard requires a bound tenant", apperrors.ErrInvalidTenant)
	}
	return &TenantGuard{db: db, tenant: tenant, auditor: auditor}, nil
}

// TenantID returns the tenant the guard is bound to.
func (g *TenantGuard) TenantID() int64 {
	return g.tenant.TenantID()
}

// Select runs a structured query with the tenant predicate ANDed onto the
// caller's conditions.
func (g *TenantGuard) Select(ctx context.Context, table string, conds portsrepo.Conditions, opts *portsrepo.SelectOptions) ([]portsrepo.Row, error) {
	sqlText, args := buildSelectSQL(table, g.TenantID(), conds, opts)
	rows, err := g.db.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting from %s: %w", table, err)
	}
	return collectRows(rows)
}

// SelectOne returns the first matching row or apperrors.ErrNotFound.
func (g *TenantGuard) SelectOne(ctx context.Context, table string, conds portsrepo.Conditions, opts *portsrepo.SelectOptions) (portsrepo.Row, error) {
	limited := portsrepo.SelectOptions{}
	if opts != nil {
		limited = *opts
	}
	limited.Limit = 1
	result, err := g.Select(ctx, table, conds, &limited)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return result[0], nil
}

// Count returns the number of matching rows for this tenant.
func (g *TenantGuard) Count(ctx context.Context, table string, conds portsrepo.Conditions) (int64, error) {
	sqlText, args := buildCountSQL(table, g.TenantID(), conds)
	var count int64
	if err := g.db.QueryRow(ctx, sqlText, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting %s: %w", table, err)
	}
	return count, nil
}

// Insert writes a row stamped with the bound tenant id, overriding any
// tenant_id the caller supplied, and returns the generated identifier.
func (g *TenantGuard) Insert(ctx context.Context, table string, data map[string]any) (int64, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: insert payload is empty", apperrors.ErrValidation)
	}
	sqlText, args := buildInsertSQL(table, g.TenantID(), data)
	var id int64
	if err := g.db.QueryRow(ctx, sqlText, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting into %s: %w", table, err)
	}
	return id, nil
}

// Update rewrites matching rows of this tenant and returns the affected-row
// count; 0 means the row does not exist for this tenant. A tenant_id field
// in data is stripped.
func (g *TenantGuard) Update(ctx context.Context, table string, data map[string]any, conds portsrepo.Conditions) (int64, error) {
	stripped := 0
	if _, ok := data["tenant_id"]; ok {
		stripped = 1
	}
	if len(data)-stripped == 0 {
		return 0, fmt.Errorf("%w: update payload is empty", apperrors.ErrValidation)
	}
	sqlText, args := buildUpdateSQL(table, g.TenantID(), data, conds)
	tag, err := g.db.Exec(ctx, sqlText, args...)
	if err != nil {
		return 0, fmt.Errorf("error updating %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes matching rows of this tenant and returns the affected-row
// count.
func (g *TenantGuard) Delete(ctx context.Context, table string, conds portsrepo.Conditions) (int64, error) {
	sqlText, args := buildDeleteSQL(table, g.TenantID(), conds)
	tag, err := g.db.Exec(ctx, sqlText, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting from %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// Query is the raw read escape hatch, strict-mode checked.
func (g *TenantGuard) Query(ctx context.Context, sqlText string, params ...any) ([]portsrepo.Row, error) {
	if err := g.checkStrictMode(ctx, sqlText, params); err != nil {
		return nil, err
	}
	rows, err := g.db.Query(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("error running raw query: %w", err)
	}
	return collectRows(rows)
}

// ExecuteRaw is the raw write escape hatch. skipTenantCheck opts out of the
// strict-mode check for statements over tables known not to be tenant-owned
// (exchange rates, global settings).
func (g *TenantGuard) ExecuteRaw(ctx context.Context, sqlText string, params []any, skipTenantCheck bool) (int64, error) {
	if !skipTenantCheck {
		if err := g.checkStrictMode(ctx, sqlText, params); err != nil {
			return 0, err
		}
	}
	tag, err := g.db.Exec(ctx, sqlText, params...)
	if err != nil {
		return 0, fmt.Errorf("error running raw statement: %w", err)
	}
	return tag.RowsAffected(), nil
}

// checkStrictMode rejects raw SQL that touches a tenant-owned table without
// a recognizable tenant predicate. The violation is reported to the audit
// sink before the error propagates; it is never downgraded to an empty
// result, because silently returning nothing could mask a caller bug.
func (g *TenantGuard) checkStrictMode(ctx context.Context, sqlText string, params []any) error {
	if !referencesTenantOwnedTable(sqlText) {
		return nil
	}
	if hasTenantPredicate(sqlText, g.TenantID(), params) {
		return nil
	}
	truncated := truncateForAudit(sqlText)
	if g.auditor != nil {
		g.auditor.RecordStrictModeViolation(ctx, g.TenantID(), truncated)
	}
	return &apperrors.StrictModeViolationError{TenantID: g.TenantID(), SQL: truncated}
}

// Transaction borrows one connection, begins a transaction, and runs fn with
// a guard bound to the same tenant over that transaction. Commit on nil
// return, rollback on error or panic; pgx releases the connection on
// Commit/Rollback, so no exit path leaks it. Called on a guard that is
// already inside a transaction, it nests via a savepoint.
func (g *TenantGuard) Transaction(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TenantGuard) error) error {
	beginner, ok := g.db.(txBeginner)
	if !ok {
		return fmt.Errorf("%w: database handle cannot begin transactions", apperrors.ErrValidation)
	}
	tx, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	// Covers error returns and panics; after a successful commit this is a
	// no-op that reports ErrTxClosed.
	defer func() { _ = tx.Rollback(ctx) }()

	txGuard := &TenantGuard{db: tx, tenant: g.tenant, auditor: g.auditor}
	if err := fn(ctx, txGuard); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// collectRows drains a pgx result set into generic column-keyed rows.
func collectRows(rows pgx.Rows) ([]portsrepo.Row, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result []portsrepo.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("error reading row values: %w", err)
		}
		row := make(portsrepo.Row, len(fields))
		for i, field := range fields {
			row[field.Name] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// Compile-time check that the guard satisfies its port.
var _ portsrepo.TenantGuard = (*TenantGuard)(nil)
