package pgsql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/dealerledger/dealer_ledger_app/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes over the narrow DBTX surface ---

type capturedCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	calls   []capturedCall
	rows    *fakeRows
	rowScan []any
	execTag pgconn.CommandTag
	err     error

	tx *fakeTx
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, capturedCall{sql: sql, args: args})
	return f.execTag, f.err
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, capturedCall{sql: sql, args: args})
	if f.err != nil {
		return nil, f.err
	}
	if f.rows == nil {
		return &fakeRows{}, nil
	}
	return f.rows, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, capturedCall{sql: sql, args: args})
	return &fakeRow{values: f.rowScan, err: f.err}
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tx = &fakeTx{db: &fakeDB{execTag: f.execTag, rows: f.rows, rowScan: f.rowScan}}
	return f.tx, nil
}

func (f *fakeDB) lastCall(t *testing.T) capturedCall {
	t.Helper()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		if i >= len(r.values) {
			break
		}
		switch target := d.(type) {
		case *int64:
			*target = r.values[i].(int64)
		default:
			return fmt.Errorf("fakeRow: unsupported scan target %T", d)
		}
	}
	return nil
}

type fakeRows struct {
	fields []pgconn.FieldDescription
	data   [][]any
	pos    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}
func (r *fakeRows) Scan(dest ...any) error { return errors.New("not implemented") }
func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

// fakeTx implements pgx.Tx over a nested fakeDB.
type fakeTx struct {
	db         *fakeDB
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t.db.Begin(ctx) }
func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}
func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}
func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}
func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not implemented")
}
func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return t.db.Exec(ctx, sql, arguments...)
}
func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.db.Query(ctx, sql, args...)
}
func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.db.QueryRow(ctx, sql, args...)
}
func (t *fakeTx) Conn() *pgx.Conn { return nil }

type recordingAuditor struct {
	tenantIDs []int64
	sqls      []string
}

func (a *recordingAuditor) RecordStrictModeViolation(ctx context.Context, tenantID int64, sqlText string) {
	a.tenantIDs = append(a.tenantIDs, tenantID)
	a.sqls = append(a.sqls, sqlText)
}

func newTestGuard(t *testing.T, db DBTX, tenantID int64, auditor *recordingAuditor) *TenantGuard {
	t.Helper()
	tenant, err := domain.NewTenantContext(tenantID)
	require.NoError(t, err)
	var sink portssvc.SecurityAuditor
	if auditor != nil {
		sink = auditor
	}
	guard, err := NewTenantGuard(db, tenant, sink)
	require.NoError(t, err)
	return guard
}

// --- tests ---

func TestNewTenantGuard_RejectsUnboundTenant(t *testing.T) {
	_, err := NewTenantGuard(&fakeDB{}, domain.TenantContext{}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTenant)
}

func TestGuard_InsertStampsTenantID(t *testing.T) {
	db := &fakeDB{rowScan: []any{int64(7)}}
	guard := newTestGuard(t, db, 5, nil)

	id, err := guard.Insert(context.Background(), "vehicle_costs", map[string]any{
		"tenant_id": int64(999),
		"amount":    "10.00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	call := db.lastCall(t)
	assert.Contains(t, call.sql, "RETURNING id")
	assert.Contains(t, call.args, int64(5))
	assert.NotContains(t, call.args, int64(999))
}

func TestGuard_UpdateScopesAndStrips(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
	guard := newTestGuard(t, db, 5, nil)

	affected, err := guard.Update(context.Background(), "vehicle_costs",
		map[string]any{"cost_type": "repair", "tenant_id": int64(8)},
		portsrepo.Conditions{"id": int64(3)},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	call := db.lastCall(t)
	assert.Equal(t, "UPDATE vehicle_costs SET cost_type = $1 WHERE tenant_id = $2 AND id = $3", call.sql)
	assert.Equal(t, []any{"repair", int64(5), int64(3)}, call.args)
}

func TestGuard_UpdateWithOnlyTenantIDPayloadFails(t *testing.T) {
	guard := newTestGuard(t, &fakeDB{}, 5, nil)
	_, err := guard.Update(context.Background(), "vehicle_costs",
		map[string]any{"tenant_id": int64(8)}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestGuard_DeleteScopedToTenant(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("DELETE 0")}
	guard := newTestGuard(t, db, 5, nil)

	affected, err := guard.Delete(context.Background(), "vehicle_costs", portsrepo.Conditions{"id": int64(3)})
	require.NoError(t, err)
	// 0 affected means "not found for this tenant"; not an error here.
	assert.Equal(t, int64(0), affected)
	assert.Equal(t, []any{int64(5), int64(3)}, db.lastCall(t).args)
}

func TestGuard_SelectOneNotFound(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{}}
	guard := newTestGuard(t, db, 5, nil)

	_, err := guard.SelectOne(context.Background(), "vehicles", portsrepo.Conditions{"id": int64(1)}, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, db.lastCall(t).sql, "LIMIT 1")
}

func TestGuard_SelectReturnsRows(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{
		fields: []pgconn.FieldDescription{{Name: "id"}, {Name: "vin"}},
		data:   [][]any{{int64(1), "WVWZZZ"}, {int64(2), "JTDKB2"}},
	}}
	guard := newTestGuard(t, db, 5, nil)

	rows, err := guard.Select(context.Background(), "vehicles", nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, "JTDKB2", rows[1]["vin"])
}

func TestGuard_QueryStrictModeViolation(t *testing.T) {
	db := &fakeDB{}
	auditor := &recordingAuditor{}
	guard := newTestGuard(t, db, 5, auditor)

	_, err := guard.Query(context.Background(), "SELECT * FROM vehicle_costs WHERE id = $1", int64(9))
	assert.ErrorIs(t, err, apperrors.ErrStrictModeViolation)

	var violation *apperrors.StrictModeViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, int64(5), violation.TenantID)

	// Audit fires before the error propagates; the statement never runs.
	assert.Equal(t, []int64{5}, auditor.tenantIDs)
	assert.Empty(t, db.calls)
}

func TestGuard_QueryAllowedWithTenantToken(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{}}
	guard := newTestGuard(t, db, 5, &recordingAuditor{})

	_, err := guard.Query(context.Background(), "SELECT * FROM vehicle_costs WHERE tenant_id = $1", int64(5))
	require.NoError(t, err)
	assert.Len(t, db.calls, 1)
}

func TestGuard_QueryAllowedWithTenantIDParam(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{}}
	guard := newTestGuard(t, db, 5, &recordingAuditor{})

	_, err := guard.Query(context.Background(), "SELECT * FROM vehicle_costs WHERE x = $1", int64(5))
	require.NoError(t, err)
}

func TestGuard_ExecuteRawOptOut(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	auditor := &recordingAuditor{}
	guard := newTestGuard(t, db, 5, auditor)

	// Would violate strict mode, but the caller vouches the statement is
	// over non-tenant data.
	affected, err := guard.ExecuteRaw(context.Background(),
		"UPDATE vehicles SET vin = $1 WHERE id = $2", []any{"X", int64(1)}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Empty(t, auditor.tenantIDs)

	// Without the opt-out the same statement is rejected.
	_, err = guard.ExecuteRaw(context.Background(),
		"UPDATE vehicles SET vin = $1 WHERE id = $2", []any{"X", int64(1)}, false)
	assert.ErrorIs(t, err, apperrors.ErrStrictModeViolation)
	assert.Equal(t, []int64{5}, auditor.tenantIDs)
}

func TestGuard_TransactionCommitsOnSuccess(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
	guard := newTestGuard(t, db, 5, nil)

	err := guard.Transaction(context.Background(), func(ctx context.Context, tx portsrepo.TenantGuard) error {
		assert.Equal(t, int64(5), tx.TenantID())
		_, err := tx.Update(ctx, "vehicle_costs", map[string]any{"cost_type": "x"}, portsrepo.Conditions{"id": int64(1)})
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, db.tx)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
}

func TestGuard_TransactionRollsBackOnError(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
	guard := newTestGuard(t, db, 5, nil)

	boom := errors.New("boom")
	err := guard.Transaction(context.Background(), func(ctx context.Context, tx portsrepo.TenantGuard) error {
		// Writes before the failure are rolled back with the transaction.
		_, _ = tx.Update(ctx, "vehicle_costs", map[string]any{"cost_type": "x"}, nil)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, db.tx)
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
}

func TestGuard_TransactionRollsBackOnPanic(t *testing.T) {
	db := &fakeDB{}
	guard := newTestGuard(t, db, 5, nil)

	assert.Panics(t, func() {
		_ = guard.Transaction(context.Background(), func(ctx context.Context, tx portsrepo.TenantGuard) error {
			panic("callback exploded")
		})
	})
	require.NotNil(t, db.tx)
	assert.True(t, db.tx.rolledBack)
}
