package pgsql

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
)

// SQL text assembly for the guard's structured surface. These helpers are
// pure: they return the statement and its ordered parameter list, with the
// tenant predicate always injected first. Condition and data maps are walked
// in sorted key order so generated SQL is deterministic.

// buildWhere renders the tenant predicate plus caller conditions.
// tenantColumn is table-qualified when the query involves joins so the
// predicate cannot accidentally bind to a joined table's column.
func buildWhere(tenantColumn string, tenantID int64, conds portsrepo.Conditions, args []any) (string, []any) {
	args = append(args, tenantID)
	clauses := []string{fmt.Sprintf("%s = $%d", tenantColumn, len(args))}

	for _, key := range sortedKeys(conds) {
		value := conds[key]
		switch {
		case value == nil:
			clauses = append(clauses, key+" IS NULL")
		case isSlice(value):
			args = append(args, value)
			clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", key, len(args)))
		default:
			args = append(args, value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", key, len(args)))
		}
	}
	return strings.Join(clauses, " AND "), args
}

func buildSelectSQL(table string, tenantID int64, conds portsrepo.Conditions, opts *portsrepo.SelectOptions) (string, []any) {
	if opts == nil {
		opts = &portsrepo.SelectOptions{}
	}

	columns := "*"
	if len(opts.Columns) > 0 {
		columns = strings.Join(opts.Columns, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", columns, table)
	for _, join := range opts.Joins {
		sb.WriteString(" ")
		sb.WriteString(join)
	}

	where, args := buildWhere(table+".tenant_id", tenantID, conds, nil)
	sb.WriteString(" WHERE ")
	sb.WriteString(where)

	if opts.GroupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(opts.GroupBy)
	}
	if opts.Having != "" {
		sb.WriteString(" HAVING ")
		sb.WriteString(opts.Having)
	}
	if opts.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(opts.OrderBy)
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", opts.Offset)
	}
	return sb.String(), args
}

func buildCountSQL(table string, tenantID int64, conds portsrepo.Conditions) (string, []any) {
	where, args := buildWhere(table+".tenant_id", tenantID, conds, nil)
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, where), args
}

// buildInsertSQL stamps the bound tenant id over whatever the caller put in
// data, so tenant ownership cannot be spoofed on write. The statement
// returns the generated id.
func buildInsertSQL(table string, tenantID int64, data map[string]any) (string, []any) {
	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["tenant_id"] = tenantID

	keys := sortedKeys(payload)
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, key := range keys {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = payload[key]
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(keys, ", "), strings.Join(placeholders, ", "))
	return sql, args
}

// buildUpdateSQL strips tenant_id from the payload (ownership cannot be
// reassigned through a generic update) and scopes the statement to the
// bound tenant.
func buildUpdateSQL(table string, tenantID int64, data map[string]any, conds portsrepo.Conditions) (string, []any) {
	payload := make(map[string]any, len(data))
	for k, v := range data {
		if k == "tenant_id" {
			continue
		}
		payload[k] = v
	}

	keys := sortedKeys(payload)
	assignments := make([]string, len(keys))
	args := make([]any, 0, len(keys)+len(conds)+1)
	for i, key := range keys {
		args = append(args, payload[key])
		assignments[i] = fmt.Sprintf("%s = $%d", key, len(args))
	}

	where, args := buildWhere("tenant_id", tenantID, conds, args)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(assignments, ", "), where)
	return sql, args
}

func buildDeleteSQL(table string, tenantID int64, conds portsrepo.Conditions) (string, []any) {
	where, args := buildWhere("tenant_id", tenantID, conds, nil)
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, where), args
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isSlice(v any) bool {
	if v == nil {
		return false
	}
	kind := reflect.TypeOf(v).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}
