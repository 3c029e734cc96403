package pgsql

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Strict mode refuses to run raw SQL against a tenant-owned table unless the
// statement carries a recognizable tenant predicate: either the literal
// tenant_id token in the SQL text or the bound tenant id among the
// parameters.
//
// Detection works on a closed enumeration of tenant-owned table identifiers
// matched as whole tokens, never as substrings of larger identifiers. It is
// a deliberately simple, auditable heuristic, not a SQL parser: obfuscated
// or aliased SQL can defeat it, which is a documented limitation. Call sites
// with statements over tables known not to be tenant-owned opt out
// explicitly instead of relying on the heuristic missing them.

// tenantOwnedTables is the closed set of tables whose rows belong to exactly
// one tenant. Extend it whenever a migration adds a tenant-owned table.
var tenantOwnedTables = map[string]struct{}{
	"tenants":         {},
	"tenant_settings": {},
	"vehicles":        {},
	"vehicle_costs":   {},
	"vehicle_sales":   {},
	"customers":       {},
	"invoices":        {},
	"installments":    {},
	"incomes":         {},
	"expenses":        {},
	"documents":       {},
}

// maxAuditSQLLen bounds the query text forwarded to the audit sink.
const maxAuditSQLLen = 200

// referencesTenantOwnedTable reports whether any whole token of the SQL text
// names a table from the closed tenant-owned set.
func referencesTenantOwnedTable(sqlText string) bool {
	for _, token := range sqlTokens(sqlText) {
		if _, ok := tenantOwnedTables[token]; ok {
			return true
		}
	}
	return false
}

// hasTenantPredicate reports whether the statement can be heuristically
// verified as tenant scoped: the tenant_id token appears in the text, or the
// bound tenant id value appears among the parameters.
func hasTenantPredicate(sqlText string, tenantID int64, params []any) bool {
	for _, token := range sqlTokens(sqlText) {
		if token == "tenant_id" {
			return true
		}
	}
	for _, p := range params {
		if paramMatchesTenantID(p, tenantID) {
			return true
		}
	}
	return false
}

func paramMatchesTenantID(param any, tenantID int64) bool {
	switch v := param.(type) {
	case int:
		return int64(v) == tenantID
	case int8:
		return int64(v) == tenantID
	case int16:
		return int64(v) == tenantID
	case int32:
		return int64(v) == tenantID
	case int64:
		return v == tenantID
	case uint:
		return uint64(v) == uint64(tenantID)
	case uint8:
		return uint64(v) == uint64(tenantID)
	case uint16:
		return uint64(v) == uint64(tenantID)
	case uint32:
		return uint64(v) == uint64(tenantID)
	case uint64:
		return v == uint64(tenantID)
	case string:
		return v == strconv.FormatInt(tenantID, 10)
	default:
		return false
	}
}

// sqlTokens splits lowercased SQL text into identifier-shaped tokens.
func sqlTokens(sqlText string) []string {
	return strings.FieldsFunc(strings.ToLower(sqlText), func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// truncateForAudit bounds the query text without cutting a rune in half, so
// SQL containing non-ASCII literals stays valid UTF-8 in audit payloads.
func truncateForAudit(sqlText string) string {
	if len(sqlText) <= maxAuditSQLLen {
		return sqlText
	}
	cut := maxAuditSQLLen
	for cut > 0 && !utf8.RuneStart(sqlText[cut]) {
		cut--
	}
	return sqlText[:cut]
}
