package services

import "context"

// SecurityAuditor receives security-relevant events from the data-access
// layer. Recording must never block or fail the originating request;
// outbound delivery (webhooks, analytics) is strictly best-effort.
type SecurityAuditor interface {
	// RecordStrictModeViolation is called before a StrictModeViolation
	// error propagates to the caller. sqlText is already truncated to an
	// audit-safe length.
	RecordStrictModeViolation(ctx context.Context, tenantID int64, sqlText string)
}
