package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	portssvc "github.com/dealerledger/dealer_ledger_app/internal/core/ports/services"
	"github.com/dealerledger/dealer_ledger_app/internal/utils"
	"github.com/google/uuid"
)

const webhookTimeout = 5 * time.Second

// SecurityAuditService records strict-mode violations. Every event is
// written to the structured log; when webhook URLs are configured the event
// is additionally forwarded to each of them fire-and-forget: no retries, no
// acknowledgement, and never any blocking of the originating request. An
// optional posthog capture rides the same best-effort policy.
type SecurityAuditService struct {
	logger      *slog.Logger
	webhookURLs []string
	httpClient  *http.Client
	posthog     *utils.PosthogClientWrapper
}

// NewSecurityAuditService creates a SecurityAuditService. webhookURLs and
// posthog may be empty/nil; the log sink always works.
func NewSecurityAuditService(logger *slog.Logger, webhookURLs []string, posthog *utils.PosthogClientWrapper) *SecurityAuditService {
	if logger == nil {
		logger = slog.Default()
	}
	if posthog == nil {
		posthog = &utils.PosthogClientWrapper{}
	}
	return &SecurityAuditService{
		logger:      logger,
		webhookURLs: webhookURLs,
		httpClient:  &http.Client{Timeout: webhookTimeout},
		posthog:     posthog,
	}
}

type securityEvent struct {
	EventID   string `json:"eventId"`
	Kind      string `json:"kind"`
	Timestamp string `json:"timestamp"`
	TenantID  int64  `json:"tenantId"`
	SQLText   string `json:"truncatedSqlText"`
}

// RecordStrictModeViolation implements ports/services.SecurityAuditor.
func (s *SecurityAuditService) RecordStrictModeViolation(ctx context.Context, tenantID int64, sqlText string) {
	event := securityEvent{
		EventID:   uuid.NewString(),
		Kind:      "strict_mode_violation",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TenantID:  tenantID,
		SQLText:   sqlText,
	}

	s.logger.Error("strict mode violation: raw query without tenant predicate",
		slog.String("event_id", event.EventID),
		slog.Int64("tenant_id", tenantID),
		slog.String("sql", sqlText),
	)

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to encode security event", slog.String("error", err.Error()))
		return
	}
	for _, url := range s.webhookURLs {
		// Detached from the request context deliberately: delivery must
		// outlive an aborting request and must never delay it.
		go s.deliver(url, payload, event.EventID)
	}

	s.posthog.Enqueue(strconv.FormatInt(tenantID, 10), "strict_mode_violation", map[string]any{
		"event_id": event.EventID,
		"sql":      sqlText,
	})
}

func (s *SecurityAuditService) deliver(url string, payload []byte, eventID string) {
	resp, err := s.httpClient.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		s.logger.Warn("security webhook delivery failed",
			slog.String("event_id", eventID),
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		s.logger.Warn("security webhook rejected event",
			slog.String("event_id", eventID),
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
		)
	}
}

var _ portssvc.SecurityAuditor = (*SecurityAuditService)(nil)
