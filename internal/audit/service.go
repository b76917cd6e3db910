package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/makerloft/craftfolio-backend/internal/models"
	"github.com/makerloft/craftfolio-backend/internal/ydb"
)

const (
	ActionResultSuccess = "success"
	ActionResultFailure = "failure"
)

// Upload lifecycle action types recorded by the files service.
const (
	ActionUploadIntent    = "upload.intent"
	ActionUploadPromote   = "upload.promote"
	ActionUploadDuplicate = "upload.duplicate"
	ActionUploadDelete    = "upload.delete"
)

// Service coordinates audit logging and retrieval. It applies consistent
// defaults and shields callers from storage specifics.
type Service struct {
	db  ydb.Database
	log *slog.Logger
}

func NewService(db ydb.Database, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, log: log}
}

// Record captures runtime context of a user action.
type Record struct {
	ID           string
	Timestamp    time.Time
	UserID       *string
	ActionType   string
	ActionResult string
	Details      map[string]any
}

// Filter describes query options for reading audit events.
type Filter struct {
	UserID     string
	ActionType string
	Result     string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// LogAction stores an audit record synchronously.
func (s *Service) LogAction(ctx context.Context, record Record) error {
	if record.ActionType == "" {
		return errors.New("action_type is required")
	}
	if record.ActionResult == "" {
		record.ActionResult = ActionResultSuccess
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	detailsJSON := "{}"
	if len(record.Details) > 0 {
		data, err := json.Marshal(record.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
		detailsJSON = string(data)
	}

	entry := &ydb.AuditLog{
		ID:           record.ID,
		Timestamp:    record.Timestamp,
		UserID:       record.UserID,
		ActionType:   record.ActionType,
		ActionResult: record.ActionResult,
		DetailsJSON:  detailsJSON,
	}

	if err := s.db.CreateAuditLog(ctx, entry); err != nil {
		s.log.Error("failed to write audit log", "error", err, "action", record.ActionType)
		return err
	}
	return nil
}

// ListAuditLogs fetches stored events matching filter.
func (s *Service) ListAuditLogs(ctx context.Context, filter Filter) ([]*models.AuditLog, error) {
	entries, err := s.db.ListAuditLogs(ctx, &ydb.AuditLogFilter{
		UserID:     filter.UserID,
		ActionType: filter.ActionType,
		Result:     filter.Result,
		From:       filter.From,
		To:         filter.To,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, err
	}

	result := make([]*models.AuditLog, 0, len(entries))
	for _, entry := range entries {
		var details map[string]any
		if entry.DetailsJSON != "" {
			if err := json.Unmarshal([]byte(entry.DetailsJSON), &details); err != nil {
				s.log.Warn("failed to unmarshal audit details", "error", err, "entry_id", entry.ID)
			}
		}

		modelEntry := &models.AuditLog{
			ID:           entry.ID,
			Timestamp:    entry.Timestamp,
			ActionType:   entry.ActionType,
			ActionResult: entry.ActionResult,
			Details:      details,
		}
		if entry.UserID != nil {
			modelEntry.UserID = *entry.UserID
		}
		result = append(result, modelEntry)
	}

	return result, nil
}
