package models

import "time"

// AuditLog is the API-facing shape of one audit trail entry.
type AuditLog struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	UserID       string         `json:"user_id,omitempty"`
	ActionType   string         `json:"action_type"`
	ActionResult string         `json:"action_result"`
	Details      map[string]any `json:"details,omitempty"`
}
