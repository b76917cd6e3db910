package ydb

import (
	"time"
)

// UploadState tracks the lifecycle of one file transfer. There is no
// rejected or expired state: a record that is never promoted stays started.
type UploadState string

const (
	UploadStateStarted  UploadState = "started"
	UploadStateFinished UploadState = "finished"
)

// Upload represents one intended file upload. The staging key encodes the
// upload id and creation time; the durable key is derived from it by prefix
// substitution, never recomputed from current time.
type Upload struct {
	UploadID     string      `db:"upload_id"`
	OwnerID      string      `db:"owner_id"`
	ContentType  string      `db:"content_type"`
	OriginalName string      `db:"original_name"`
	StagingKey   string      `db:"staging_key"`
	State        UploadState `db:"state"`
	CreatedAt    time.Time   `db:"created_at"`
}

// User represents a marketplace account (freelancer, client or admin).
type User struct {
	UserID                string     `db:"user_id"`
	Email                 string     `db:"email"`
	PasswordHash          string     `db:"password_hash"`
	FullName              string     `db:"full_name"`
	Role                  string     `db:"role"`
	EmailVerified         bool       `db:"email_verified"`
	VerificationCode      *string    `db:"verification_code"`
	VerificationExpiresAt *time.Time `db:"verification_expires_at"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
	IsActive              bool       `db:"is_active"`
}

// PortfolioItem is a published work sample on a freelancer profile. Image
// keys reference promoted (durable) upload objects; the HTML content may
// embed their public URLs.
type PortfolioItem struct {
	ItemID      string    `db:"item_id"`
	OwnerID     string    `db:"owner_id"`
	Title       string    `db:"title"`
	ContentHTML string    `db:"content_html"`
	ImageKeys   []string  `db:"image_keys"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// AuditLog records one user-visible action for the admin trail.
type AuditLog struct {
	ID           string    `db:"id"`
	Timestamp    time.Time `db:"timestamp"`
	UserID       *string   `db:"user_id"`
	ActionType   string    `db:"action_type"`
	ActionResult string    `db:"action_result"`
	DetailsJSON  string    `db:"details_json"`
}

// AuditLogFilter narrows audit log reads.
type AuditLogFilter struct {
	UserID     string
	ActionType string
	Result     string
	From       *time.Time
	To         *time.Time
	Limit      int
}
