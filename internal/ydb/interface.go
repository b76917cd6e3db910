package ydb

import (
	"context"
)

// Database is the persistence contract for all services.
type Database interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error

	// Uploads
	CreateUpload(ctx context.Context, upload *Upload) error
	CreateUploads(ctx context.Context, uploads []*Upload) error
	// GetUploadsByIDs returns the uploads among ids that are in the given
	// state. Order of the result is not guaranteed.
	GetUploadsByIDs(ctx context.Context, ids []string, state UploadState) ([]*Upload, error)
	// MarkUploadsFinished flips every given upload from started to finished
	// in one bulk update.
	MarkUploadsFinished(ctx context.Context, ids []string) error
	// DeleteUploadsByIDs deletes the uploads among ids that are in the given
	// state; others are left untouched.
	DeleteUploadsByIDs(ctx context.Context, ids []string, state UploadState) error

	// Portfolio items
	CreatePortfolioItem(ctx context.Context, item *PortfolioItem) error
	GetPortfolioItem(ctx context.Context, itemID string) (*PortfolioItem, error)
	UpdatePortfolioItem(ctx context.Context, item *PortfolioItem) error
	DeletePortfolioItem(ctx context.Context, itemID string) error
	ListPortfolioItemsByOwner(ctx context.Context, ownerID string) ([]*PortfolioItem, error)

	// Audit
	CreateAuditLog(ctx context.Context, entry *AuditLog) error
	ListAuditLogs(ctx context.Context, filter *AuditLogFilter) ([]*AuditLog, error)

	Close() error
}
