package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/makerloft/craftfolio-backend/internal/ydb"
)

// Database is a testify mock of ydb.Database.
type Database struct {
	mock.Mock
}

func (m *Database) CreateUser(ctx context.Context, user *ydb.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *Database) GetUserByID(ctx context.Context, userID string) (*ydb.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ydb.User), args.Error(1)
}

func (m *Database) GetUserByEmail(ctx context.Context, email string) (*ydb.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ydb.User), args.Error(1)
}

func (m *Database) UpdateUser(ctx context.Context, user *ydb.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *Database) CreateUpload(ctx context.Context, upload *ydb.Upload) error {
	args := m.Called(ctx, upload)
	return args.Error(0)
}

func (m *Database) CreateUploads(ctx context.Context, uploads []*ydb.Upload) error {
	args := m.Called(ctx, uploads)
	return args.Error(0)
}

func (m *Database) GetUploadsByIDs(ctx context.Context, ids []string, state ydb.UploadState) ([]*ydb.Upload, error) {
	args := m.Called(ctx, ids, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ydb.Upload), args.Error(1)
}

func (m *Database) MarkUploadsFinished(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *Database) DeleteUploadsByIDs(ctx context.Context, ids []string, state ydb.UploadState) error {
	args := m.Called(ctx, ids, state)
	return args.Error(0)
}

func (m *Database) CreatePortfolioItem(ctx context.Context, item *ydb.PortfolioItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *Database) GetPortfolioItem(ctx context.Context, itemID string) (*ydb.PortfolioItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ydb.PortfolioItem), args.Error(1)
}

func (m *Database) UpdatePortfolioItem(ctx context.Context, item *ydb.PortfolioItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *Database) DeletePortfolioItem(ctx context.Context, itemID string) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *Database) ListPortfolioItemsByOwner(ctx context.Context, ownerID string) ([]*ydb.PortfolioItem, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ydb.PortfolioItem), args.Error(1)
}

func (m *Database) CreateAuditLog(ctx context.Context, entry *ydb.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *Database) ListAuditLogs(ctx context.Context, filter *ydb.AuditLogFilter) ([]*ydb.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ydb.AuditLog), args.Error(1)
}

func (m *Database) Close() error {
	args := m.Called()
	return args.Error(0)
}
