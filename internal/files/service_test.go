package files

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/makerloft/craftfolio-backend/internal/config"
	"github.com/makerloft/craftfolio-backend/internal/storage"
	storagemocks "github.com/makerloft/craftfolio-backend/internal/storage/mocks"
	"github.com/makerloft/craftfolio-backend/internal/ydb"
	ydbmocks "github.com/makerloft/craftfolio-backend/internal/ydb/mocks"
)

func setupFilesService() (*Service, *ydbmocks.Database, *storagemocks.Provider) {
	mockDB := new(ydbmocks.Database)
	mockStorage := new(storagemocks.Provider)

	cfg := &config.Config{
		UserDataBucket:       "craftfolio-userdata",
		StagingPrefix:        "mayfly",
		DurablePrefix:        "tortoise",
		PresignExpirySeconds: 14400,
		ImageVariants:        []string{"webp", "thumb", "150x150", "600x600", "1200x1200"},
		PublicBaseURL:        "https://cdn.craftfolio.app",
		// Unroutable address so derivative triggers fail fast in tests.
		ImageGatewayBaseURL: "http://127.0.0.1:0/",
	}

	return NewService(mockDB, mockStorage, nil, cfg), mockDB, mockStorage
}

func startedUpload(id, contentType string, createdAt time.Time) *ydb.Upload {
	return &ydb.Upload{
		UploadID:    id,
		OwnerID:     "owner-1",
		ContentType: contentType,
		StagingKey:  fmt.Sprintf("mayfly/%s_%d", id, createdAt.UnixMilli()),
		State:       ydb.UploadStateStarted,
		CreatedAt:   createdAt,
	}
}

func TestService_CreateUploadIntent_Success(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()
	ctx := context.Background()

	mockStorage.On("PresignPutObject", ctx, "craftfolio-userdata", mock.AnythingOfType("string"), "image/png", 4*time.Hour).
		Return("https://signed.example/put", nil)
	mockDB.On("CreateUpload", ctx, mock.MatchedBy(func(u *ydb.Upload) bool {
		return u.State == ydb.UploadStateStarted && u.ContentType == "image/png" && u.OwnerID == "owner-1"
	})).Return(nil)

	intent, err := service.CreateUploadIntent(ctx, "owner-1", "image/png", "photo.png")

	assert.NoError(t, err)
	assert.Equal(t, "https://signed.example/put", intent.UploadURL)
	assert.NotEmpty(t, intent.ID)
	assert.True(t, strings.HasPrefix(intent.Key, "mayfly/"+intent.ID+"_"))

	mockDB.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestService_CreateUploadIntent_PresignFailureLeavesNoRecord(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()
	ctx := context.Background()

	mockStorage.On("PresignPutObject", ctx, "craftfolio-userdata", mock.AnythingOfType("string"), "image/png", mock.Anything).
		Return("", errors.New("s3 unavailable"))

	intent, err := service.CreateUploadIntent(ctx, "owner-1", "image/png", "photo.png")

	assert.Error(t, err)
	assert.Nil(t, intent)
	mockDB.AssertNotCalled(t, "CreateUpload", mock.Anything, mock.Anything)
}

func TestService_CreateUploadIntent_RejectsUnsafeContentType(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()

	intent, err := service.CreateUploadIntent(context.Background(), "owner-1", "application/x-msdownload", "evil.exe")

	assert.Error(t, err)
	assert.Nil(t, intent)
	mockStorage.AssertNotCalled(t, "PresignPutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockDB.AssertNotCalled(t, "CreateUpload", mock.Anything, mock.Anything)
}

func TestService_CreateUploadIntents_RejectsNonPositiveCount(t *testing.T) {
	service, mockDB, _ := setupFilesService()

	for _, count := range []int{0, -3} {
		intents, err := service.CreateUploadIntents(context.Background(), "owner-1", "image/png", nil, count)
		assert.Error(t, err)
		assert.Nil(t, intents)
	}
	mockDB.AssertNotCalled(t, "CreateUploads", mock.Anything, mock.Anything)
}

func TestService_CreateUploadIntents_ReservesBatch(t *testing.T) {
	service, mockDB, _ := setupFilesService()
	ctx := context.Background()

	mockDB.On("CreateUploads", ctx, mock.MatchedBy(func(records []*ydb.Upload) bool {
		return len(records) == 3
	})).Return(nil)

	intents, err := service.CreateUploadIntents(ctx, "owner-1", "image/jpeg", []string{"a.jpg", "b.jpg"}, 3)

	assert.NoError(t, err)
	assert.Len(t, intents, 3)
	for _, intent := range intents {
		assert.Empty(t, intent.UploadURL)
		assert.NotEmpty(t, intent.ID)
	}
	mockDB.AssertExpectations(t)
}

func TestService_Promote_PreservesInputOrder(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()
	ctx := context.Background()
	now := time.Now()

	ids := []string{"id-a", "id-b", "id-c"}
	// The store returns records in a different order than requested.
	records := []*ydb.Upload{
		startedUpload("id-c", "application/pdf", now),
		startedUpload("id-a", "application/pdf", now),
		startedUpload("id-b", "application/pdf", now),
	}

	mockDB.On("GetUploadsByIDs", ctx, ids, ydb.UploadStateStarted).Return(records, nil)
	mockStorage.On("CopyMany", ctx, "craftfolio-userdata", mock.AnythingOfType("[]storage.Transfer")).Return(nil)
	mockDB.On("MarkUploadsFinished", ctx, ids).Return(nil)

	result, err := service.Promote(ctx, ids, nil)

	assert.NoError(t, err)
	assert.Len(t, result, 3)
	for i, id := range ids {
		assert.True(t, strings.HasPrefix(result[i].Key, "tortoise/"+id+"_"))
	}

	mockDB.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestService_Promote_CountMismatchRefusesWholeBatch(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()
	ctx := context.Background()

	ids := []string{"id-a", "id-b"}
	// Only one record is still in the started state.
	mockDB.On("GetUploadsByIDs", ctx, ids, ydb.UploadStateStarted).
		Return([]*ydb.Upload{startedUpload("id-a", "image/png", time.Now())}, nil)

	result, err := service.Promote(ctx, ids, nil)

	assert.Error(t, err)
	assert.Nil(t, result)
	mockStorage.AssertNotCalled(t, "CopyMany", mock.Anything, mock.Anything, mock.Anything)
	mockDB.AssertNotCalled(t, "MarkUploadsFinished", mock.Anything, mock.Anything)
}

func TestService_Promote_SecondPromotionFails(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()
	ctx := context.Background()

	// After a successful promotion the records are finished, so the started
	// fetch comes back empty.
	mockDB.On("GetUploadsByIDs", ctx, []string{"id-a"}, ydb.UploadStateStarted).
		Return([]*ydb.Upload{}, nil)

	result, err := service.Promote(ctx, []string{"id-a"}, nil)

	assert.Error(t, err)
	assert.Nil(t, result)
	mockStorage.AssertNotCalled(t, "CopyMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Promote_DisallowedTypeRefusesWholeBatch(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()
	ctx := context.Background()
	now := time.Now()

	ids := []string{"id-a", "id-b"}
	records := []*ydb.Upload{
		startedUpload("id-a", "image/png", now),
		startedUpload("id-b", "application/pdf", now),
	}
	mockDB.On("GetUploadsByIDs", ctx, ids, ydb.UploadStateStarted).Return(records, nil)

	result, err := service.Promote(ctx, ids, []string{"image"})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "application/pdf")
	mockStorage.AssertNotCalled(t, "CopyMany", mock.Anything, mock.Anything, mock.Anything)
	mockDB.AssertNotCalled(t, "MarkUploadsFinished", mock.Anything, mock.Anything)
}

func TestService_Promote_MissingSourceKeepsRecordsStarted(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()
	ctx := context.Background()

	ids := []string{"id-a"}
	mockDB.On("GetUploadsByIDs", ctx, ids, ydb.UploadStateStarted).
		Return([]*ydb.Upload{startedUpload("id-a", "application/pdf", time.Now())}, nil)
	mockStorage.On("CopyMany", ctx, "craftfolio-userdata", mock.Anything).
		Return(fmt.Errorf("%w: mayfly/id-a_1", storage.ErrSourceNotFound))

	result, err := service.Promote(ctx, ids, nil)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, storage.ErrSourceNotFound))
	mockDB.AssertNotCalled(t, "MarkUploadsFinished", mock.Anything, mock.Anything)
}

func TestService_Promote_EmptyBatchIsNoOp(t *testing.T) {
	service, mockDB, _ := setupFilesService()

	result, err := service.Promote(context.Background(), nil, nil)

	assert.NoError(t, err)
	assert.Nil(t, result)
	mockDB.AssertNotCalled(t, "GetUploadsByIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CopyFilesByKey_MintsFreshIdentities(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()
	ctx := context.Background()
	createdAt := time.UnixMilli(1717171717000)

	oldKey := "tortoise/id-a_1717171717000"
	finished := &ydb.Upload{
		UploadID:    "id-a",
		OwnerID:     "owner-1",
		ContentType: "image/png",
		StagingKey:  "mayfly/id-a_1717171717000",
		State:       ydb.UploadStateFinished,
		CreatedAt:   createdAt,
	}

	mockDB.On("GetUploadsByIDs", ctx, []string{"id-a"}, ydb.UploadStateFinished).
		Return([]*ydb.Upload{finished}, nil)
	mockStorage.On("CopyMany", ctx, "craftfolio-userdata", mock.MatchedBy(func(transfers []storage.Transfer) bool {
		return len(transfers) == 1 && transfers[0].Source == oldKey &&
			strings.HasPrefix(transfers[0].Destination, "tortoise/")
	})).Return(nil)
	mockDB.On("CreateUploads", ctx, mock.MatchedBy(func(records []*ydb.Upload) bool {
		// The duplicate starts life like any fresh record.
		return len(records) == 1 && records[0].UploadID != "id-a" &&
			records[0].OwnerID == "owner-1" && records[0].ContentType == "image/png" &&
			records[0].State == ydb.UploadStateStarted
	})).Return(nil)

	keyMap, err := service.CopyFilesByKey(ctx, []string{oldKey})

	assert.NoError(t, err)
	assert.Len(t, keyMap, 1)
	newKey := keyMap[oldKey]
	assert.NotEqual(t, oldKey, newKey)
	assert.True(t, strings.HasPrefix(newKey, "tortoise/"))

	mockDB.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestService_CopyFilesByKey_AcceptsPublicURLs(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()
	ctx := context.Background()

	finished := &ydb.Upload{
		UploadID:    "id-a",
		ContentType: "image/png",
		StagingKey:  "mayfly/id-a_1717171717000",
		State:       ydb.UploadStateFinished,
		CreatedAt:   time.UnixMilli(1717171717000),
	}
	mockDB.On("GetUploadsByIDs", ctx, []string{"id-a"}, ydb.UploadStateFinished).
		Return([]*ydb.Upload{finished}, nil)
	mockStorage.On("CopyMany", ctx, "craftfolio-userdata", mock.Anything).Return(nil)
	mockDB.On("CreateUploads", ctx, mock.Anything).Return(nil)

	publicURL := "https://cdn.craftfolio.app/tortoise/id-a_1717171717000"
	keyMap, err := service.CopyFilesByKey(ctx, []string{publicURL})

	assert.NoError(t, err)
	// The map is keyed by the normalized bare key.
	assert.Contains(t, keyMap, "tortoise/id-a_1717171717000")
}

func TestService_CopyFilesByKey_DropsUnresolvableKeys(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()
	ctx := context.Background()

	// "no-folder" has no id encoding; "id-gone" has no finished record.
	mockDB.On("GetUploadsByIDs", ctx, []string{"id-gone"}, ydb.UploadStateFinished).
		Return([]*ydb.Upload{}, nil)

	keyMap, err := service.CopyFilesByKey(ctx, []string{"no-folder", "tortoise/id-gone_5"})

	assert.NoError(t, err)
	assert.Empty(t, keyMap)
	mockStorage.AssertNotCalled(t, "CopyMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_DeleteByKeys_EmptyIsNoOp(t *testing.T) {
	service, mockDB, _ := setupFilesService()

	err := service.DeleteByKeys(context.Background(), nil)

	assert.NoError(t, err)
	mockDB.AssertNotCalled(t, "DeleteUploadsByIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_DeleteByKeys_OnlyRetiresFinishedRecords(t *testing.T) {
	service, mockDB, _ := setupFilesService()
	ctx := context.Background()

	mockDB.On("DeleteUploadsByIDs", ctx, []string{"id-a", "id-b"}, ydb.UploadStateFinished).Return(nil)

	err := service.DeleteByKeys(ctx, []string{"tortoise/id-a_1", "tortoise/id-b_2"})

	assert.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestService_DeleteVariants_ExpandsRenditions(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()
	ctx := context.Background()

	var deleted []string
	mockStorage.On("DeleteMany", ctx, "craftfolio-userdata", mock.AnythingOfType("[]string")).
		Run(func(args mock.Arguments) {
			deleted = args.Get(2).([]string)
		}).Return(nil)
	mockDB.On("DeleteUploadsByIDs", ctx, []string{"id-a"}, ydb.UploadStateFinished).Return(nil)

	err := service.DeleteVariants(ctx, "tortoise/id-a_1")

	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"tortoise/id-a_1",
		"tortoise/id-a_1-webp.webp",
		"tortoise/id-a_1-thumb.webp",
		"tortoise/id-a_1-150x150.webp",
		"tortoise/id-a_1-600x600.webp",
		"tortoise/id-a_1-1200x1200.webp",
	}, deleted)

	mockDB.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestService_DeleteVariants_SkipsLegacyFlatKeys(t *testing.T) {
	service, mockDB, mockStorage := setupFilesService()

	err := service.DeleteVariants(context.Background(), "legacy-flat-key")

	assert.NoError(t, err)
	mockStorage.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything, mock.Anything)
	mockDB.AssertNotCalled(t, "DeleteUploadsByIDs", mock.Anything, mock.Anything, mock.Anything)
}
