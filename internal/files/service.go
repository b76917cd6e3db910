package files

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/makerloft/craftfolio-backend/internal/audit"
	"github.com/makerloft/craftfolio-backend/internal/config"
	"github.com/makerloft/craftfolio-backend/internal/storage"
	"github.com/makerloft/craftfolio-backend/internal/validation"
	"github.com/makerloft/craftfolio-backend/internal/ydb"
)

// Service owns the upload lifecycle: intent creation, promotion from staging
// to durable storage, duplication and cleanup. It is the only component
// allowed to mutate an upload record's state.
type Service struct {
	db      ydb.Database
	storage storage.Provider
	audit   *audit.Service
	codec   *KeyCodec

	bucket         string
	publicBaseURL  string
	gatewayBaseURL string
	presignExpiry  time.Duration
	variants       []string

	httpClient *http.Client
}

func NewService(db ydb.Database, storageClient storage.Provider, auditService *audit.Service, cfg *config.Config) *Service {
	return &Service{
		db:             db,
		storage:        storageClient,
		audit:          auditService,
		codec:          NewKeyCodec(cfg.StagingPrefix, cfg.DurablePrefix),
		bucket:         cfg.UserDataBucket,
		publicBaseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		gatewayBaseURL: cfg.ImageGatewayBaseURL,
		presignExpiry:  time.Duration(cfg.PresignExpirySeconds) * time.Second,
		variants:       cfg.ImageVariants,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Codec exposes the key codec for callers that need to build public URLs.
func (s *Service) Codec() *KeyCodec {
	return s.codec
}

// UploadIntent is the reservation handed to a client before any bytes move.
type UploadIntent struct {
	UploadURL string `json:"upload_url,omitempty"`
	Key       string `json:"key"`
	ID        string `json:"id"`
}

// PromotedFile describes one promoted upload, positionally matched to the
// requested file ids.
type PromotedFile struct {
	Key          string `json:"key"`
	ContentType  string `json:"content_type"`
	OriginalName string `json:"original"`
}

// CreateUploadIntent reserves an upload: it creates a started record and
// returns a pre-signed write URL scoped to its staging key. The URL is
// generated before the record is saved so a presign failure leaves nothing
// behind. The object may never materialize if the client abandons the flow.
func (s *Service) CreateUploadIntent(ctx context.Context, ownerID, contentType, originalName string) (*UploadIntent, error) {
	if err := validation.ValidateSafeContentType(contentType, "content_type"); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	createdAt := time.Now()
	key := s.codec.StagingKey(id, createdAt)

	uploadURL, err := s.storage.PresignPutObject(ctx, s.bucket, key, contentType, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload url: %w", err)
	}

	record := &ydb.Upload{
		UploadID:     id,
		OwnerID:      ownerID,
		ContentType:  contentType,
		OriginalName: originalName,
		StagingKey:   key,
		State:        ydb.UploadStateStarted,
		CreatedAt:    createdAt,
	}
	if err := s.db.CreateUpload(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create upload record: %w", err)
	}

	s.logAudit(ctx, &ownerID, audit.ActionUploadIntent, map[string]any{"upload_id": id})

	return &UploadIntent{UploadURL: uploadURL, Key: key, ID: id}, nil
}

// CreateUploadIntents reserves count uploads in one batch without presigning
// individual URLs; it serves flows that upload through the backend instead of
// the browser.
func (s *Service) CreateUploadIntents(ctx context.Context, ownerID, contentType string, originalNames []string, count int) ([]*UploadIntent, error) {
	if count <= 0 {
		return nil, validation.ValidationError{Field: "count", Message: "must be a positive number"}
	}
	if err := validation.ValidateSafeContentType(contentType, "content_type"); err != nil {
		return nil, err
	}

	records := make([]*ydb.Upload, count)
	intents := make([]*UploadIntent, count)
	for i := 0; i < count; i++ {
		id := uuid.New().String()
		createdAt := time.Now()
		key := s.codec.StagingKey(id, createdAt)

		originalName := ""
		if i < len(originalNames) {
			originalName = originalNames[i]
		}

		records[i] = &ydb.Upload{
			UploadID:     id,
			OwnerID:      ownerID,
			ContentType:  contentType,
			OriginalName: originalName,
			StagingKey:   key,
			State:        ydb.UploadStateStarted,
			CreatedAt:    createdAt,
		}
		intents[i] = &UploadIntent{Key: key, ID: id}
	}

	if err := s.db.CreateUploads(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to create upload records: %w", err)
	}

	return intents, nil
}

// Promote moves a batch of started uploads from staging to durable storage
// and flips their state to finished. The whole batch is validated before any
// effect: unknown ids, already-finished ids and disallowed content types all
// refuse the entire call with no state change. The result array preserves the
// order of fileIDs; callers zip it positionally against per-index data.
func (s *Service) Promote(ctx context.Context, fileIDs []string, allowedTypes []string) ([]PromotedFile, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}

	records, err := s.db.GetUploadsByIDs(ctx, fileIDs, ydb.UploadStateStarted)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upload records: %w", err)
	}
	if len(records) != len(fileIDs) {
		err := fmt.Errorf("upload batch mismatch: requested %d, eligible %d", len(fileIDs), len(records))
		s.logAuditFailure(ctx, audit.ActionUploadPromote, err)
		return nil, err
	}

	for _, record := range records {
		if !validation.MatchesAllowedTypes(record.ContentType, allowedTypes) {
			err := fmt.Errorf("content type %q not allowed for upload %s", record.ContentType, record.UploadID)
			s.logAuditFailure(ctx, audit.ActionUploadPromote, err)
			return nil, err
		}
	}

	// The store has no multi-object transaction; the precheck-copy-flip
	// ordering is what approximates atomicity here. CopyMany verifies every
	// source exists before any copy, so a never-uploaded object fails the
	// batch while all records are still started.
	byID := make(map[string]*ydb.Upload, len(records))
	transfers := make([]storage.Transfer, len(records))
	for i, record := range records {
		byID[record.UploadID] = record
		transfers[i] = storage.Transfer{
			Source:      record.StagingKey,
			Destination: s.codec.ToDurableKey(record.StagingKey),
		}
	}

	if err := s.storage.CopyMany(ctx, s.bucket, transfers); err != nil {
		s.logAuditFailure(ctx, audit.ActionUploadPromote, err)
		return nil, fmt.Errorf("failed to copy uploads to durable storage: %w", err)
	}

	if err := s.db.MarkUploadsFinished(ctx, fileIDs); err != nil {
		return nil, fmt.Errorf("failed to mark uploads finished: %w", err)
	}

	// Re-project in input order; the store does not guarantee it.
	result := make([]PromotedFile, len(fileIDs))
	for i, id := range fileIDs {
		record := byID[id]
		result[i] = PromotedFile{
			Key:          s.codec.ToDurableKey(record.StagingKey),
			ContentType:  record.ContentType,
			OriginalName: record.OriginalName,
		}
	}

	go s.triggerImageDerivatives(records)

	s.logAudit(ctx, nil, audit.ActionUploadPromote, map[string]any{"file_ids": fileIDs})

	return result, nil
}

// triggerImageDerivatives asks the image gateway to generate webp renditions
// for every promoted image. Best effort: failures are logged, never raised,
// never retried. Runs detached from the caller's request context.
func (s *Service) triggerImageDerivatives(records []*ydb.Upload) {
	for _, record := range records {
		if !validation.IsImageContentType(record.ContentType) {
			continue
		}
		durableKey := s.codec.ToDurableKey(record.StagingKey)
		url := s.gatewayBaseURL + durableKey + "-webp.webp"

		req, err := http.NewRequest(http.MethodHead, url, nil)
		if err != nil {
			slog.Warn("failed to build derivative request", "error", err, "key", durableKey)
			continue
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			slog.Warn("failed to trigger image derivative", "error", err, "key", durableKey)
			continue
		}
		resp.Body.Close()
	}
}

// CopyFilesByKey duplicates the objects behind the given durable keys under
// brand-new ids and returns an old-key to new-key map. Keys that do not
// resolve to a finished record are silently dropped; callers must tolerate
// missing entries.
func (s *Service) CopyFilesByKey(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	idToKey := make(map[string]string, len(keys))
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		key = s.NormalizeKey(key)
		id, ok := s.codec.KeyID(key)
		if !ok {
			continue
		}
		if _, seen := idToKey[id]; seen {
			continue
		}
		idToKey[id] = key
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	records, err := s.db.GetUploadsByIDs(ctx, ids, ydb.UploadStateFinished)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upload records: %w", err)
	}
	if len(records) == 0 {
		return map[string]string{}, nil
	}

	newRecords := make([]*ydb.Upload, 0, len(records))
	transfers := make([]storage.Transfer, 0, len(records))
	keyMap := make(map[string]string, len(records))
	for _, record := range records {
		newID := uuid.New().String()
		createdAt := time.Now()
		newStagingKey := s.codec.StagingKey(newID, createdAt)

		newRecords = append(newRecords, &ydb.Upload{
			UploadID:     newID,
			OwnerID:      record.OwnerID,
			ContentType:  record.ContentType,
			OriginalName: record.OriginalName,
			StagingKey:   newStagingKey,
			State:        ydb.UploadStateStarted,
			CreatedAt:    createdAt,
		})
		transfers = append(transfers, storage.Transfer{
			Source:      s.codec.ToDurableKey(record.StagingKey),
			Destination: s.codec.ToDurableKey(newStagingKey),
		})
		keyMap[idToKey[record.UploadID]] = s.codec.ToDurableKey(newStagingKey)
	}

	if err := s.storage.CopyMany(ctx, s.bucket, transfers); err != nil {
		return nil, fmt.Errorf("failed to copy objects: %w", err)
	}
	if err := s.db.CreateUploads(ctx, newRecords); err != nil {
		return nil, fmt.Errorf("failed to create duplicate upload records: %w", err)
	}

	s.logAudit(ctx, nil, audit.ActionUploadDuplicate, map[string]any{"copied": len(keyMap)})

	return keyMap, nil
}

// DeleteByKeys retires the records behind the given keys. Only finished
// records are deleted: a started record was never promoted, so there is
// nothing durable to clean. No-op on empty input.
func (s *Service) DeleteByKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if id, ok := s.codec.KeyID(s.NormalizeKey(key)); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	if err := s.db.DeleteUploadsByIDs(ctx, ids, ydb.UploadStateFinished); err != nil {
		return fmt.Errorf("failed to delete upload records: %w", err)
	}

	s.logAudit(ctx, nil, audit.ActionUploadDelete, map[string]any{"keys": len(keys)})

	return nil
}

// DeleteVariants removes every size/format rendition of the given keys from
// the store, then retires their records. Keys without folder structure come
// from the legacy layout and are skipped entirely.
func (s *Service) DeleteVariants(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	expanded := make([]string, 0, len(keys)*(len(s.variants)+1))
	eligible := make([]string, 0, len(keys))
	for _, key := range keys {
		key = s.NormalizeKey(key)
		if !HasFolderStructure(key) {
			continue
		}
		eligible = append(eligible, key)
		expanded = append(expanded, key)
		for _, variant := range s.variants {
			expanded = append(expanded, fmt.Sprintf("%s-%s.webp", key, variant))
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	if err := s.storage.DeleteMany(ctx, s.bucket, expanded); err != nil {
		return fmt.Errorf("failed to delete object variants: %w", err)
	}

	return s.DeleteByKeys(ctx, eligible)
}

// NormalizeKey strips the public URL host prefix so callers may pass bare
// keys and public URLs interchangeably.
func (s *Service) NormalizeKey(key string) string {
	if s.publicBaseURL != "" && strings.HasPrefix(key, s.publicBaseURL) {
		key = strings.TrimPrefix(key, s.publicBaseURL)
	}
	return strings.TrimPrefix(key, "/")
}

// PublicURL renders the externally addressable form of a durable key.
func (s *Service) PublicURL(key string) string {
	return s.publicBaseURL + "/" + strings.TrimPrefix(key, "/")
}

func (s *Service) logAudit(ctx context.Context, userID *string, action string, details map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogAction(ctx, audit.Record{
		UserID:     userID,
		ActionType: action,
		Details:    details,
	}); err != nil {
		slog.Warn("failed to record audit entry", "error", err, "action", action)
	}
}

func (s *Service) logAuditFailure(ctx context.Context, action string, cause error) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogAction(ctx, audit.Record{
		ActionType:   action,
		ActionResult: audit.ActionResultFailure,
		Details:      map[string]any{"error": cause.Error()},
	}); err != nil {
		slog.Warn("failed to record audit entry", "error", err, "action", action)
	}
}
