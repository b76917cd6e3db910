package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/makerloft/craftfolio-backend/internal/files"
	"github.com/makerloft/craftfolio-backend/internal/models"
	"github.com/makerloft/craftfolio-backend/internal/validation"
	"github.com/makerloft/craftfolio-backend/internal/ydb"
)

// imageTypes restricts promotion on portfolio saves to image uploads.
var imageTypes = []string{"image"}

// Service manages portfolio items and drives the upload pipeline on their
// behalf: saving promotes fresh uploads, deleting cleans up renditions,
// duplicating forks the underlying objects.
type Service struct {
	db    ydb.Database
	files *files.Service
	log   *slog.Logger
}

func NewService(db ydb.Database, filesService *files.Service, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, files: filesService, log: log}
}

// SaveItemRequest carries one create-or-update. ImageFileIDs name started
// uploads to promote; ImageKeys name already-durable keys to keep (public
// URLs accepted). On update, previously attached keys missing from ImageKeys
// are removed along with their renditions.
type SaveItemRequest struct {
	ItemID       string   `json:"item_id,omitempty"`
	OwnerID      string   `json:"-"`
	Title        string   `json:"title"`
	ContentHTML  string   `json:"content_html"`
	ImageFileIDs []string `json:"image_file_ids"`
	ImageKeys    []string `json:"image_keys"`
}

// SaveItem creates or updates a portfolio item. New uploads are promoted
// before any record is touched, so a failed promotion leaves the item
// unchanged.
func (s *Service) SaveItem(ctx context.Context, req *SaveItemRequest) (*models.PortfolioItem, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, validation.ValidationError{Field: "title", Message: "is required"}
	}

	var existing *ydb.PortfolioItem
	if req.ItemID != "" {
		item, err := s.db.GetPortfolioItem(ctx, req.ItemID)
		if err != nil {
			return nil, fmt.Errorf("portfolio item not found: %w", err)
		}
		if item.OwnerID != req.OwnerID {
			return nil, fmt.Errorf("portfolio item not found")
		}
		existing = item
	}

	keptKeys := make([]string, 0, len(req.ImageKeys))
	keptSet := make(map[string]bool, len(req.ImageKeys))
	for _, key := range req.ImageKeys {
		key = s.files.Codec().ToDurableKey(stripBase(key, s.files))
		keptKeys = append(keptKeys, key)
		keptSet[key] = true
	}

	promoted, err := s.files.Promote(ctx, req.ImageFileIDs, imageTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to promote images: %w", err)
	}

	imageKeys := make([]string, 0, len(keptKeys)+len(promoted))
	imageKeys = append(imageKeys, keptKeys...)
	for _, file := range promoted {
		imageKeys = append(imageKeys, file.Key)
	}

	now := time.Now()
	item := &ydb.PortfolioItem{
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		ContentHTML: req.ContentHTML,
		ImageKeys:   imageKeys,
		UpdatedAt:   now,
	}

	if existing == nil {
		item.ItemID = uuid.New().String()
		item.CreatedAt = now
		if err := s.db.CreatePortfolioItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to create portfolio item: %w", err)
		}
	} else {
		item.ItemID = existing.ItemID
		item.CreatedAt = existing.CreatedAt
		if err := s.db.UpdatePortfolioItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to update portfolio item: %w", err)
		}

		// Clean up images dropped by this edit, record update already done.
		removed := make([]string, 0)
		for _, key := range existing.ImageKeys {
			if !keptSet[key] {
				removed = append(removed, key)
			}
		}
		if len(removed) > 0 {
			if err := s.files.DeleteVariants(ctx, removed...); err != nil {
				s.log.Warn("failed to clean up replaced images", "error", err, "item_id", item.ItemID)
			}
		}
	}

	return s.project(item), nil
}

// GetItem fetches one portfolio item by id.
func (s *Service) GetItem(ctx context.Context, itemID string) (*models.PortfolioItem, error) {
	item, err := s.db.GetPortfolioItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("portfolio item not found: %w", err)
	}
	return s.project(item), nil
}

// ListItems fetches every portfolio item owned by ownerID.
func (s *Service) ListItems(ctx context.Context, ownerID string) ([]*models.PortfolioItem, error) {
	items, err := s.db.ListPortfolioItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio items: %w", err)
	}
	result := make([]*models.PortfolioItem, 0, len(items))
	for _, item := range items {
		result = append(result, s.project(item))
	}
	return result, nil
}

// DuplicateItem forks an item together with its image objects, so editing or
// deleting the copy never touches the original's files. Embedded public URLs
// in the HTML content are rewritten to the fresh copies.
func (s *Service) DuplicateItem(ctx context.Context, itemID, ownerID string) (*models.PortfolioItem, error) {
	source, err := s.db.GetPortfolioItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("portfolio item not found: %w", err)
	}
	if source.OwnerID != ownerID {
		return nil, fmt.Errorf("portfolio item not found")
	}

	keyMap, err := s.files.CopyFilesByKey(ctx, source.ImageKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to copy item images: %w", err)
	}

	newKeys := make([]string, 0, len(source.ImageKeys))
	contentHTML := source.ContentHTML
	for _, oldKey := range source.ImageKeys {
		newKey, ok := keyMap[oldKey]
		if !ok {
			// Unresolvable key: the copy keeps referencing the original
			// object rather than losing the image.
			newKeys = append(newKeys, oldKey)
			continue
		}
		newKeys = append(newKeys, newKey)
		contentHTML = strings.ReplaceAll(contentHTML, s.files.PublicURL(oldKey), s.files.PublicURL(newKey))
	}

	now := time.Now()
	copy := &ydb.PortfolioItem{
		ItemID:      uuid.New().String(),
		OwnerID:     ownerID,
		Title:       source.Title + " (copy)",
		ContentHTML: contentHTML,
		ImageKeys:   newKeys,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.CreatePortfolioItem(ctx, copy); err != nil {
		return nil, fmt.Errorf("failed to create duplicated item: %w", err)
	}

	return s.project(copy), nil
}

// DeleteItem removes an item, its image objects and their renditions.
func (s *Service) DeleteItem(ctx context.Context, itemID, ownerID string) error {
	item, err := s.db.GetPortfolioItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("portfolio item not found: %w", err)
	}
	if item.OwnerID != ownerID {
		return fmt.Errorf("portfolio item not found")
	}

	if err := s.db.DeletePortfolioItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete portfolio item: %w", err)
	}

	if len(item.ImageKeys) > 0 {
		if err := s.files.DeleteVariants(ctx, item.ImageKeys...); err != nil {
			s.log.Warn("failed to clean up item images", "error", err, "item_id", itemID)
		}
	}

	return nil
}

func (s *Service) project(item *ydb.PortfolioItem) *models.PortfolioItem {
	urls := make([]string, 0, len(item.ImageKeys))
	for _, key := range item.ImageKeys {
		urls = append(urls, s.files.PublicURL(key))
	}
	return &models.PortfolioItem{
		ItemID:      item.ItemID,
		OwnerID:     item.OwnerID,
		Title:       item.Title,
		ContentHTML: item.ContentHTML,
		ImageURLs:   urls,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func stripBase(key string, f *files.Service) string {
	return f.NormalizeKey(key)
}
