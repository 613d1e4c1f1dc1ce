package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/postloom/postloom/internal/models"
)

// LibraryService stores reusable content assets per scope.
type LibraryService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewLibraryService(db *gorm.DB, logger *zap.Logger) *LibraryService {
	return &LibraryService{
		db:     db,
		logger: logger,
	}
}

func (s *LibraryService) List(ctx context.Context, scope Scope) ([]models.ContentItem, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", scope.UserID)
	if scope.OrgID == nil {
		query = query.Where("organization_id IS NULL")
	} else {
		query = query.Where("organization_id = ?", *scope.OrgID)
	}

	var items []models.ContentItem
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	return items, nil
}

func (s *LibraryService) Add(ctx context.Context, scope Scope, item *models.ContentItem) (*models.ContentItem, error) {
	if item.Caption == "" && item.MediaURL == "" {
		return nil, &ValidationError{Field: "content item", Reason: "caption or media URL is required"}
	}

	item.UserID = scope.UserID
	item.OrganizationID = scope.OrgID

	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create content item: %w", err)
	}

	s.logger.Info("Content item added", zap.String("item_id", item.ID))
	return item, nil
}

func (s *LibraryService) Delete(ctx context.Context, scope Scope, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, scope.UserID).
		Delete(&models.ContentItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete content item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
