package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/internal/service/publisher"
)

// DispatchService pushes due scheduled posts to their platforms and flips
// their status to published or failed. It is the only writer of those two
// states.
type DispatchService struct {
	db         *gorm.DB
	manager    *publisher.Manager
	monitoring *MonitoringService
	logger     *zap.Logger
}

func NewDispatchService(db *gorm.DB, logger *zap.Logger) *DispatchService {
	service := &DispatchService{
		db:         db,
		manager:    publisher.NewManager(logger),
		monitoring: NewMonitoringService(db, logger),
		logger:     logger,
	}

	for _, pub := range publisher.NewRESTPublishers(logger) {
		if err := service.manager.Register(pub); err != nil {
			logger.Error("Failed to register publisher",
				zap.String("platform", pub.PlatformName()),
				zap.Error(err))
		}
	}

	return service
}

// Manager exposes the platform registry, mostly for handlers listing the
// available platforms.
func (s *DispatchService) Manager() *publisher.Manager {
	return s.manager
}

// DispatchDue publishes every post whose scheduled time has passed.
// Failures are isolated per post.
func (s *DispatchService) DispatchDue(ctx context.Context) error {
	var due []models.ScheduledPost
	err := s.db.WithContext(ctx).
		Where("status = ? AND scheduled_time <= ?", models.PostStatusScheduled, time.Now()).
		Order("scheduled_time ASC").
		Limit(50).
		Find(&due).Error
	if err != nil {
		return fmt.Errorf("failed to query due posts: %w", err)
	}

	if len(due) == 0 {
		return nil
	}

	s.logger.Info("Dispatching due posts", zap.Int("count", len(due)))

	for i := range due {
		s.dispatchOne(ctx, &due[i])
	}

	return nil
}

func (s *DispatchService) dispatchOne(ctx context.Context, post *models.ScheduledPost) {
	var account models.SocialAccount
	err := s.db.WithContext(ctx).Where("id = ?", post.SocialAccountID).First(&account).Error
	if err != nil {
		s.markFailed(ctx, post, "", fmt.Sprintf("linked account unavailable: %v", err))
		return
	}

	result := s.manager.Publish(ctx, post, &account)
	if !result.Success {
		message := "publish failed"
		if result.Error != nil {
			message = result.Error.Error()
		}
		s.markFailed(ctx, post, account.Platform, message)
		return
	}

	now := result.PublishedAt
	if now.IsZero() {
		now = time.Now()
	}

	err = s.db.WithContext(ctx).
		Model(&models.ScheduledPost{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"status":       models.PostStatusPublished,
			"published_at": now,
		}).Error
	if err != nil {
		s.logger.Error("Failed to mark post published",
			zap.String("post_id", post.ID),
			zap.Error(err))
		return
	}

	if err := s.monitoring.RecordMetric("publish_success", "counter", 1, map[string]interface{}{
		"platform": account.Platform,
	}); err != nil {
		s.logger.Error("Failed to record publish metric", zap.Error(err))
	}
}

func (s *DispatchService) markFailed(ctx context.Context, post *models.ScheduledPost, platform, message string) {
	s.logger.Error("Publish failed",
		zap.String("post_id", post.ID),
		zap.String("platform", platform),
		zap.String("reason", message))

	err := s.db.WithContext(ctx).
		Model(&models.ScheduledPost{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"status":        models.PostStatusFailed,
			"error_message": message,
		}).Error
	if err != nil {
		s.logger.Error("Failed to mark post failed",
			zap.String("post_id", post.ID),
			zap.Error(err))
	}

	options := []ErrorLogOption{WithPost(post.ID)}
	if platform != "" {
		options = append(options, WithPlatform(platform))
	}
	if err := s.monitoring.RecordError("ERROR", "dispatch", "Failed to publish scheduled post", message, options...); err != nil {
		s.logger.Error("Failed to record dispatch error", zap.Error(err))
	}
}
