package service

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/postloom/postloom/internal/models"
)

// MonitoringService persists operational errors and metric samples so batch
// reports and publish failures are inspectable after the fact.
type MonitoringService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewMonitoringService(db *gorm.DB, logger *zap.Logger) *MonitoringService {
	return &MonitoringService{
		db:     db,
		logger: logger,
	}
}

func (m *MonitoringService) RecordError(level, source, title, message string, options ...ErrorLogOption) error {
	errorLog := &models.ErrorLog{
		Level:   level,
		Source:  source,
		Title:   title,
		Message: message,
	}

	for _, option := range options {
		option(errorLog)
	}

	return m.db.Create(errorLog).Error
}

type ErrorLogOption func(*models.ErrorLog)

func WithPlatform(platformName string) ErrorLogOption {
	return func(e *models.ErrorLog) {
		e.PlatformName = platformName
	}
}

func WithPost(postID string) ErrorLogOption {
	return func(e *models.ErrorLog) {
		e.PostID = &postID
	}
}

func WithContext(context map[string]interface{}) ErrorLogOption {
	return func(e *models.ErrorLog) {
		if contextBytes, err := json.Marshal(context); err == nil {
			e.Context = string(contextBytes)
		}
	}
}

func (m *MonitoringService) RecordMetric(name, metricType string, value float64, tags map[string]interface{}) error {
	sample := &models.MetricSample{
		MetricName: name,
		MetricType: metricType,
		Value:      value,
		Timestamp:  time.Now(),
	}

	if tags != nil {
		if tagBytes, err := json.Marshal(tags); err == nil {
			sample.Tags = string(tagBytes)
		}
	}

	return m.db.Create(sample).Error
}

// UnresolvedErrors returns recent unresolved error logs, newest first.
func (m *MonitoringService) UnresolvedErrors(limit int) ([]models.ErrorLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var logs []models.ErrorLog
	err := m.db.Where("resolved = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
