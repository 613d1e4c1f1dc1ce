package models

import (
	"time"
)

// ErrorLog records operational failures (skipped batch slots, publish
// errors) for later inspection.
type ErrorLog struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Level        string     `gorm:"size:20;not null;index" json:"level"`
	Source       string     `gorm:"size:100;not null;index" json:"source"`
	PlatformName string     `gorm:"size:100;index" json:"platform_name"`
	PostID       *string    `gorm:"size:36;index" json:"post_id"`
	Title        string     `gorm:"size:500;not null" json:"title"`
	Message      string     `gorm:"type:text;not null" json:"message"`
	Context      string     `gorm:"type:text" json:"context"`
	Resolved     bool       `gorm:"default:false;index" json:"resolved"`
	ResolvedAt   *time.Time `json:"resolved_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// MetricSample is a point-in-time counter/gauge sample.
type MetricSample struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MetricName string    `gorm:"size:100;not null;index" json:"metric_name"`
	MetricType string    `gorm:"size:50;not null" json:"metric_type"`
	Value      float64   `gorm:"not null" json:"value"`
	Tags       string    `gorm:"type:text" json:"tags"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
