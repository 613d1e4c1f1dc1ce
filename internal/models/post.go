package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostStatus string

const (
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
	PostStatusFailed    PostStatus = "failed"
	PostStatusCancelled PostStatus = "cancelled"
)

// ScheduledPost is one unit of scheduled content. Status starts at
// "scheduled" and is flipped by the dispatcher, never by user edits.
type ScheduledPost struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	UserID          string         `gorm:"not null;index;size:36" json:"user_id"`
	SocialAccountID string         `gorm:"not null;index;size:36" json:"social_account_id"`
	Content         string         `gorm:"type:text;not null" json:"content"`
	ScheduledTime   time.Time      `gorm:"not null;index" json:"scheduled_time"`
	Status          PostStatus     `gorm:"size:50;default:'scheduled';index" json:"status"`
	PublishedAt     *time.Time     `json:"published_at"`
	ErrorMessage    string         `gorm:"type:text" json:"error_message"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Account SocialAccount `gorm:"foreignKey:SocialAccountID" json:"account"`

	// Denormalized from Account at read time, not a column.
	Platform string `gorm:"-" json:"platform"`
}

func (p *ScheduledPost) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
