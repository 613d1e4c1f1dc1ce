package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InboxMessage is one unified-inbox entry (DM or comment) pulled from a
// connected account.
type InboxMessage struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	UserID          string         `gorm:"not null;index;size:36" json:"user_id"`
	SocialAccountID string         `gorm:"not null;index;size:36" json:"social_account_id"`
	ExternalID      string         `gorm:"size:255;index" json:"external_id"`
	Author          string         `gorm:"size:255" json:"author"`
	Body            string         `gorm:"type:text" json:"body"`
	Read            bool           `gorm:"default:false" json:"read"`
	Reply           string         `gorm:"type:text" json:"reply"`
	RepliedAt       *time.Time     `json:"replied_at"`
	ReceivedAt      time.Time      `gorm:"index" json:"received_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Account SocialAccount `gorm:"foreignKey:SocialAccountID" json:"account"`
}

func (m *InboxMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Review is a platform review (Google Business, Facebook) awaiting a reply.
type Review struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	UserID          string         `gorm:"not null;index;size:36" json:"user_id"`
	SocialAccountID string         `gorm:"not null;index;size:36" json:"social_account_id"`
	ExternalID      string         `gorm:"size:255;index" json:"external_id"`
	Author          string         `gorm:"size:255" json:"author"`
	Rating          int            `json:"rating"`
	Body            string         `gorm:"type:text" json:"body"`
	Reply           string         `gorm:"type:text" json:"reply"`
	RepliedAt       *time.Time     `json:"replied_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Account SocialAccount `gorm:"foreignKey:SocialAccountID" json:"account"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ContentItem is a reusable content-library asset.
type ContentItem struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	UserID         string         `gorm:"not null;index;size:36" json:"user_id"`
	OrganizationID *string        `gorm:"index;size:36" json:"organization_id"`
	Caption        string         `gorm:"type:text" json:"caption"`
	MediaURL       string         `gorm:"size:1024" json:"media_url"`
	Tags           string         `gorm:"size:512" json:"tags"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (c *ContentItem) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
