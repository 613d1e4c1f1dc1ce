package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Platform identifiers for connectable social networks.
const (
	PlatformFacebook       = "facebook"
	PlatformInstagram      = "instagram"
	PlatformLinkedIn       = "linkedin"
	PlatformTwitter        = "twitter"
	PlatformTikTok         = "tiktok"
	PlatformGoogleBusiness = "google_business"
)

// KnownPlatforms lists every platform the service can schedule for.
var KnownPlatforms = []string{
	PlatformFacebook,
	PlatformInstagram,
	PlatformLinkedIn,
	PlatformTwitter,
	PlatformTikTok,
	PlatformGoogleBusiness,
}

// IsKnownPlatform reports whether name is a supported platform identifier.
func IsKnownPlatform(name string) bool {
	for _, p := range KnownPlatforms {
		if p == name {
			return true
		}
	}
	return false
}

// SocialAccount is a connected platform account. OrganizationID nil means
// the account lives in the user's personal scope.
type SocialAccount struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	UserID         string         `gorm:"not null;index;size:36" json:"user_id"`
	OrganizationID *string        `gorm:"index;size:36" json:"organization_id"`
	Platform       string         `gorm:"not null;index;size:50" json:"platform"`
	AccountName    string         `gorm:"size:255" json:"account_name"`
	AccountID      string         `gorm:"size:255" json:"account_id"`
	AccessToken    string         `gorm:"type:text" json:"-"`
	RefreshToken   string         `gorm:"type:text" json:"-"`
	TokenExpiry    *time.Time     `json:"token_expiry"`
	Connected      bool           `gorm:"default:true" json:"connected"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (a *SocialAccount) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
