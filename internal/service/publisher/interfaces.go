package publisher

import (
	"context"
	"time"

	"github.com/postloom/postloom/internal/models"
)

// PublishResult is the outcome of pushing one post to one platform.
type PublishResult struct {
	Success     bool              `json:"success"`
	ExternalID  string            `json:"external_id,omitempty"`
	URL         string            `json:"url,omitempty"`
	Error       error             `json:"-"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	PublishedAt time.Time         `json:"published_at"`
}

// Config is platform-specific configuration handed to a publisher at
// registration time.
type Config struct {
	PlatformName string            `json:"platform_name"`
	Enabled      bool              `json:"enabled"`
	Settings     map[string]string `json:"settings"`
}

// Publisher pushes scheduled posts to one social platform using the
// credentials on the linked account.
type Publisher interface {
	PlatformName() string
	ValidateAccount(account *models.SocialAccount) error
	Publish(ctx context.Context, post *models.ScheduledPost, account *models.SocialAccount) (*PublishResult, error)
}
