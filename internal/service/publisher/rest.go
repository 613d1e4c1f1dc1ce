package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/postloom/postloom/internal/models"
)

// RESTPublisher pushes posts through a platform's JSON publish endpoint
// with the account's bearer token. Every supported network exposes a
// create-post call of this shape; the endpoint and payload key vary.
type RESTPublisher struct {
	platform   string
	endpoint   string
	contentKey string
	logger     *zap.Logger
	client     *http.Client
}

// platform -> (publish endpoint, JSON key carrying the post text)
var restPlatforms = map[string]struct {
	endpoint   string
	contentKey string
}{
	models.PlatformFacebook:       {"https://graph.facebook.com/v19.0/me/feed", "message"},
	models.PlatformInstagram:      {"https://graph.facebook.com/v19.0/me/media", "caption"},
	models.PlatformLinkedIn:       {"https://api.linkedin.com/v2/ugcPosts", "text"},
	models.PlatformTwitter:        {"https://api.twitter.com/2/tweets", "text"},
	models.PlatformTikTok:         {"https://open.tiktokapis.com/v2/post/publish/content/init/", "title"},
	models.PlatformGoogleBusiness: {"https://mybusiness.googleapis.com/v4/accounts/me/locations/me/localPosts", "summary"},
}

// NewRESTPublishers builds one publisher per supported platform.
func NewRESTPublishers(logger *zap.Logger) []*RESTPublisher {
	var publishers []*RESTPublisher
	for _, platform := range models.KnownPlatforms {
		entry := restPlatforms[platform]
		publishers = append(publishers, &RESTPublisher{
			platform:   platform,
			endpoint:   entry.endpoint,
			contentKey: entry.contentKey,
			logger:     logger,
			client: &http.Client{
				Timeout: 30 * time.Second,
			},
		})
	}
	return publishers
}

func (p *RESTPublisher) PlatformName() string {
	return p.platform
}

func (p *RESTPublisher) ValidateAccount(account *models.SocialAccount) error {
	if account.AccessToken == "" {
		return fmt.Errorf("account %s has no access token", account.ID)
	}
	if account.TokenExpiry != nil && account.TokenExpiry.Before(time.Now()) {
		return fmt.Errorf("access token for account %s expired at %s", account.ID, account.TokenExpiry)
	}
	return nil
}

func (p *RESTPublisher) Publish(ctx context.Context, post *models.ScheduledPost, account *models.SocialAccount) (*PublishResult, error) {
	body, err := json.Marshal(map[string]string{p.contentKey: post.Content})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal publish payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+account.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s publish API: %w", p.platform, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s publish API returned status %d: %s", p.platform, resp.StatusCode, string(respBody))
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		// Some platforms answer with an empty body on success.
		response.ID = ""
	}

	p.logger.Info("Post published",
		zap.String("platform", p.platform),
		zap.String("post_id", post.ID),
		zap.String("external_id", response.ID))

	return &PublishResult{
		Success:     true,
		ExternalID:  response.ID,
		PublishedAt: time.Now(),
	}, nil
}
