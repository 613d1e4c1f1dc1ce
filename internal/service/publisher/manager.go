package publisher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/postloom/postloom/internal/models"
)

// Manager is a registry of platform publishers keyed by platform name.
type Manager struct {
	publishers map[string]Publisher
	configs    map[string]Config
	logger     *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		publishers: make(map[string]Publisher),
		configs:    make(map[string]Config),
		logger:     logger,
	}
}

func (m *Manager) Register(publisher Publisher) error {
	platformName := publisher.PlatformName()
	if _, exists := m.publishers[platformName]; exists {
		return fmt.Errorf("publisher for platform %s already registered", platformName)
	}

	m.publishers[platformName] = publisher
	m.logger.Info("Publisher registered", zap.String("platform", platformName))
	return nil
}

func (m *Manager) Get(platformName string) (Publisher, error) {
	publisher, exists := m.publishers[platformName]
	if !exists {
		return nil, fmt.Errorf("publisher for platform %s not found", platformName)
	}
	return publisher, nil
}

func (m *Manager) SetConfig(platformName string, config Config) {
	m.configs[platformName] = config
}

// Platforms lists every registered platform name.
func (m *Manager) Platforms() []string {
	var names []string
	for name := range m.publishers {
		names = append(names, name)
	}
	return names
}

// Publish routes one post to the publisher matching the account's
// platform. A missing publisher or disabled platform yields a failed
// result, not a panic.
func (m *Manager) Publish(ctx context.Context, post *models.ScheduledPost, account *models.SocialAccount) *PublishResult {
	publisher, err := m.Get(account.Platform)
	if err != nil {
		m.logger.Error("Publisher not found",
			zap.String("platform", account.Platform),
			zap.Error(err))
		return &PublishResult{Success: false, Error: err}
	}

	if config, ok := m.configs[account.Platform]; ok && !config.Enabled {
		err := fmt.Errorf("platform %s is disabled", account.Platform)
		return &PublishResult{Success: false, Error: err}
	}

	if err := publisher.ValidateAccount(account); err != nil {
		return &PublishResult{Success: false, Error: err}
	}

	result, err := publisher.Publish(ctx, post, account)
	if err != nil {
		return &PublishResult{Success: false, Error: err}
	}
	return result
}
