package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/postloom/postloom/internal/models"
)

// AccountService manages connected social accounts. Scheduled posts resolve
// their target account through it.
type AccountService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAccountService(db *gorm.DB, logger *zap.Logger) *AccountService {
	return &AccountService{
		db:     db,
		logger: logger,
	}
}

// Connect stores a newly linked platform account in the given scope.
func (s *AccountService) Connect(ctx context.Context, scope Scope, account *models.SocialAccount) (*models.SocialAccount, error) {
	if !models.IsKnownPlatform(account.Platform) {
		return nil, &ValidationError{Field: "platform", Reason: fmt.Sprintf("unknown platform %q", account.Platform)}
	}

	account.UserID = scope.UserID
	account.OrganizationID = scope.OrgID
	account.Connected = true

	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("Social account connected",
		zap.String("account_id", account.ID),
		zap.String("platform", account.Platform))

	return account, nil
}

// List returns every connected account in scope.
func (s *AccountService) List(ctx context.Context, scope Scope) ([]models.SocialAccount, error) {
	var accounts []models.SocialAccount
	if err := s.scoped(ctx, scope).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Get returns one account, enforcing scope.
func (s *AccountService) Get(ctx context.Context, scope Scope, id string) (*models.SocialAccount, error) {
	var account models.SocialAccount
	err := s.scoped(ctx, scope).Where("id = ?", id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// ByPlatform maps each platform with a connected account in scope to that
// account. When several accounts share a platform the most recently
// connected wins.
func (s *AccountService) ByPlatform(ctx context.Context, scope Scope) (map[string]models.SocialAccount, error) {
	var accounts []models.SocialAccount
	if err := s.scoped(ctx, scope).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	byPlatform := make(map[string]models.SocialAccount, len(accounts))
	for _, account := range accounts {
		byPlatform[account.Platform] = account
	}
	return byPlatform, nil
}

// Disconnect removes an account. Scheduled posts referencing it keep their
// rows; the dispatcher fails them when it cannot load the account.
func (s *AccountService) Disconnect(ctx context.Context, scope Scope, id string) error {
	result := s.scoped(ctx, scope).Where("id = ?", id).Delete(&models.SocialAccount{})
	if result.Error != nil {
		return fmt.Errorf("failed to disconnect account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Info("Social account disconnected", zap.String("account_id", id))
	return nil
}

func (s *AccountService) scoped(ctx context.Context, scope Scope) *gorm.DB {
	query := s.db.WithContext(ctx).
		Model(&models.SocialAccount{}).
		Where("user_id = ? AND connected = ?", scope.UserID, true)
	if scope.OrgID == nil {
		return query.Where("organization_id IS NULL")
	}
	return query.Where("organization_id = ?", *scope.OrgID)
}
