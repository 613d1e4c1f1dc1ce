package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/postloom/postloom/internal/models"
)

// InboxService is the unified inbox over every connected account's messages
// and comments.
type InboxService struct {
	db       *gorm.DB
	accounts *AccountService
	logger   *zap.Logger
}

func NewInboxService(db *gorm.DB, accounts *AccountService, logger *zap.Logger) *InboxService {
	return &InboxService{
		db:       db,
		accounts: accounts,
		logger:   logger,
	}
}

// List returns messages across all accounts in scope, newest first.
func (s *InboxService) List(ctx context.Context, scope Scope) ([]models.InboxMessage, error) {
	accounts, err := s.accounts.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return []models.InboxMessage{}, nil
	}

	ids := make([]string, len(accounts))
	byID := make(map[string]models.SocialAccount, len(accounts))
	for i, account := range accounts {
		ids[i] = account.ID
		byID[account.ID] = account
	}

	var messages []models.InboxMessage
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND social_account_id IN ?", scope.UserID, ids).
		Order("received_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox messages: %w", err)
	}

	for i := range messages {
		messages[i].Account = byID[messages[i].SocialAccountID]
	}
	return messages, nil
}

// MarkRead flags a message as read.
func (s *InboxService) MarkRead(ctx context.Context, scope Scope, id string) error {
	result := s.db.WithContext(ctx).
		Model(&models.InboxMessage{}).
		Where("id = ? AND user_id = ?", id, scope.UserID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark message read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Reply stores the outgoing reply on the message. Delivery to the platform
// is carried by the account's messaging API out of band.
func (s *InboxService) Reply(ctx context.Context, scope Scope, id, reply string) (*models.InboxMessage, error) {
	if reply == "" {
		return nil, &ValidationError{Field: "reply", Reason: "must not be empty"}
	}

	var message models.InboxMessage
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, scope.UserID).First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	now := time.Now()
	message.Reply = reply
	message.RepliedAt = &now
	message.Read = true

	if err := s.db.WithContext(ctx).Save(&message).Error; err != nil {
		return nil, fmt.Errorf("failed to save reply: %w", err)
	}

	s.logger.Info("Inbox message replied", zap.String("message_id", id))
	return &message, nil
}
