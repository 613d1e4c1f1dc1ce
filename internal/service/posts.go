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

// PostService is the scheduled-post persistence adapter. Every call is
// bounded by the caller's scope; the organization filter is applied by
// resolving the accounts visible in that scope first, mirroring how the
// account link carries the organization.
type PostService struct {
	db       *gorm.DB
	accounts *AccountService
	logger   *zap.Logger
	now      func() time.Time
}

// PostPatch is a partial update to a scheduled post. Nil fields are left
// untouched.
type PostPatch struct {
	Content       *string    `json:"content"`
	ScheduledTime *time.Time `json:"scheduled_time"`
}

func NewPostService(db *gorm.DB, accounts *AccountService, logger *zap.Logger) *PostService {
	return &PostService{
		db:       db,
		accounts: accounts,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores one scheduled post against an account in scope. A nil
// scheduledAt means "post now": the row gets the current time and waits for
// the dispatcher like any other scheduled post.
func (s *PostService) Create(ctx context.Context, scope Scope, accountID, content string, scheduledAt *time.Time) (*models.ScheduledPost, error) {
	if content == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}

	account, err := s.accounts.Get(ctx, scope, accountID)
	if err != nil {
		return nil, err
	}

	when := s.now()
	if scheduledAt != nil {
		when = *scheduledAt
	}

	post := &models.ScheduledPost{
		UserID:          scope.UserID,
		SocialAccountID: account.ID,
		Content:         content,
		ScheduledTime:   when,
		Status:          models.PostStatusScheduled,
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create scheduled post: %w", err)
	}

	post.Platform = account.Platform
	return post, nil
}

// List returns every post in scope ordered by scheduled time, with the
// platform denormalized from the linked account.
func (s *PostService) List(ctx context.Context, scope Scope) ([]models.ScheduledPost, error) {
	byID, err := s.accountsByID(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(byID) == 0 {
		return []models.ScheduledPost{}, nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	var posts []models.ScheduledPost
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND social_account_id IN ?", scope.UserID, ids).
		Order("scheduled_time ASC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled posts: %w", err)
	}

	for i := range posts {
		if account, ok := byID[posts[i].SocialAccountID]; ok {
			posts[i].Platform = account.Platform
			posts[i].Account = account
		}
	}

	return posts, nil
}

// Get returns one post in scope.
func (s *PostService) Get(ctx context.Context, scope Scope, id string) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, scope.UserID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled post: %w", err)
	}

	account, err := s.accounts.Get(ctx, scope, post.SocialAccountID)
	if err != nil {
		// The linked account is outside the caller's scope: treat the post
		// as invisible rather than leaking its existence.
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	post.Platform = account.Platform
	post.Account = *account
	return &post, nil
}

// Update applies a partial edit. Ownership is re-checked at the data layer
// and only posts still waiting to publish can change.
func (s *PostService) Update(ctx context.Context, scope Scope, id string, patch PostPatch) (*models.ScheduledPost, error) {
	post, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if post.Status != models.PostStatusScheduled {
		return nil, ErrNotEditable
	}

	updates := map[string]interface{}{}
	if patch.Content != nil {
		if *patch.Content == "" {
			return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
		}
		updates["content"] = *patch.Content
		post.Content = *patch.Content
	}
	if patch.ScheduledTime != nil {
		updates["scheduled_time"] = *patch.ScheduledTime
		post.ScheduledTime = *patch.ScheduledTime
	}
	if len(updates) == 0 {
		return post, nil
	}

	err = s.db.WithContext(ctx).
		Model(&models.ScheduledPost{}).
		Where("id = ? AND user_id = ?", id, scope.UserID).
		Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update scheduled post: %w", err)
	}

	return post, nil
}

// Delete removes a post for good.
func (s *PostService) Delete(ctx context.Context, scope Scope, id string) error {
	result := s.db.WithContext(ctx).
		Unscoped().
		Where("id = ? AND user_id = ?", id, scope.UserID).
		Delete(&models.ScheduledPost{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete scheduled post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostService) accountsByID(ctx context.Context, scope Scope) (map[string]models.SocialAccount, error) {
	accounts, err := s.accounts.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.SocialAccount, len(accounts))
	for _, account := range accounts {
		byID[account.ID] = account
	}
	return byID, nil
}
