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

// ReviewService lists platform reviews and drafts or stores replies.
type ReviewService struct {
	db        *gorm.DB
	accounts  *AccountService
	captioner CaptionGenerator
	logger    *zap.Logger
}

func NewReviewService(db *gorm.DB, accounts *AccountService, captioner CaptionGenerator, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		db:        db,
		accounts:  accounts,
		captioner: captioner,
		logger:    logger,
	}
}

// List returns reviews across all accounts in scope, newest first.
func (s *ReviewService) List(ctx context.Context, scope Scope) ([]models.Review, error) {
	accounts, err := s.accounts.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return []models.Review{}, nil
	}

	ids := make([]string, len(accounts))
	byID := make(map[string]models.SocialAccount, len(accounts))
	for i, account := range accounts {
		ids[i] = account.ID
		byID[account.ID] = account
	}

	var reviews []models.Review
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND social_account_id IN ?", scope.UserID, ids).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	for i := range reviews {
		reviews[i].Account = byID[reviews[i].SocialAccountID]
	}
	return reviews, nil
}

// DraftReply produces AI-suggested reply text for a review, degrading to a
// fixed courteous template when the AI call fails.
func (s *ReviewService) DraftReply(ctx context.Context, scope Scope, id string) (string, error) {
	review, err := s.get(ctx, scope, id)
	if err != nil {
		return "", err
	}

	theme := fmt.Sprintf("a thoughtful reply to this %d-star review from %s: %q",
		review.Rating, review.Author, review.Body)

	draft, err := s.captioner.Generate(ctx, theme, review.Account.Platform, ToneProfessional)
	if err != nil {
		s.logger.Warn("AI reply draft failed, using template",
			zap.String("review_id", id),
			zap.Error(err))
		return fmt.Sprintf("Thank you for your feedback, %s. We appreciate you taking the time to share your experience and we'd love to hear more.", review.Author), nil
	}

	return draft, nil
}

// Reply stores the reply text on the review.
func (s *ReviewService) Reply(ctx context.Context, scope Scope, id, reply string) (*models.Review, error) {
	if reply == "" {
		return nil, &ValidationError{Field: "reply", Reason: "must not be empty"}
	}

	review, err := s.get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	review.Reply = reply
	review.RepliedAt = &now

	if err := s.db.WithContext(ctx).Save(review).Error; err != nil {
		return nil, fmt.Errorf("failed to save review reply: %w", err)
	}

	s.logger.Info("Review replied", zap.String("review_id", id))
	return review, nil
}

func (s *ReviewService) get(ctx context.Context, scope Scope, id string) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, scope.UserID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	account, err := s.accounts.Get(ctx, scope, review.SocialAccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	review.Account = *account

	return &review, nil
}
