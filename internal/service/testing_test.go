package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/postloom/postloom/internal/models"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))
	return db
}

func newTestServices(t *testing.T) (*gorm.DB, *AccountService, *PostService) {
	t.Helper()

	db := setupTestDB(t)
	accounts := NewAccountService(db, zap.NewNop())
	posts := NewPostService(db, accounts, zap.NewNop())
	return db, accounts, posts
}

func connectAccount(t *testing.T, accounts *AccountService, scope Scope, platform string) *models.SocialAccount {
	t.Helper()

	account, err := accounts.Connect(context.Background(), scope, &models.SocialAccount{
		Platform:    platform,
		AccountName: platform + " account",
		AccessToken: "token",
	})
	require.NoError(t, err)
	return account
}

// stubCaptioner fakes the AI generator. failOn marks call indexes (starting
// at 0) that should return an error.
type stubCaptioner struct {
	calls  int
	failOn map[int]bool
}

func (s *stubCaptioner) Generate(_ context.Context, theme, platform string, tone Tone) (string, error) {
	call := s.calls
	s.calls++
	if s.failOn[call] {
		return "", fmt.Errorf("completion API returned status 500")
	}
	return fmt.Sprintf("ai caption %d for %s about %s (%s)", call, platform, theme, tone), nil
}

type failingCaptioner struct{}

func (failingCaptioner) Generate(context.Context, string, string, Tone) (string, error) {
	return "", fmt.Errorf("completion API unreachable")
}
