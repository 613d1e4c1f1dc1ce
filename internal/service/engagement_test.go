package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/postloom/postloom/internal/models"
)

func seedInboxMessage(t *testing.T, inbox *InboxService, scope Scope, accountID, body string, receivedAt time.Time) *models.InboxMessage {
	t.Helper()

	message := &models.InboxMessage{
		UserID:          scope.UserID,
		SocialAccountID: accountID,
		Author:          "someone",
		Body:            body,
		ReceivedAt:      receivedAt,
	}
	require.NoError(t, inbox.db.Create(message).Error)
	return message
}

func TestInboxListScopedAndOrdered(t *testing.T) {
	db, accounts, _ := newTestServices(t)
	inbox := NewInboxService(db, accounts, zap.NewNop())
	ctx := context.Background()

	org := "org-a"
	scoped := Scope{UserID: "user-1", OrgID: &org}
	personal := Scope{UserID: "user-1"}

	orgAccount := connectAccount(t, accounts, scoped, models.PlatformInstagram)
	personalAccount := connectAccount(t, accounts, personal, models.PlatformFacebook)

	now := time.Now()
	seedInboxMessage(t, inbox, scoped, orgAccount.ID, "older", now.Add(-time.Hour))
	seedInboxMessage(t, inbox, scoped, orgAccount.ID, "newer", now)
	seedInboxMessage(t, inbox, personal, personalAccount.ID, "personal", now)

	messages, err := inbox.List(ctx, scoped)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "newer", messages[0].Body)
	assert.Equal(t, "older", messages[1].Body)
	assert.Equal(t, models.PlatformInstagram, messages[0].Account.Platform)
}

func TestInboxReply(t *testing.T) {
	db, accounts, _ := newTestServices(t)
	inbox := NewInboxService(db, accounts, zap.NewNop())
	ctx := context.Background()

	scope := Scope{UserID: "user-1"}
	account := connectAccount(t, accounts, scope, models.PlatformFacebook)
	message := seedInboxMessage(t, inbox, scope, account.ID, "question", time.Now())

	replied, err := inbox.Reply(ctx, scope, message.ID, "answer")
	require.NoError(t, err)
	assert.Equal(t, "answer", replied.Reply)
	assert.True(t, replied.Read)
	assert.NotNil(t, replied.RepliedAt)

	_, err = inbox.Reply(ctx, Scope{UserID: "user-2"}, message.ID, "hijack")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewDraftReplyFallsBack(t *testing.T) {
	db, accounts, _ := newTestServices(t)
	reviews := NewReviewService(db, accounts, failingCaptioner{}, zap.NewNop())
	ctx := context.Background()

	scope := Scope{UserID: "user-1"}
	account := connectAccount(t, accounts, scope, models.PlatformGoogleBusiness)

	review := &models.Review{
		UserID:          scope.UserID,
		SocialAccountID: account.ID,
		Author:          "Jordan",
		Rating:          4,
		Body:            "Great service",
	}
	require.NoError(t, db.Create(review).Error)

	draft, err := reviews.DraftReply(ctx, scope, review.ID)
	require.NoError(t, err)
	assert.Contains(t, draft, "Jordan")
}

func TestReviewReply(t *testing.T) {
	db, accounts, _ := newTestServices(t)
	reviews := NewReviewService(db, accounts, &stubCaptioner{}, zap.NewNop())
	ctx := context.Background()

	scope := Scope{UserID: "user-1"}
	account := connectAccount(t, accounts, scope, models.PlatformGoogleBusiness)

	review := &models.Review{
		UserID:          scope.UserID,
		SocialAccountID: account.ID,
		Author:          "Jordan",
		Rating:          2,
		Body:            "Slow delivery",
	}
	require.NoError(t, db.Create(review).Error)

	replied, err := reviews.Reply(ctx, scope, review.ID, "We are sorry, reaching out now.")
	require.NoError(t, err)
	assert.NotNil(t, replied.RepliedAt)

	_, err = reviews.Reply(ctx, scope, "missing-id", "text")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLibraryScopedCRUD(t *testing.T) {
	db, _, _ := newTestServices(t)
	library := NewLibraryService(db, zap.NewNop())
	ctx := context.Background()

	org := "org-a"
	scoped := Scope{UserID: "user-1", OrgID: &org}
	personal := Scope{UserID: "user-1"}

	item, err := library.Add(ctx, scoped, &models.ContentItem{Caption: "evergreen caption"})
	require.NoError(t, err)
	_, err = library.Add(ctx, personal, &models.ContentItem{Caption: "personal caption"})
	require.NoError(t, err)

	items, err := library.List(ctx, scoped)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "evergreen caption", items[0].Caption)

	require.NoError(t, library.Delete(ctx, scoped, item.ID))
	assert.ErrorIs(t, library.Delete(ctx, scoped, item.ID), ErrNotFound)

	_, err = library.Add(ctx, personal, &models.ContentItem{})
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}
