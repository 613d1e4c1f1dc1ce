package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postloom/postloom/internal/models"
)

func TestCreatePostNowDefaultsToCurrentTime(t *testing.T) {
	scope := Scope{UserID: "user-1"}
	_, accounts, posts := newTestServices(t)
	account := connectAccount(t, accounts, scope, models.PlatformFacebook)

	fixed := time.Date(2025, time.March, 3, 10, 30, 0, 0, time.UTC)
	posts.now = func() time.Time { return fixed }

	post, err := posts.Create(context.Background(), scope, account.ID, "hello", nil)
	require.NoError(t, err)

	assert.Equal(t, fixed, post.ScheduledTime.UTC())
	assert.Equal(t, models.PostStatusScheduled, post.Status)
	assert.Equal(t, models.PlatformFacebook, post.Platform)
}

func TestCreatePostRejectsForeignAccount(t *testing.T) {
	_, accounts, posts := newTestServices(t)

	owner := Scope{UserID: "user-1"}
	intruder := Scope{UserID: "user-2"}
	account := connectAccount(t, accounts, owner, models.PlatformTwitter)

	_, err := posts.Create(context.Background(), intruder, account.ID, "hijack", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePostRejectsEmptyContent(t *testing.T) {
	scope := Scope{UserID: "user-1"}
	_, accounts, posts := newTestServices(t)
	account := connectAccount(t, accounts, scope, models.PlatformTwitter)

	_, err := posts.Create(context.Background(), scope, account.ID, "", nil)

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestListPostsScopeIsolation(t *testing.T) {
	_, accounts, posts := newTestServices(t)
	ctx := context.Background()

	orgA := "org-a"
	orgB := "org-b"
	personal := Scope{UserID: "user-1"}
	scopeA := Scope{UserID: "user-1", OrgID: &orgA}
	scopeB := Scope{UserID: "user-1", OrgID: &orgB}

	personalAccount := connectAccount(t, accounts, personal, models.PlatformTwitter)
	accountA := connectAccount(t, accounts, scopeA, models.PlatformTwitter)
	accountB := connectAccount(t, accounts, scopeB, models.PlatformLinkedIn)

	when := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
	for _, fixture := range []struct {
		scope   Scope
		account string
		content string
	}{
		{personal, personalAccount.ID, "personal post"},
		{scopeA, accountA.ID, "org A post"},
		{scopeB, accountB.ID, "org B post"},
	} {
		_, err := posts.Create(ctx, fixture.scope, fixture.account, fixture.content, &when)
		require.NoError(t, err)
	}

	fromA, err := posts.List(ctx, scopeA)
	require.NoError(t, err)
	require.Len(t, fromA, 1)
	assert.Equal(t, "org A post", fromA[0].Content)
	assert.Equal(t, models.PlatformTwitter, fromA[0].Platform)

	fromPersonal, err := posts.List(ctx, personal)
	require.NoError(t, err)
	require.Len(t, fromPersonal, 1)
	assert.Equal(t, "personal post", fromPersonal[0].Content)

	// Another user sees nothing at all.
	other, err := posts.List(ctx, Scope{UserID: "user-2", OrgID: &orgA})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestListPostsOrderedByScheduledTime(t *testing.T) {
	scope := Scope{UserID: "user-1"}
	_, accounts, posts := newTestServices(t)
	account := connectAccount(t, accounts, scope, models.PlatformTwitter)
	ctx := context.Background()

	times := []time.Time{
		time.Date(2025, time.April, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC),
	}
	for i, when := range times {
		w := when
		_, err := posts.Create(ctx, scope, account.ID, []string{"c", "a", "b"}[i], &w)
		require.NoError(t, err)
	}

	listed, err := posts.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "a", listed[0].Content)
	assert.Equal(t, "b", listed[1].Content)
	assert.Equal(t, "c", listed[2].Content)
}

func TestUpdatePost(t *testing.T) {
	scope := Scope{UserID: "user-1"}
	db, accounts, posts := newTestServices(t)
	account := connectAccount(t, accounts, scope, models.PlatformTwitter)
	ctx := context.Background()

	when := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
	post, err := posts.Create(ctx, scope, account.ID, "before", &when)
	require.NoError(t, err)

	newContent := "after"
	newTime := when.Add(4 * time.Hour)
	updated, err := posts.Update(ctx, scope, post.ID, PostPatch{Content: &newContent, ScheduledTime: &newTime})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Content)
	assert.Equal(t, newTime, updated.ScheduledTime.UTC())

	// Owner re-check happens at the data layer.
	_, err = posts.Update(ctx, Scope{UserID: "user-2"}, post.ID, PostPatch{Content: &newContent})
	assert.ErrorIs(t, err, ErrNotFound)

	// Published posts are frozen.
	require.NoError(t, db.Model(&models.ScheduledPost{}).
		Where("id = ?", post.ID).
		Update("status", models.PostStatusPublished).Error)
	_, err = posts.Update(ctx, scope, post.ID, PostPatch{Content: &newContent})
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestDeletePost(t *testing.T) {
	scope := Scope{UserID: "user-1"}
	_, accounts, posts := newTestServices(t)
	account := connectAccount(t, accounts, scope, models.PlatformTwitter)
	ctx := context.Background()

	post, err := posts.Create(ctx, scope, account.ID, "bye", nil)
	require.NoError(t, err)

	// Deleting someone else's post does not touch the row.
	assert.ErrorIs(t, posts.Delete(ctx, Scope{UserID: "user-2"}, post.ID), ErrNotFound)

	require.NoError(t, posts.Delete(ctx, scope, post.ID))
	assert.ErrorIs(t, posts.Delete(ctx, scope, post.ID), ErrNotFound)

	listed, err := posts.List(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAccountsByPlatformScoped(t *testing.T) {
	_, accounts, _ := newTestServices(t)
	ctx := context.Background()

	org := "org-a"
	scoped := Scope{UserID: "user-1", OrgID: &org}
	personal := Scope{UserID: "user-1"}

	connectAccount(t, accounts, scoped, models.PlatformTwitter)
	connectAccount(t, accounts, personal, models.PlatformLinkedIn)

	byPlatform, err := accounts.ByPlatform(ctx, scoped)
	require.NoError(t, err)
	assert.Len(t, byPlatform, 1)
	_, hasTwitter := byPlatform[models.PlatformTwitter]
	assert.True(t, hasTwitter)
}

func TestConnectRejectsUnknownPlatform(t *testing.T) {
	_, accounts, _ := newTestServices(t)

	_, err := accounts.Connect(context.Background(), Scope{UserID: "user-1"}, &models.SocialAccount{
		Platform: "friendster",
	})

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}
