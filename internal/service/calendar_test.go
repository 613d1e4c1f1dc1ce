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

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validConfig() GenerationConfig {
	return GenerationConfig{
		StartDate:    date(2025, time.January, 1),
		EndDate:      date(2025, time.January, 7),
		PostsPerDay:  2,
		Platforms:    []string{models.PlatformTwitter, models.PlatformLinkedIn},
		ContentTheme: "Launch",
		Tone:         ToneCasual,
	}
}

func TestValidateGenerationConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerationConfig)
	}{
		{"end before start", func(c *GenerationConfig) {
			c.EndDate = c.StartDate.AddDate(0, 0, -1)
		}},
		{"zero posts per day", func(c *GenerationConfig) { c.PostsPerDay = 0 }},
		{"negative posts per day", func(c *GenerationConfig) { c.PostsPerDay = -3 }},
		{"posts per day past last slot hour", func(c *GenerationConfig) { c.PostsPerDay = 5 }},
		{"empty platforms", func(c *GenerationConfig) { c.Platforms = nil }},
		{"unknown platform", func(c *GenerationConfig) { c.Platforms = []string{"myspace"} }},
		{"unknown tone", func(c *GenerationConfig) { c.Tone = "sarcastic" }},
		{"zero dates", func(c *GenerationConfig) {
			c.StartDate = time.Time{}
			c.EndDate = time.Time{}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := ValidateGenerationConfig(cfg)
			require.Error(t, err)

			var validation *ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}

	assert.NoError(t, ValidateGenerationConfig(validConfig()))
}

func TestExpandCalendarSlotCount(t *testing.T) {
	tests := []struct {
		days        int
		postsPerDay int
	}{
		{1, 1}, {1, 4}, {7, 2}, {30, 3}, {365, 1},
	}

	for _, tt := range tests {
		cfg := validConfig()
		cfg.EndDate = cfg.StartDate.AddDate(0, 0, tt.days-1)
		cfg.PostsPerDay = tt.postsPerDay

		slots, err := ExpandCalendar(cfg)
		require.NoError(t, err)
		assert.Len(t, slots, tt.days*tt.postsPerDay)
	}
}

func TestExpandCalendarSameDayRange(t *testing.T) {
	cfg := validConfig()
	cfg.EndDate = cfg.StartDate

	slots, err := ExpandCalendar(cfg)
	require.NoError(t, err)
	assert.Len(t, slots, cfg.PostsPerDay)
}

func TestExpandCalendarPlatformRotation(t *testing.T) {
	cfg := validConfig()
	cfg.EndDate = cfg.StartDate.AddDate(0, 0, 4)
	cfg.PostsPerDay = 3
	cfg.Platforms = []string{models.PlatformTwitter, models.PlatformLinkedIn, models.PlatformFacebook, models.PlatformInstagram}

	slots, err := ExpandCalendar(cfg)
	require.NoError(t, err)

	// The rotation counter runs across the whole range, not per day.
	for i, slot := range slots {
		k := slot.DayOffset*cfg.PostsPerDay + slot.PostNum
		assert.Equal(t, i, k)
		assert.Equal(t, cfg.Platforms[k%len(cfg.Platforms)], slot.Platform)
	}

	// Deterministic: a second run yields the identical sequence.
	again, err := ExpandCalendar(cfg)
	require.NoError(t, err)
	assert.Equal(t, slots, again)
}

func TestExpandCalendarTimeSpacing(t *testing.T) {
	cfg := validConfig()
	cfg.PostsPerDay = 4
	cfg.Platforms = []string{models.PlatformTwitter}

	slots, err := ExpandCalendar(cfg)
	require.NoError(t, err)

	for _, slot := range slots {
		assert.Equal(t, 9+4*slot.PostNum, slot.ScheduledTime.Hour())
		assert.Zero(t, slot.ScheduledTime.Minute())
		assert.Zero(t, slot.ScheduledTime.Second())
		assert.Equal(t, slot.Date.Day(), slot.ScheduledTime.Day())
	}
}

func TestExpandCalendarOrderingAndExample(t *testing.T) {
	cfg := GenerationConfig{
		StartDate:    date(2025, time.January, 1),
		EndDate:      date(2025, time.January, 2),
		PostsPerDay:  2,
		Platforms:    []string{models.PlatformTwitter, models.PlatformLinkedIn},
		ContentTheme: "Launch",
		Tone:         ToneCasual,
	}

	slots, err := ExpandCalendar(cfg)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	expect := []struct {
		day      int
		hour     int
		platform string
	}{
		{1, 9, models.PlatformTwitter},
		{1, 13, models.PlatformLinkedIn},
		{2, 9, models.PlatformTwitter},
		{2, 13, models.PlatformLinkedIn},
	}
	for i, e := range expect {
		assert.Equal(t, e.day, slots[i].ScheduledTime.Day(), "slot %d day", i)
		assert.Equal(t, e.hour, slots[i].ScheduledTime.Hour(), "slot %d hour", i)
		assert.Equal(t, e.platform, slots[i].Platform, "slot %d platform", i)
	}
}

func TestExpandCalendarIgnoresTimeOfDayOnInputs(t *testing.T) {
	cfg := validConfig()
	cfg.StartDate = time.Date(2025, time.January, 1, 23, 59, 0, 0, time.UTC)
	cfg.EndDate = time.Date(2025, time.January, 2, 0, 1, 0, 0, time.UTC)
	cfg.PostsPerDay = 1

	slots, err := ExpandCalendar(cfg)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func newCalendarService(t *testing.T, captioner CaptionGenerator) (*CalendarService, *AccountService, *PostService) {
	t.Helper()

	db, accounts, posts := newTestServices(t)
	monitoring := NewMonitoringService(db, zap.NewNop())
	return NewCalendarService(captioner, posts, accounts, monitoring, zap.NewNop()), accounts, posts
}

func TestGeneratePersistsEverySlot(t *testing.T) {
	scope := Scope{UserID: "user-1"}
	calendar, accounts, posts := newCalendarService(t, &stubCaptioner{})

	twitter := connectAccount(t, accounts, scope, models.PlatformTwitter)
	linkedin := connectAccount(t, accounts, scope, models.PlatformLinkedIn)

	cfg := GenerationConfig{
		StartDate:    date(2025, time.January, 1),
		EndDate:      date(2025, time.January, 2),
		PostsPerDay:  2,
		Platforms:    []string{models.PlatformTwitter, models.PlatformLinkedIn},
		ContentTheme: "Launch",
		Tone:         ToneCasual,
	}

	report, err := calendar.Generate(context.Background(), scope, cfg)
	require.NoError(t, err)

	assert.Len(t, report.Created, 4)
	assert.Zero(t, report.FallbackSlots)
	assert.Empty(t, report.Skipped)

	listed, err := posts.List(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, listed, 4)

	// Ordered by scheduled time, each tied to the account of its platform.
	assert.Equal(t, twitter.ID, listed[0].SocialAccountID)
	assert.Equal(t, linkedin.ID, listed[1].SocialAccountID)
	assert.Equal(t, models.PlatformTwitter, listed[0].Platform)
	assert.Equal(t, models.PlatformLinkedIn, listed[1].Platform)
	for _, post := range listed {
		assert.Equal(t, models.PostStatusScheduled, post.Status)
	}
}

func TestGenerateFallsBackPerSlot(t *testing.T) {
	scope := Scope{UserID: "user-1"}
	// Second slot's AI call fails; everything else succeeds.
	calendar, accounts, _ := newCalendarService(t, &stubCaptioner{failOn: map[int]bool{1: true}})

	connectAccount(t, accounts, scope, models.PlatformTwitter)

	cfg := validConfig()
	cfg.Platforms = []string{models.PlatformTwitter}
	cfg.EndDate = cfg.StartDate.AddDate(0, 0, 2)
	cfg.PostsPerDay = 1

	report, err := calendar.Generate(context.Background(), scope, cfg)
	require.NoError(t, err)

	// All three slots produced content, exactly one by the fallback path.
	assert.Len(t, report.Created, 3)
	assert.Equal(t, 1, report.FallbackSlots)
	for _, post := range report.Created {
		assert.NotEmpty(t, post.Content)
	}
}

func TestGenerateAllAIFailuresStillCompletes(t *testing.T) {
	scope := Scope{UserID: "user-1"}
	calendar, accounts, _ := newCalendarService(t, failingCaptioner{})

	connectAccount(t, accounts, scope, models.PlatformLinkedIn)

	cfg := validConfig()
	cfg.Platforms = []string{models.PlatformLinkedIn}
	cfg.PostsPerDay = 2

	report, err := calendar.Generate(context.Background(), scope, cfg)
	require.NoError(t, err)
	assert.Len(t, report.Created, 14)
	assert.Equal(t, 14, report.FallbackSlots)
}

func TestGenerateReportsSkippedPlatforms(t *testing.T) {
	scope := Scope{UserID: "user-1"}
	calendar, accounts, _ := newCalendarService(t, &stubCaptioner{})

	// Only twitter is connected; linkedin slots must be reported, not lost.
	connectAccount(t, accounts, scope, models.PlatformTwitter)

	cfg := GenerationConfig{
		StartDate:    date(2025, time.January, 1),
		EndDate:      date(2025, time.January, 2),
		PostsPerDay:  2,
		Platforms:    []string{models.PlatformTwitter, models.PlatformLinkedIn},
		ContentTheme: "Launch",
		Tone:         ToneCasual,
	}

	report, err := calendar.Generate(context.Background(), scope, cfg)
	require.NoError(t, err)

	assert.Len(t, report.Created, 2)
	require.Len(t, report.Skipped, 2)
	for _, skipped := range report.Skipped {
		assert.Equal(t, models.PlatformLinkedIn, skipped.Platform)
		assert.NotEmpty(t, skipped.Reason)
	}
}

func TestGenerateRejectsInvalidConfigBeforeAnyCall(t *testing.T) {
	scope := Scope{UserID: "user-1"}
	captioner := &stubCaptioner{}
	calendar, _, _ := newCalendarService(t, captioner)

	cfg := validConfig()
	cfg.PostsPerDay = 0

	_, err := calendar.Generate(context.Background(), scope, cfg)
	require.Error(t, err)
	assert.Zero(t, captioner.calls)
}
