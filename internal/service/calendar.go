package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/postloom/postloom/internal/models"
)

// maxPostsPerDay keeps the last slot of a day at 21:00; one more would push
// the 9+4*n hour past midnight.
const maxPostsPerDay = 4

// firstSlotHour and slotSpacingHours define the time-of-day heuristic:
// slot n within a day lands at 9+4*n o'clock, minutes and seconds zero.
const (
	firstSlotHour    = 9
	slotSpacingHours = 4
)

// CaptionGenerator produces caption text for one slot. The production
// implementation is *Captioner; tests substitute their own.
type CaptionGenerator interface {
	Generate(ctx context.Context, theme, platform string, tone Tone) (string, error)
}

// CalendarService turns a generation config into persisted scheduled posts.
type CalendarService struct {
	captioner  CaptionGenerator
	posts      *PostService
	accounts   *AccountService
	monitoring *MonitoringService
	logger     *zap.Logger
}

// SkippedSlot reports a slot dropped from a batch because no connected
// account matched its platform.
type SkippedSlot struct {
	Date     time.Time `json:"date"`
	Platform string    `json:"platform"`
	Reason   string    `json:"reason"`
}

// GenerateReport is the outcome of one batch run. Creation is best-effort:
// a persistence failure aborts remaining slots but everything already
// created stays, and the report says exactly what happened.
type GenerateReport struct {
	Created       []models.ScheduledPost `json:"created"`
	FallbackSlots int                    `json:"fallback_slots"`
	Skipped       []SkippedSlot          `json:"skipped"`
}

func NewCalendarService(captioner CaptionGenerator, posts *PostService, accounts *AccountService, monitoring *MonitoringService, logger *zap.Logger) *CalendarService {
	return &CalendarService{
		captioner:  captioner,
		posts:      posts,
		accounts:   accounts,
		monitoring: monitoring,
		logger:     logger,
	}
}

// ValidateGenerationConfig rejects bad input before any network or database
// call is made.
func ValidateGenerationConfig(cfg GenerationConfig) error {
	start := dateOnly(cfg.StartDate)
	end := dateOnly(cfg.EndDate)

	if start.IsZero() || end.IsZero() {
		return &ValidationError{Field: "date range", Reason: "start and end dates are required"}
	}
	if end.Before(start) {
		return &ValidationError{Field: "date range", Reason: "end date must not be before start date"}
	}
	if cfg.PostsPerDay < 1 {
		return &ValidationError{Field: "posts_per_day", Reason: "must be at least 1"}
	}
	if cfg.PostsPerDay > maxPostsPerDay {
		return &ValidationError{Field: "posts_per_day", Reason: fmt.Sprintf("must be at most %d", maxPostsPerDay)}
	}
	if len(cfg.Platforms) == 0 {
		return &ValidationError{Field: "platforms", Reason: "at least one platform is required"}
	}
	for _, platform := range cfg.Platforms {
		if !models.IsKnownPlatform(platform) {
			return &ValidationError{Field: "platforms", Reason: fmt.Sprintf("unknown platform %q", platform)}
		}
	}
	if !cfg.Tone.Valid() {
		return &ValidationError{Field: "tone", Reason: fmt.Sprintf("unknown tone %q", cfg.Tone)}
	}
	return nil
}

// ExpandCalendar enumerates every (day, post) pair of the range in
// day-major order. Platform assignment rotates with a single counter
// running across the whole range, so the same config always produces the
// same sequence.
func ExpandCalendar(cfg GenerationConfig) ([]Slot, error) {
	if err := ValidateGenerationConfig(cfg); err != nil {
		return nil, err
	}

	start := dateOnly(cfg.StartDate)
	end := dateOnly(cfg.EndDate)

	var slots []Slot
	dayOffset := 0
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		for postNum := 0; postNum < cfg.PostsPerDay; postNum++ {
			k := dayOffset*cfg.PostsPerDay + postNum
			slots = append(slots, Slot{
				Date:      date,
				DayOffset: dayOffset,
				PostNum:   postNum,
				Platform:  cfg.Platforms[k%len(cfg.Platforms)],
				ScheduledTime: time.Date(
					date.Year(), date.Month(), date.Day(),
					firstSlotHour+slotSpacingHours*postNum, 0, 0, 0,
					date.Location()),
			})
		}
		dayOffset++
	}

	return slots, nil
}

// Generate runs the full batch pipeline: expand the range, generate caption
// text per slot (AI first, template fallback on failure), and persist each
// slot against the account matching its platform.
//
// A slot whose platform has no connected account in scope is skipped and
// reported, not silently dropped. A persistence failure stops the batch and
// returns both the error and the report of what was already created.
func (s *CalendarService) Generate(ctx context.Context, scope Scope, cfg GenerationConfig) (*GenerateReport, error) {
	slots, err := ExpandCalendar(cfg)
	if err != nil {
		return nil, err
	}

	accountsByPlatform, err := s.accounts.ByPlatform(ctx, scope)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Generating calendar batch",
		zap.Int("slots", len(slots)),
		zap.Strings("platforms", cfg.Platforms),
		zap.String("tone", string(cfg.Tone)))

	report := &GenerateReport{
		Created: []models.ScheduledPost{},
		Skipped: []SkippedSlot{},
	}

	for _, slot := range slots {
		account, ok := accountsByPlatform[slot.Platform]
		if !ok {
			skipped := SkippedSlot{
				Date:     slot.Date,
				Platform: slot.Platform,
				Reason:   "no connected account for platform",
			}
			report.Skipped = append(report.Skipped, skipped)

			s.logger.Warn("Skipping slot without connected account",
				zap.String("platform", slot.Platform),
				zap.Time("date", slot.Date))
			s.recordSkip(slot)
			continue
		}

		content, usedFallback := s.captionForSlot(ctx, cfg, slot)
		if usedFallback {
			report.FallbackSlots++
		}

		when := slot.ScheduledTime
		post, err := s.posts.Create(ctx, scope, account.ID, content, &when)
		if err != nil {
			// Best-effort batch: keep what was created, stop here.
			return report, fmt.Errorf("failed to persist slot for %s on %s: %w",
				slot.Platform, slot.Date.Format("2006-01-02"), err)
		}

		report.Created = append(report.Created, *post)
	}

	s.logger.Info("Calendar batch completed",
		zap.Int("created", len(report.Created)),
		zap.Int("fallback_slots", report.FallbackSlots),
		zap.Int("skipped", len(report.Skipped)))

	return report, nil
}

// captionForSlot tries the AI generator and degrades to template content.
// Failure of the AI call is isolated to the slot and never aborts the
// batch or surfaces to the user.
func (s *CalendarService) captionForSlot(ctx context.Context, cfg GenerationConfig, slot Slot) (content string, usedFallback bool) {
	content, err := s.captioner.Generate(ctx, cfg.ContentTheme, slot.Platform, cfg.Tone)
	if err == nil {
		return content, false
	}

	s.logger.Warn("AI caption failed, using template fallback",
		zap.String("platform", slot.Platform),
		zap.Int("day_offset", slot.DayOffset),
		zap.Error(err))

	return FallbackCaption(cfg.Tone, cfg.ContentTheme, slot.Platform, slot.DayOffset), true
}

func (s *CalendarService) recordSkip(slot Slot) {
	err := s.monitoring.RecordError("WARN", "calendar",
		"Slot skipped during batch generation",
		"no connected account for platform",
		WithPlatform(slot.Platform),
		WithContext(map[string]interface{}{
			"date":     slot.Date.Format("2006-01-02"),
			"post_num": slot.PostNum,
		}))
	if err != nil {
		s.logger.Error("Failed to record skipped slot", zap.Error(err))
	}
}

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
