package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrForbidden       = errors.New("not owned by caller")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotEditable     = errors.New("post is no longer editable")
)

// ValidationError describes rejected input. It is returned before any
// network or database call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Scope bounds every read and write to one user and one organization
// (nil OrgID means the personal scope). It is passed explicitly through
// every call chain instead of living in ambient state.
type Scope struct {
	UserID string
	OrgID  *string
}

// Tone selects the voice used for generated captions.
type Tone string

const (
	ToneProfessional  Tone = "professional"
	ToneCasual        Tone = "casual"
	ToneFriendly      Tone = "friendly"
	ToneInformative   Tone = "informative"
	ToneInspirational Tone = "inspirational"
)

// Tones lists every recognized tone.
var Tones = []Tone{ToneProfessional, ToneCasual, ToneFriendly, ToneInformative, ToneInspirational}

func (t Tone) Valid() bool {
	for _, known := range Tones {
		if t == known {
			return true
		}
	}
	return false
}

// GenerationConfig is the input of one calendar generation run. Dates are
// inclusive on both ends; times on them are ignored.
type GenerationConfig struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	PostsPerDay  int       `json:"posts_per_day"`
	Platforms    []string  `json:"platforms"`
	ContentTheme string    `json:"content_theme"`
	Tone         Tone      `json:"tone"`
}

// Slot is one (day, position-within-day) unit produced by calendar
// expansion. Content is filled in by the generation step.
type Slot struct {
	Date          time.Time
	DayOffset     int
	PostNum       int
	Platform      string
	ScheduledTime time.Time
	Content       string
}
