package dailyrecord

import (
	"errors"
	"strings"
	"time"

	"grindset/internal/domain/exercise"
)

// DateLayout is the calendar-date key format.
const DateLayout = "2006-01-02"

// AnnouncementTitle is the title stored with announcement-only records.
const AnnouncementTitle = "Announcement"

// maxTitleRunes bounds the goal prefix used as a workout title.
const maxTitleRunes = 50

// Kind classifies what a day's record shows to end users.
type Kind string

// Record kinds
const (
	KindEmpty        Kind = "empty"
	KindWorkout      Kind = "workout"
	KindAnnouncement Kind = "announcement"
)

// Domain errors
var (
	ErrInvalidDate  = errors.New("date must be formatted as YYYY-MM-DD")
	ErrEmptyPlan    = errors.New("a workout must contain at least one exercise")
	ErrEmptyMessage = errors.New("announcement message cannot be empty")
	ErrMixedContent = errors.New("a record cannot carry both exercises and a message")
)

// DailyRecord is the content published for one calendar date.
// At most one record exists per date; publishing again overwrites it.
type DailyRecord struct {
	Date      string // YYYY-MM-DD in the publisher's time zone
	Title     string
	Exercises []exercise.Exercise
	Message   string // empty means no announcement
	UpdatedAt time.Time
}

// NewWorkout builds the record stored when a workout plan is published.
// Any announcement for the date is cleared.
// PRE: plan has been normalized
// POST: Message is empty, Title derived from goal
func NewWorkout(date, goal string, plan []exercise.Exercise, now time.Time) DailyRecord {
	return DailyRecord{
		Date:      date,
		Title:     WorkoutTitle(goal),
		Exercises: plan,
		UpdatedAt: now,
	}
}

// NewAnnouncement builds the record stored when an announcement is posted.
// Any workout for the date is cleared.
// POST: Exercises is an empty, non-nil slice
func NewAnnouncement(date, message string, now time.Time) DailyRecord {
	return DailyRecord{
		Date:      date,
		Title:     AnnouncementTitle,
		Exercises: []exercise.Exercise{},
		Message:   message,
		UpdatedAt: now,
	}
}

// WorkoutTitle truncates the admin's goal to a short title.
func WorkoutTitle(goal string) string {
	goal = strings.TrimSpace(goal)
	runes := []rune(goal)
	if len(runes) > maxTitleRunes {
		runes = runes[:maxTitleRunes]
	}
	return string(runes) + "..."
}

// Kind reports which variant the record represents.
// A record with exercises is a workout even if a legacy message is attached.
func (r DailyRecord) Kind() Kind {
	switch {
	case len(r.Exercises) > 0:
		return KindWorkout
	case strings.TrimSpace(r.Message) != "":
		return KindAnnouncement
	default:
		return KindEmpty
	}
}

// Validate checks a record before it is persisted.
// PRE: DailyRecord struct is populated
// POST: Returns nil if valid, error otherwise
func (r *DailyRecord) Validate() error {
	if !IsDateKey(r.Date) {
		return ErrInvalidDate
	}
	hasMessage := strings.TrimSpace(r.Message) != ""
	if len(r.Exercises) > 0 && hasMessage {
		return ErrMixedContent
	}
	if len(r.Exercises) == 0 && !hasMessage {
		if r.Title == AnnouncementTitle {
			return ErrEmptyMessage
		}
		return ErrEmptyPlan
	}
	return nil
}

// DateKey returns the calendar-date key of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// IsDateKey reports whether s is a valid YYYY-MM-DD key.
func IsDateKey(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
