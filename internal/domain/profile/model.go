package profile

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxDisplayNameLength = 80
)

// Gender values accepted by onboarding.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// ValidGenders contains all valid gender values.
var ValidGenders = []string{GenderMale, GenderFemale, GenderOther}

// Domain errors
var (
	ErrEmptyDisplayName   = errors.New("display name cannot be empty")
	ErrDisplayNameTooLong = errors.New("display name cannot exceed 80 characters")
	ErrInvalidGender      = errors.New("gender must be one of: Male, Female, Other")
	ErrInvalidDOB         = errors.New("date of birth must be formatted as YYYY-MM-DD")
	ErrInvalidGradYear    = errors.New("graduation year must be between 1950 and 2100")
)

// Profile is the per-user challenge record.
// ID is the identity assigned by the auth collaborator (the account ID).
type Profile struct {
	ID                 string
	DisplayName        string
	CurrentStreak      int
	LastCompletionDate string // YYYY-MM-DD; empty when the user has never completed a plan

	// Onboarding-only fields
	DOB            string
	Gender         string
	GraduationYear int
	Height         string
	Weight         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsComplete reports whether onboarding has set a display name.
func (p Profile) IsComplete() bool {
	return strings.TrimSpace(p.DisplayName) != ""
}

// CompletedOn reports whether the day's plan was already completed on date.
func (p Profile) CompletedOn(date string) bool {
	return p.LastCompletionDate != "" && p.LastCompletionDate == date
}

// RecordCompletion applies the once-per-day streak rule.
// The streak never resets on a missed day; it only grows.
// PRE: today is a YYYY-MM-DD key
// POST: applied is false and p is returned unchanged when today was already recorded
// (or when LastCompletionDate is later than today); otherwise CurrentStreak grows by one
// INVARIANT: LastCompletionDate never decreases
func (p Profile) RecordCompletion(today string) (Profile, bool) {
	// YYYY-MM-DD keys order lexically.
	if p.LastCompletionDate != "" && p.LastCompletionDate >= today {
		return p, false
	}
	p.CurrentStreak++
	p.LastCompletionDate = today
	return p, true
}

// Onboarding carries the fields captured when a user completes their profile.
type Onboarding struct {
	DisplayName    string
	DOB            string
	Gender         string
	GraduationYear int
	Height         string
	Weight         string
}

// Validate checks onboarding input.
// PRE: Onboarding struct is populated
// POST: Returns nil if valid, error otherwise
func (o *Onboarding) Validate() error {
	name := strings.TrimSpace(o.DisplayName)
	if name == "" {
		return ErrEmptyDisplayName
	}
	if len([]rune(name)) > MaxDisplayNameLength {
		return ErrDisplayNameTooLong
	}
	if o.Gender != "" && !isValidGender(o.Gender) {
		return ErrInvalidGender
	}
	if o.DOB != "" {
		if _, err := time.Parse("2006-01-02", o.DOB); err != nil {
			return ErrInvalidDOB
		}
	}
	if o.GraduationYear != 0 && (o.GraduationYear < 1950 || o.GraduationYear > 2100) {
		return ErrInvalidGradYear
	}
	return nil
}

// Apply copies onboarding fields onto the profile.
// Streak fields are left untouched.
func (p *Profile) Apply(o Onboarding, now time.Time) {
	p.DisplayName = strings.TrimSpace(o.DisplayName)
	p.DOB = o.DOB
	p.Gender = o.Gender
	p.GraduationYear = o.GraduationYear
	p.Height = o.Height
	p.Weight = o.Weight
	p.UpdatedAt = now
}

func isValidGender(g string) bool {
	for _, v := range ValidGenders {
		if g == v {
			return true
		}
	}
	return false
}
