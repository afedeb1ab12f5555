package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"grindset/internal/adapters/http/middleware"
	"grindset/internal/adapters/llm"
	"grindset/internal/application/dashboard"
	"grindset/internal/application/orchestrators"
	"grindset/internal/domain/account"
	"grindset/internal/domain/completion"
	"grindset/internal/domain/dailyrecord"
	"grindset/internal/domain/exercise"
	"grindset/internal/domain/profile"
	"grindset/internal/domain/publish"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// badRequestErrors are validation failures whose message is safe to show.
var badRequestErrors = []error{
	account.ErrEmptyEmail,
	account.ErrInvalidEmail,
	account.ErrEmailTooLong,
	account.ErrEmptyPassword,
	account.ErrPasswordTooShort,
	profile.ErrEmptyDisplayName,
	profile.ErrDisplayNameTooLong,
	profile.ErrInvalidGender,
	profile.ErrInvalidDOB,
	profile.ErrInvalidGradYear,
	publish.ErrEmptyGoal,
	dailyrecord.ErrEmptyMessage,
	dailyrecord.ErrEmptyPlan,
	dailyrecord.ErrInvalidDate,
	completion.ErrUnknownExercise,
	orchestrators.ErrEmptyExerciseName,
}

// writeDomainError maps an application error to its HTTP response.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrAuthRequired):
		middleware.WriteOutcome(w, http.StatusUnauthorized, middleware.OutcomeUnauthenticated)
	case errors.Is(err, dashboard.ErrSignedOut):
		// The controller was replaced by a newer load or dropped at sign-out; the client reloads.
		middleware.WriteOutcome(w, http.StatusConflict, middleware.OutcomeReloadRequired)
	case errors.Is(err, dashboard.ErrProfileIncomplete):
		middleware.WriteOutcome(w, http.StatusConflict, middleware.OutcomeIncompleteProfile)
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, orchestrators.ErrAccountLocked):
		writeError(w, http.StatusLocked, err.Error())
	case errors.Is(err, orchestrators.ErrEmailAlreadyExists),
		errors.Is(err, publish.ErrGenerationInProgress),
		errors.Is(err, publish.ErrNoPreview):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, exercise.ErrMalformedAIOutput):
		slog.Warn("plan_event", "event", "malformed_output_rejected", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "the generated plan could not be read, please try again")
	case errors.Is(err, llm.ErrCompleterNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, orchestrators.ErrPersistence):
		slog.Error("internal_error", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "could not save your changes, please try again")
	default:
		for _, target := range badRequestErrors {
			if errors.Is(err, target) {
				writeError(w, http.StatusBadRequest, target.Error())
				return
			}
		}
		internalError(w, err)
	}
}

// today returns the calendar-date key in the configured time zone.
func today() string {
	return dailyrecord.DateKey(timeNow(), options.Location)
}

// handleHealthz reports liveness.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
