package web

import (
	"net/http"

	"grindset/internal/adapters/http/middleware"
	"grindset/internal/adapters/markdown"
	"grindset/internal/application/dashboard"
	"grindset/internal/application/orchestrators"
	"grindset/internal/domain/profile"
)

type dashboardResponse struct {
	dashboard.View
	MessageHTML string `json:"message_html,omitempty"`
}

type exerciseRequest struct {
	ExerciseID int `json:"exercise_id"`
}

type onboardingRequest struct {
	FullName       string `json:"full_name"`
	DOB            string `json:"dob"`
	Gender         string `json:"gender"`
	GraduationYear int    `json:"graduation_year"`
	Height         string `json:"height"`
	Weight         string `json:"weight"`
}

func dashboardDeps() dashboard.Deps {
	return dashboard.Deps{
		Profiles:         stores.ProfileStore,
		Records:          stores.DailyRecordStore,
		Leaderboard:      stores.ProfileStore,
		Completer:        services.Completer,
		Metrics:          services.Metrics,
		LeaderboardLimit: options.LeaderboardLimit,
	}
}

// loadDashboard builds a fresh controller for the session and registers it.
func loadDashboard(r *http.Request, sess middleware.Session) (*dashboard.Controller, error) {
	c, err := dashboard.Load(r.Context(), dashboard.SessionContext{UserID: sess.AccountID, Today: today()}, dashboardDeps())
	if err != nil {
		return nil, err
	}
	dashboards.Put(sess.Token, c)
	return c, nil
}

// controllerFor returns the session's live controller, loading one if none exists.
func controllerFor(r *http.Request) (*dashboard.Controller, error) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return nil, dashboard.ErrAuthRequired
	}
	if c, ok := dashboards.Get(sess.Token); ok {
		return c, nil
	}
	return loadDashboard(r, sess)
}

func renderView(w http.ResponseWriter, v dashboard.View) {
	resp := dashboardResponse{View: v}
	if v.Message != "" {
		html, err := markdown.Render(v.Message)
		if err != nil {
			internalError(w, err)
			return
		}
		resp.MessageHTML = html
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleOnboarding handles POST /api/onboarding
func handleOnboarding(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	var in onboardingRequest
	if err := strictDecode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	p, err := orchestrators.ExecuteCompleteOnboarding(r.Context(), orchestrators.CompleteOnboardingInput{
		UserID: sess.AccountID,
		Onboarding: profile.Onboarding{
			DisplayName:    in.FullName,
			DOB:            in.DOB,
			Gender:         in.Gender,
			GraduationYear: in.GraduationYear,
			Height:         in.Height,
			Weight:         in.Weight,
		},
	}, orchestrators.CompleteOnboardingDeps{
		ProfileStore: stores.ProfileStore,
		Now:          timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// The next dashboard request reloads with the new display name.
	dashboards.Remove(sess.Token)
	writeJSON(w, http.StatusOK, map[string]any{
		"display_name":   p.DisplayName,
		"current_streak": p.CurrentStreak,
	})
}

// handleDashboard handles GET /api/dashboard. Every load starts a fresh session state.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	c, err := loadDashboard(r, sess)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	renderView(w, c.View())
}

// handleToggle handles POST /api/dashboard/toggle
func handleToggle(w http.ResponseWriter, r *http.Request) {
	var in exerciseRequest
	if err := strictDecode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	c, err := controllerFor(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	v, err := c.Toggle(r.Context(), in.ExerciseID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	renderView(w, v)
}

// handleExplain handles POST /api/dashboard/explain
func handleExplain(w http.ResponseWriter, r *http.Request) {
	var in exerciseRequest
	if err := strictDecode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	c, err := controllerFor(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	explanation, err := c.AskAI(r.Context(), in.ExerciseID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, explanation)
}

// handleLeaderboard handles GET /api/leaderboard
func handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	c, err := controllerFor(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := c.OpenLeaderboard(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
