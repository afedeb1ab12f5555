package web

import (
	"net/http"

	"github.com/google/uuid"

	"grindset/internal/adapters/http/middleware"
	"grindset/internal/application/orchestrators"
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// handleSignUp handles POST /api/auth/signup
func handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := strictDecode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result, err := orchestrators.ExecuteSignUp(r.Context(), orchestrators.SignUpInput{
		Email:    in.Email,
		Password: in.Password,
	}, orchestrators.SignUpDeps{
		AccountStore: stores.AccountStore,
		ProfileStore: stores.ProfileStore,
		Sender:       services.Sender,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if !startSession(w, result.AccountID, result.Email, result.Role) {
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{AccountID: result.AccountID, Email: result.Email, Role: result.Role})
}

// handleLogin handles POST /api/auth/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := strictDecode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    in.Email,
		Password: in.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		Now:          timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if !startSession(w, result.AccountID, result.Email, result.Role) {
		return
	}
	writeJSON(w, http.StatusOK, authResponse{AccountID: result.AccountID, Email: result.Email, Role: result.Role})
}

// handleLogout handles POST /api/auth/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		endSession(sess.Token)
	}
	middleware.ClearSessionCookie(w)
	middleware.WriteOutcome(w, http.StatusOK, middleware.OutcomeSignedOut)
}

func startSession(w http.ResponseWriter, accountID, email, role string) bool {
	token, err := sessions.Create(accountID, email, role)
	if err != nil {
		internalError(w, err)
		return false
	}
	middleware.SetSessionCookie(w, token)
	return true
}

func endSession(token string) {
	sessions.Delete(token)
	dropSessionState(token)
}

// dropSessionState forgets the dashboard and admin draft held for token.
// It also runs when a session expires.
func dropSessionState(token string) {
	dashboards.Remove(token)
	publishers.Remove(token)
}
