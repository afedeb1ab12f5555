package web

import (
	"net/http"

	"grindset/internal/adapters/http/middleware"
	domainAccount "grindset/internal/domain/account"
)

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealthz)
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics.Handler())
	}

	mux.HandleFunc("POST /api/auth/signup", handleSignUp)
	mux.HandleFunc("POST /api/auth/login", handleLogin)
	mux.HandleFunc("POST /api/auth/logout", handleLogout)

	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	mux.Handle("POST /api/onboarding", authed(handleOnboarding))
	mux.Handle("GET /api/dashboard", authed(handleDashboard))
	mux.Handle("POST /api/dashboard/toggle", authed(handleToggle))
	mux.Handle("POST /api/dashboard/explain", authed(handleExplain))
	mux.Handle("GET /api/leaderboard", authed(handleLeaderboard))

	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole(domainAccount.RoleAdmin)(h)
	}
	mux.Handle("GET /api/admin/draft", admin(handleAdminDraft))
	mux.Handle("POST /api/admin/generate", admin(handleAdminGenerate))
	mux.Handle("POST /api/admin/publish", admin(handleAdminPublish))
	mux.Handle("POST /api/admin/announcement", admin(handleAdminAnnouncement))
}
