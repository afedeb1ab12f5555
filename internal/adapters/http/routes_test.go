package web

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"grindset/internal/adapters/http/middleware"
	"grindset/internal/adapters/metrics"
	"grindset/internal/adapters/storage"
	accountStore "grindset/internal/adapters/storage/account"
	dailyRecordStore "grindset/internal/adapters/storage/dailyrecord"
	profileStore "grindset/internal/adapters/storage/profile"
	"grindset/internal/application/orchestrators"
	"grindset/internal/domain/account"
)

func init() {
	account.HashCost = bcrypt.MinCost
}

const (
	adminEmail    = "coach@example.com"
	adminPassword = "coach-password"
	planReply     = "Sure!\n```json\n[{\"name\":\"Squats\",\"reps\":\"3x10\"},{\"Name\":\"Push-ups\",\"Reps\":\"3x8\"},{\"title\":\"Plank\"}]\n```"
)

var fixedTime = time.Date(2026, 3, 14, 6, 30, 0, 0, time.UTC)

// scriptedCompleter returns replies in order, repeating the last one.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies []string
	prompts []string
}

func (s *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return reply, nil
}

type testApp struct {
	server   *httptest.Server
	stores   *Stores
	metrics  *metrics.Metrics
	complete *scriptedCompleter
}

func newTestApp(t *testing.T, replies ...string) *testApp {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := &Stores{
		AccountStore:     accountStore.NewSQLiteStore(db),
		ProfileStore:     profileStore.NewSQLiteStore(db),
		DailyRecordStore: dailyRecordStore.NewSQLiteStore(db),
	}
	if len(replies) == 0 {
		replies = []string{planReply}
	}
	completer := &scriptedCompleter{replies: replies}
	m := metrics.New()

	prevNow := timeNow
	timeNow = func() time.Time { return fixedTime }

	err = orchestrators.ExecuteSeedAdmin(context.Background(), adminEmail, adminPassword, orchestrators.SeedAdminDeps{
		Admins: s.AccountStore,
		SignUp: orchestrators.SignUpDeps{
			AccountStore: s.AccountStore,
			ProfileStore: s.ProfileStore,
			GenerateID:   generateID,
			Now:          timeNow,
		},
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	handler, stop := NewMux(s, &Services{Completer: completer, Metrics: m}, Options{
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
		LeaderboardLimit:   20,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		stop()
		timeNow = prevNow
		db.Close()
	})
	return &testApp{server: srv, stores: s, metrics: m, complete: completer}
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (a *testApp) newClient(t *testing.T) *client {
	jar, _ := cookiejar.New(nil)
	return &client{t: t, base: a.server.URL, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, c.base+path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func (c *client) mustDo(method, path string, body any, want int) map[string]any {
	c.t.Helper()
	status, out := c.do(method, path, body)
	if status != want {
		c.t.Fatalf("%s %s: status %d, want %d (body %v)", method, path, status, want, out)
	}
	return out
}

// signUpMember creates a member, completes onboarding and returns their client.
func (a *testApp) signUpMember(t *testing.T, email, name string) *client {
	c := a.newClient(t)
	c.mustDo("POST", "/api/auth/signup", map[string]string{"email": email, "password": "password123"}, http.StatusCreated)
	c.mustDo("POST", "/api/onboarding", map[string]any{"full_name": name, "gender": "Other"}, http.StatusOK)
	return c
}

func (a *testApp) admin(t *testing.T) *client {
	c := a.newClient(t)
	c.mustDo("POST", "/api/auth/login", map[string]string{"email": adminEmail, "password": adminPassword}, http.StatusOK)
	return c
}

// TestHealthz tests the liveness endpoint.
func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	out := app.newClient(t).mustDo("GET", "/healthz", nil, http.StatusOK)
	if out["status"] != "ok" {
		t.Errorf("body = %v", out)
	}
}

// TestDashboard_RoutingOutcomes tests the unauthenticated and incomplete-profile outcomes.
func TestDashboard_RoutingOutcomes(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)

	out := c.mustDo("GET", "/api/dashboard", nil, http.StatusUnauthorized)
	if out["outcome"] != "unauthenticated" {
		t.Errorf("outcome = %v", out["outcome"])
	}

	c.mustDo("POST", "/api/auth/signup", map[string]string{"email": "New@Example.com", "password": "password123"}, http.StatusCreated)
	out = c.mustDo("GET", "/api/dashboard", nil, http.StatusConflict)
	if out["outcome"] != "incomplete_profile" {
		t.Errorf("outcome = %v", out["outcome"])
	}

	c.mustDo("POST", "/api/onboarding", map[string]any{"full_name": "Nia"}, http.StatusOK)
	out = c.mustDo("GET", "/api/dashboard", nil, http.StatusOK)
	if out["kind"] != "empty" || out["display_name"] != "Nia" {
		t.Errorf("dashboard = %v", out)
	}
}

// TestSignUp_Validation tests duplicate and invalid sign-ups.
func TestSignUp_Validation(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)

	c.mustDo("POST", "/api/auth/signup", map[string]string{"email": "a@example.com", "password": "short"}, http.StatusBadRequest)
	c.mustDo("POST", "/api/auth/signup", map[string]string{"email": "a@example.com", "password": "password123"}, http.StatusCreated)
	c.mustDo("POST", "/api/auth/signup", map[string]string{"email": "A@example.com", "password": "password123"}, http.StatusConflict)
	c.mustDo("POST", "/api/auth/login", map[string]string{"email": "a@example.com", "password": "wrong-password"}, http.StatusUnauthorized)
}

// TestPublishAndComplete walks the admin publish flow and a member completing the plan.
func TestPublishAndComplete(t *testing.T) {
	app := newTestApp(t)
	admin := app.admin(t)
	member := app.signUpMember(t, "m@example.com", "Mo")

	draft := admin.mustDo("POST", "/api/admin/generate", map[string]string{"goal": "Full body, 3 exercises"}, http.StatusOK)
	preview := draft["preview"].([]any)
	if len(preview) != 3 || draft["state"] != "previewed" {
		t.Fatalf("draft = %v", draft)
	}
	last := preview[2].(map[string]any)
	if last["id"] != float64(3) || last["name"] != "Plank" || last["reps"] != "Do until failure" {
		t.Errorf("normalized entry = %v", last)
	}

	rec := admin.mustDo("POST", "/api/admin/publish", nil, http.StatusOK)
	if rec["date"] != "2026-03-14" || rec["title"] != "Full body, 3 exercises..." {
		t.Errorf("published = %v", rec)
	}

	view := member.mustDo("GET", "/api/dashboard", nil, http.StatusOK)
	if view["kind"] != "workout" || len(view["exercises"].([]any)) != 3 {
		t.Fatalf("dashboard = %v", view)
	}

	member.mustDo("POST", "/api/dashboard/toggle", map[string]int{"exercise_id": 1}, http.StatusOK)
	member.mustDo("POST", "/api/dashboard/toggle", map[string]int{"exercise_id": 2}, http.StatusOK)
	view = member.mustDo("POST", "/api/dashboard/toggle", map[string]int{"exercise_id": 3}, http.StatusOK)
	if view["score"] != float64(30) || view["current_streak"] != float64(1) || view["already_completed_today"] != true {
		t.Errorf("after completion = %v", view)
	}

	// Un-complete and re-complete: no second increment.
	member.mustDo("POST", "/api/dashboard/toggle", map[string]int{"exercise_id": 3}, http.StatusOK)
	member.mustDo("POST", "/api/dashboard/toggle", map[string]int{"exercise_id": 3}, http.StatusOK)

	// A reload the same day starts credited; completing again changes nothing.
	view = member.mustDo("GET", "/api/dashboard", nil, http.StatusOK)
	if view["already_completed_today"] != true || view["score"] != float64(0) {
		t.Errorf("reloaded = %v", view)
	}
	for _, id := range []int{1, 2, 3} {
		member.mustDo("POST", "/api/dashboard/toggle", map[string]int{"exercise_id": id}, http.StatusOK)
	}

	members, _ := app.stores.AccountStore.ListByRole(context.Background(), account.RoleMember)
	p, err := app.stores.ProfileStore.GetByID(context.Background(), members[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.CurrentStreak != 1 || p.LastCompletionDate != "2026-03-14" {
		t.Errorf("profile streak=%d last=%q, want 1 and 2026-03-14", p.CurrentStreak, p.LastCompletionDate)
	}

	member.mustDo("POST", "/api/dashboard/toggle", map[string]int{"exercise_id": 99}, http.StatusBadRequest)
}

// TestAdmin_RoleGate tests that members cannot reach admin endpoints.
func TestAdmin_RoleGate(t *testing.T) {
	app := newTestApp(t)
	member := app.signUpMember(t, "m@example.com", "Mo")

	member.mustDo("POST", "/api/admin/generate", map[string]string{"goal": "legs"}, http.StatusForbidden)
	app.newClient(t).mustDo("POST", "/api/admin/publish", nil, http.StatusUnauthorized)
}

// TestAdmin_Errors tests empty goal, malformed output and publishing without a preview.
func TestAdmin_Errors(t *testing.T) {
	app := newTestApp(t, "I cannot help with that.", planReply)
	admin := app.admin(t)

	admin.mustDo("POST", "/api/admin/publish", nil, http.StatusConflict)
	admin.mustDo("POST", "/api/admin/generate", map[string]string{"goal": "  "}, http.StatusBadRequest)
	admin.mustDo("POST", "/api/admin/generate", map[string]string{"goal": "legs"}, http.StatusUnprocessableEntity)

	out := admin.mustDo("GET", "/api/admin/draft", nil, http.StatusOK)
	if out["state"] != "draft" {
		t.Errorf("state after malformed output = %v", out["state"])
	}
	admin.mustDo("POST", "/api/admin/generate", map[string]string{"goal": "legs"}, http.StatusOK)
}

// TestAnnouncement tests that an announcement replaces the workout and renders markdown.
func TestAnnouncement(t *testing.T) {
	app := newTestApp(t)
	admin := app.admin(t)
	member := app.signUpMember(t, "m@example.com", "Mo")

	admin.mustDo("POST", "/api/admin/generate", map[string]string{"goal": "legs"}, http.StatusOK)
	admin.mustDo("POST", "/api/admin/publish", nil, http.StatusOK)
	admin.mustDo("POST", "/api/admin/announcement", map[string]string{"message": ""}, http.StatusBadRequest)
	admin.mustDo("POST", "/api/admin/announcement", map[string]string{"message": "Gym closed **today**"}, http.StatusOK)

	view := member.mustDo("GET", "/api/dashboard", nil, http.StatusOK)
	if view["kind"] != "announcement" || len(view["exercises"].([]any)) != 0 {
		t.Fatalf("dashboard = %v", view)
	}
	if html, _ := view["message_html"].(string); !strings.Contains(html, "<strong>today</strong>") {
		t.Errorf("message_html = %q", html)
	}
}

// TestExplain tests the AskAI endpoint.
func TestExplain(t *testing.T) {
	app := newTestApp(t, planReply, "Keep your back straight.")
	admin := app.admin(t)
	member := app.signUpMember(t, "m@example.com", "Mo")
	admin.mustDo("POST", "/api/admin/generate", map[string]string{"goal": "legs"}, http.StatusOK)
	admin.mustDo("POST", "/api/admin/publish", nil, http.StatusOK)
	member.mustDo("GET", "/api/dashboard", nil, http.StatusOK)

	out := member.mustDo("POST", "/api/dashboard/explain", map[string]int{"exercise_id": 1}, http.StatusOK)
	if out["text"] != "Keep your back straight." || !strings.Contains(out["video_url"].(string), "how+to+do+Squats") {
		t.Errorf("explain = %v", out)
	}
	if got := app.complete.prompts[len(app.complete.prompts)-1]; got != `Explain "Squats" in 2 sentences + YouTube link.` {
		t.Errorf("prompt = %q", got)
	}
}

// TestLeaderboard tests ranking and the caller's marker.
func TestLeaderboard(t *testing.T) {
	app := newTestApp(t)
	admin := app.admin(t)
	first := app.signUpMember(t, "one@example.com", "One")
	second := app.signUpMember(t, "two@example.com", "Two")

	admin.mustDo("POST", "/api/admin/generate", map[string]string{"goal": "legs"}, http.StatusOK)
	admin.mustDo("POST", "/api/admin/publish", nil, http.StatusOK)
	second.mustDo("GET", "/api/dashboard", nil, http.StatusOK)
	for _, id := range []int{1, 2, 3} {
		second.mustDo("POST", "/api/dashboard/toggle", map[string]int{"exercise_id": id}, http.StatusOK)
	}

	out := first.mustDo("GET", "/api/leaderboard", nil, http.StatusOK)
	entries := out["entries"].([]any)
	if len(entries) != 2 {
		t.Fatalf("entries = %v", entries)
	}
	top := entries[0].(map[string]any)
	me := entries[1].(map[string]any)
	if top["display_name"] != "Two" || top["current_streak"] != float64(1) || top["is_you"] != false {
		t.Errorf("top = %v", top)
	}
	if me["display_name"] != "One" || me["is_you"] != true || me["rank"] != float64(2) {
		t.Errorf("me = %v", me)
	}
	if _, leaked := top["UserID"]; leaked {
		t.Error("user id exposed on leaderboard")
	}
}

// TestLogout tests that a signed-out client loses access.
func TestLogout(t *testing.T) {
	app := newTestApp(t)
	member := app.signUpMember(t, "m@example.com", "Mo")
	member.mustDo("GET", "/api/dashboard", nil, http.StatusOK)

	out := member.mustDo("POST", "/api/auth/logout", nil, http.StatusOK)
	if out["outcome"] != "signed_out" {
		t.Errorf("outcome = %v", out["outcome"])
	}
	member.mustDo("GET", "/api/dashboard", nil, http.StatusUnauthorized)
	if dashboards.Len() != 0 {
		t.Errorf("dashboards = %d, want 0", dashboards.Len())
	}
}

// TestSessionExpiry_DropsState tests that an expired session's dashboard and admin draft are released.
func TestSessionExpiry_DropsState(t *testing.T) {
	app := newTestApp(t)
	admin := app.admin(t)
	member := app.signUpMember(t, "m@example.com", "Mo")
	other := app.signUpMember(t, "o@example.com", "Ola")

	member.mustDo("GET", "/api/dashboard", nil, http.StatusOK)
	other.mustDo("GET", "/api/dashboard", nil, http.StatusOK)
	admin.mustDo("GET", "/api/admin/draft", nil, http.StatusOK)
	if dashboards.Len() != 2 || publishers.Len() != 1 {
		t.Fatalf("dashboards = %d, publishers = %d, want 2 and 1", dashboards.Len(), publishers.Len())
	}

	timeNow = func() time.Time { return fixedTime.Add(middleware.SessionTTL + time.Minute) }

	// Presenting the expired cookie releases that session's dashboard.
	member.mustDo("GET", "/api/dashboard", nil, http.StatusUnauthorized)
	if dashboards.Len() != 1 {
		t.Errorf("dashboards after expired request = %d, want 1", dashboards.Len())
	}

	// Sessions never presented again are released by the sweep.
	if n := sessions.Sweep(); n != 2 {
		t.Errorf("Sweep = %d, want 2", n)
	}
	if dashboards.Len() != 0 || publishers.Len() != 0 {
		t.Errorf("dashboards = %d, publishers = %d after sweep, want 0", dashboards.Len(), publishers.Len())
	}
	if got := testutil.ToFloat64(app.metrics.ActiveDashboards); got != 0 {
		t.Errorf("active_dashboards = %v, want 0", got)
	}
}

// TestDashboard_ReplacedController tests that an operation on a controller replaced by a
// newer load asks the client to reload instead of signing it out.
func TestDashboard_ReplacedController(t *testing.T) {
	app := newTestApp(t)
	member := app.signUpMember(t, "m@example.com", "Mo")
	member.mustDo("GET", "/api/dashboard", nil, http.StatusOK)

	u, _ := url.Parse(app.server.URL)
	var token string
	for _, c := range member.http.Jar.Cookies(u) {
		if c.Name == "grindset_session" {
			token = c.Value
		}
	}
	stale, ok := dashboards.Get(token)
	if !ok {
		t.Fatal("no controller for the session")
	}

	member.mustDo("GET", "/api/dashboard", nil, http.StatusOK)
	_, err := stale.Toggle(context.Background(), 1)
	if err == nil {
		t.Fatal("replaced controller accepted a toggle")
	}

	rec := httptest.NewRecorder()
	writeDomainError(rec, err)
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "reload_required") {
		t.Errorf("status = %d, body = %s, want 409 reload_required", rec.Code, rec.Body.String())
	}

	// The session itself is still valid.
	member.mustDo("GET", "/api/leaderboard", nil, http.StatusOK)
}

// TestMetricsEndpoint tests that request metrics are exported.
func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)
	c.mustDo("GET", "/healthz", nil, http.StatusOK)

	resp, err := http.Get(app.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `route="GET /healthz"`) {
		t.Errorf("metrics missing healthz route label")
	}
}
