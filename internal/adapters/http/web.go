package web

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"grindset/internal/adapters/email"
	"grindset/internal/adapters/http/middleware"
	"grindset/internal/adapters/llm"
	"grindset/internal/adapters/metrics"
	accountStore "grindset/internal/adapters/storage/account"
	dailyRecordStore "grindset/internal/adapters/storage/dailyrecord"
	profileStore "grindset/internal/adapters/storage/profile"
	"grindset/internal/application/dashboard"
	"grindset/internal/application/publishing"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore     accountStore.Store
	ProfileStore     profileStore.Store
	DailyRecordStore dailyRecordStore.Store
}

// Services holds the external collaborators handlers call.
type Services struct {
	Completer llm.Completer
	Sender    email.Sender // nil disables welcome and broadcast emails
	Metrics   *metrics.Metrics
}

// Options carries HTTP-level settings resolved from configuration.
type Options struct {
	CSRFKey               []byte // 32 bytes; a random key is generated when empty
	SecureCookies         bool
	TrustedOrigins        []string
	RateLimitPerSecond    float64
	RateLimitBurst        int
	SlowRequest           time.Duration
	Location              *time.Location // time zone that decides "today"
	LeaderboardLimit      int
	BroadcastAnnouncement bool
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global collaborators (set by NewMux)
var services *Services

// Global options (set by NewMux)
var options Options

// Global session store instance
var sessions *middleware.SessionStore

// sessionSweepInterval is how often expired sessions and their dashboards are dropped.
const sessionSweepInterval = 5 * time.Minute

// Per-session dashboards and admin drafts, keyed by session token.
var (
	dashboards *dashboard.Registry
	publishers *publishing.Registry
)

// NewMux wires HTTP handlers for the app.
// The returned stop func ends background work owned by the handler.
func NewMux(s *Stores, svc *Services, opts Options) (http.Handler, func()) {
	stores = s
	services = svc
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	options = opts
	sessions = middleware.NewSessionStore(func() time.Time { return timeNow() }, dropSessionState)
	middleware.SecureCookies = opts.SecureCookies

	completer := svc.Completer
	if completer == nil {
		completer = llm.Unconfigured{}
	}
	services.Completer = completer

	dashboards = dashboard.NewRegistry(svc.Metrics)
	publishers = publishing.NewRegistry(publishing.Deps{
		Completer: completer,
		Records:   s.DailyRecordStore,
		Accounts:  s.AccountStore,
		Sender:    svc.Sender,
		Broadcast: opts.BroadcastAnnouncement && svc.Sender != nil,
		Now:       timeNow,
		Location:  opts.Location,
		Metrics:   svc.Metrics,
	})

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(opts.RateLimitPerSecond, opts.RateLimitBurst)
	route := func(r *http.Request) string {
		if _, pattern := mux.Handler(r); pattern != "" {
			return pattern
		}
		return "unmatched"
	}

	var observer middleware.RequestObserver
	if svc.Metrics != nil {
		observer = svc.Metrics
	}

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	handler := middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKeyOrRandom(opts.CSRFKey), opts.SecureCookies, opts.TrustedOrigins),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(observer, opts.SlowRequest, route),
	)
	stopSweeper := sessions.StartSweeper(sessionSweepInterval)
	return handler, func() {
		stopSweeper()
		limiter.Stop()
	}
}

func csrfKeyOrRandom(key []byte) []byte {
	if len(key) == 32 {
		return key
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate CSRF key: " + err.Error())
	}
	slog.Warn("config_event", "event", "random_csrf_key", "detail", "form sessions won't survive restart")
	return key
}
