package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	domainAccount "grindset/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const accountContextKey contextKey = "account"

// SessionTTL is how long a session stays valid after sign-in.
const SessionTTL = 24 * time.Hour

// SecureCookies marks session cookies Secure. Set once at startup for HTTPS deployments.
var SecureCookies bool

// Session represents an authenticated session.
type Session struct {
	Token     string
	AccountID string
	Email     string
	Role      string
	CreatedAt time.Time
}

// IsAdmin reports whether the session belongs to an admin.
func (s Session) IsAdmin() bool {
	return s.Role == domainAccount.RoleAdmin
}

// SessionStore is an in-memory session store.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
	onExpire func(token string)
}

// NewSessionStore creates a new in-memory session store.
// A nil now uses time.Now. onExpire, when set, runs once for every session dropped
// because it outlived SessionTTL; it is called without the store lock held.
func NewSessionStore(now func() time.Time, onExpire func(token string)) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions: make(map[string]Session),
		now:      now,
		onExpire: onExpire,
	}
}

// Create stores a new session and returns the token.
// PRE: accountID, email, role are non-empty
// POST: Session is stored, token is returned
func (ss *SessionStore) Create(accountID, email, role string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{
		Token:     token,
		AccountID: accountID,
		Email:     email,
		Role:      role,
		CreatedAt: ss.now(),
	}
	return token, nil
}

// Get retrieves a session by token.
// PRE: token is non-empty
// POST: Returns session if valid and not expired; expired sessions are dropped
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.Lock()
	session, ok := ss.sessions[token]
	expired := ok && ss.isExpired(session)
	if expired {
		delete(ss.sessions, token)
	}
	ss.mu.Unlock()

	if !ok {
		return Session{}, false
	}
	if expired {
		ss.expire(token)
		return Session{}, false
	}
	return session, true
}

// Sweep drops every expired session and returns how many were removed.
// POST: no stored session is older than SessionTTL
func (ss *SessionStore) Sweep() int {
	ss.mu.Lock()
	var expired []string
	for token, session := range ss.sessions {
		if ss.isExpired(session) {
			delete(ss.sessions, token)
			expired = append(expired, token)
		}
	}
	ss.mu.Unlock()

	for _, token := range expired {
		ss.expire(token)
	}
	return len(expired)
}

// StartSweeper runs Sweep every interval until the returned stop func is called.
func (ss *SessionStore) StartSweeper(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if n := ss.Sweep(); n > 0 {
					slog.Info("session_event", "event", "expired_sessions_swept", "count", n)
				}
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

func (ss *SessionStore) isExpired(session Session) bool {
	return ss.now().Sub(session.CreatedAt) > SessionTTL
}

func (ss *SessionStore) expire(token string) {
	if ss.onExpire != nil {
		ss.onExpire(token)
	}
}

// Delete removes a session by token.
// PRE: token is non-empty
// POST: Session with given token is removed
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

const sessionCookieName = "grindset_session"

// Auth returns middleware that extracts the session from the cookie and sets it in context.
// It does NOT block unauthenticated requests; handlers decide what a missing session means.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err == nil && cookie.Value != "" {
				if session, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns middleware that answers 401 with an unauthenticated outcome
// when no session is present.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
			WriteOutcome(w, http.StatusUnauthorized, OutcomeUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that blocks requests from users without one of the specified roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSessionFromContext(r.Context())
			if !ok {
				slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
				WriteOutcome(w, http.StatusUnauthorized, OutcomeUnauthenticated)
				return
			}
			if !roleSet[session.Role] {
				slog.Warn("auth_denied", "path", r.URL.Path, "account_id", session.AccountID, "role", session.Role)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Routing outcomes returned to clients instead of redirects.
const (
	OutcomeUnauthenticated   = "unauthenticated"
	OutcomeIncompleteProfile = "incomplete_profile"
	OutcomeSignedOut         = "signed_out"
	OutcomeReloadRequired    = "reload_required"
)

// WriteOutcome writes {"outcome": outcome} with status.
func WriteOutcome(w http.ResponseWriter, status int, outcome string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"outcome": outcome})
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(accountContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, accountContextKey, sess)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
