package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"grindset/internal/adapters/email"
	"grindset/internal/domain/account"
	"grindset/internal/domain/dailyrecord"
	"grindset/internal/domain/profile"
)

func init() {
	account.HashCost = bcrypt.MinCost
}

var errStoreDown = errors.New("database is locked")

var fixedTime = time.Date(2026, 3, 14, 6, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

// mockProfileStore is an in-memory profile store applying the same conditional update as SQLite.
type mockProfileStore struct {
	mu        sync.Mutex
	profiles  map[string]profile.Profile
	getErr    error
	saveErr   error
	recordErr error
	// beforeRecord runs inside RecordCompletion before the conditional update.
	beforeRecord func()
}

func newMockProfileStore(ps ...profile.Profile) *mockProfileStore {
	m := &mockProfileStore{profiles: map[string]profile.Profile{}}
	for _, p := range ps {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockProfileStore) GetByID(_ context.Context, id string) (profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return profile.Profile{}, m.getErr
	}
	p, ok := m.profiles[id]
	if !ok {
		return profile.Profile{}, fmt.Errorf("profile not found: %w", sql.ErrNoRows)
	}
	return p, nil
}

func (m *mockProfileStore) Save(_ context.Context, p profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if existing, ok := m.profiles[p.ID]; ok {
		p.CurrentStreak = existing.CurrentStreak
		p.LastCompletionDate = existing.LastCompletionDate
	}
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileStore) RecordCompletion(_ context.Context, id, today string) (bool, error) {
	if m.beforeRecord != nil {
		m.beforeRecord()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return false, m.recordErr
	}
	p, ok := m.profiles[id]
	if !ok || (p.LastCompletionDate != "" && p.LastCompletionDate >= today) {
		return false, nil
	}
	p.CurrentStreak++
	p.LastCompletionDate = today
	m.profiles[id] = p
	return true, nil
}

// mockAccountStore is an in-memory account store.
type mockAccountStore struct {
	accounts map[string]account.Account
	saveErr  error
	saves    int
}

func newMockAccountStore(as ...account.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: map[string]account.Account{}}
	for _, a := range as {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccountStore) GetByEmail(_ context.Context, emailAddr string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == emailAddr {
			return a, nil
		}
	}
	return account.Account{}, fmt.Errorf("account not found: %w", sql.ErrNoRows)
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) ListByRole(_ context.Context, role string) ([]account.Account, error) {
	var out []account.Account
	for _, a := range m.accounts {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

// mockRecordStore keeps one record per date.
type mockRecordStore struct {
	records map[string]dailyrecord.DailyRecord
	err     error
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{records: map[string]dailyrecord.DailyRecord{}}
}

func (m *mockRecordStore) Upsert(_ context.Context, rec dailyrecord.DailyRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records[rec.Date] = rec
	return nil
}

// stubCompleter returns a canned reply and records prompts.
type stubCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

// recordingSender captures outgoing emails.
type recordingSender struct {
	sent []email.SendRequest
	err  error
}

func (r *recordingSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if r.err != nil {
		return email.SendResult{}, r.err
	}
	r.sent = append(r.sent, req)
	return email.SendResult{MessageID: "msg", SentAt: fixedTime}, nil
}

func (r *recordingSender) SendBatch(ctx context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	var results []email.SendResult
	for _, req := range reqs {
		res, err := r.Send(ctx, req)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
