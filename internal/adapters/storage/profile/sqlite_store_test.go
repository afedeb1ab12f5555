package profile

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"grindset/internal/adapters/storage"
	domain "grindset/internal/domain/profile"
)

var base = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, ids ...string) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, id := range ids {
		if _, err := db.Exec(`INSERT INTO account (id, email, role, created_at) VALUES (?, ?, 'member', ?)`,
			id, id+"@grindset.app", storage.FormatTime(base)); err != nil {
			t.Fatalf("seed account: %v", err)
		}
	}
	return NewSQLiteStore(db)
}

// TestSQLiteStore_SaveKeepsStreak tests onboarding updates never touch streak columns.
func TestSQLiteStore_SaveKeepsStreak(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "u1")

	if err := store.Save(ctx, domain.Profile{ID: "u1", CreatedAt: base, UpdatedAt: base}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.RecordCompletion(ctx, "u1", "2026-03-01"); err != nil {
		t.Fatal(err)
	}

	p := domain.Profile{ID: "u1", DisplayName: "Sam", Gender: domain.GenderOther, GraduationYear: 2027, CreatedAt: base, UpdatedAt: base}
	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.DisplayName != "Sam" || got.GraduationYear != 2027 || got.Gender != domain.GenderOther {
		t.Errorf("onboarding fields not saved: %+v", got)
	}
	if got.CurrentStreak != 1 || got.LastCompletionDate != "2026-03-01" {
		t.Errorf("streak overwritten: %+v", got)
	}
}

// TestSQLiteStore_RecordCompletion_OncePerDay tests the conditional increment.
func TestSQLiteStore_RecordCompletion_OncePerDay(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "u1")
	_ = store.Save(ctx, domain.Profile{ID: "u1", CreatedAt: base, UpdatedAt: base})

	steps := []struct {
		day         string
		wantApplied bool
		wantStreak  int
	}{
		{"2026-03-01", true, 1},
		{"2026-03-01", false, 1},
		{"2026-03-02", true, 2},
		{"2026-03-01", false, 2}, // earlier day never rewinds
		{"2026-03-09", true, 3},  // a gap does not reset
	}
	for _, s := range steps {
		applied, err := store.RecordCompletion(ctx, "u1", s.day)
		if err != nil {
			t.Fatalf("RecordCompletion(%s): %v", s.day, err)
		}
		got, _ := store.GetByID(ctx, "u1")
		if applied != s.wantApplied || got.CurrentStreak != s.wantStreak {
			t.Errorf("%s: applied=%v streak=%d, want %v/%d", s.day, applied, got.CurrentStreak, s.wantApplied, s.wantStreak)
		}
	}
}

// TestSQLiteStore_RecordCompletion_Concurrent tests two sessions racing on the same day.
func TestSQLiteStore_RecordCompletion_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "u1")
	_ = store.Save(ctx, domain.Profile{ID: "u1", CreatedAt: base, UpdatedAt: base})

	var wg sync.WaitGroup
	var mu sync.Mutex
	appliedCount := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, err := store.RecordCompletion(ctx, "u1", "2026-03-05")
			if err != nil {
				t.Errorf("RecordCompletion: %v", err)
				return
			}
			if applied {
				mu.Lock()
				appliedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, _ := store.GetByID(ctx, "u1")
	if appliedCount != 1 || got.CurrentStreak != 1 {
		t.Errorf("applied=%d streak=%d, want 1/1", appliedCount, got.CurrentStreak)
	}
}

// TestSQLiteStore_ListComplete tests filtering and deterministic ordering.
func TestSQLiteStore_ListComplete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "u1", "u2", "u3", "u4")
	for i, p := range []domain.Profile{
		{ID: "u2", DisplayName: "Bo"},
		{ID: "u1", DisplayName: "Asha"},
		{ID: "u3"},
		{ID: "u4", DisplayName: "Dev"},
	} {
		p.CreatedAt = base
		if i == 3 {
			p.CreatedAt = base.Add(-time.Hour)
		}
		p.UpdatedAt = p.CreatedAt
		if err := store.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ListComplete(ctx)
	if err != nil {
		t.Fatalf("ListComplete: %v", err)
	}
	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	want := []string{"u4", "u1", "u2"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids = %v, want %v", ids, want)
			break
		}
	}
}

// TestSQLiteStore_NotFound tests the not-found error contract.
func TestSQLiteStore_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetByID(context.Background(), "ghost"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
	if applied, err := store.RecordCompletion(context.Background(), "ghost", "2026-03-01"); err != nil || applied {
		t.Errorf("applied=%v err=%v, want false/nil", applied, err)
	}
}
