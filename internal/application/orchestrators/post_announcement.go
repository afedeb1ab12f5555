package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"grindset/internal/adapters/email"
	"grindset/internal/adapters/metrics"
	"grindset/internal/domain/account"
	"grindset/internal/domain/dailyrecord"
)

// AccountLister lists accounts by role.
type AccountLister interface {
	ListByRole(ctx context.Context, role string) ([]account.Account, error)
}

// PostAnnouncementInput carries input for the announcement orchestrator.
type PostAnnouncementInput struct {
	Date    string // YYYY-MM-DD
	Message string
}

// PostAnnouncementDeps holds dependencies for PostAnnouncement.
// Broadcast, Accounts and Sender are only used when Broadcast is true.
type PostAnnouncementDeps struct {
	RecordStore RecordStoreForPublish
	Accounts    AccountLister
	Sender      email.Sender
	Broadcast   bool
	Now         func() time.Time
	Metrics     *metrics.Metrics
}

// PostAnnouncementResult reports the stored record and how many emails were accepted.
type PostAnnouncementResult struct {
	Record     dailyrecord.DailyRecord
	EmailsSent int
}

// ExecutePostAnnouncement writes an announcement-only record for Date, clearing any workout.
// When broadcasting is enabled every member is emailed; email failures are logged and
// do not undo the post.
// PRE: Message is non-empty
// POST: the stored record has no exercises and carries Message verbatim
func ExecutePostAnnouncement(ctx context.Context, input PostAnnouncementInput, deps PostAnnouncementDeps) (PostAnnouncementResult, error) {
	if strings.TrimSpace(input.Message) == "" {
		return PostAnnouncementResult{}, dailyrecord.ErrEmptyMessage
	}

	rec := dailyrecord.NewAnnouncement(input.Date, input.Message, deps.Now())
	if err := rec.Validate(); err != nil {
		return PostAnnouncementResult{}, err
	}
	if err := deps.RecordStore.Upsert(ctx, rec); err != nil {
		slog.Error("publish_event", "event", "persist_failed", "date", rec.Date, "error", err)
		return PostAnnouncementResult{}, fmt.Errorf("%w: post announcement: %w", ErrPersistence, err)
	}

	deps.Metrics.Published(string(dailyrecord.KindAnnouncement))
	slog.Info("publish_event", "event", "announcement_published", "date", rec.Date)

	result := PostAnnouncementResult{Record: rec}
	if deps.Broadcast {
		result.EmailsSent = broadcastAnnouncement(ctx, rec, deps)
	}
	return result, nil
}

func broadcastAnnouncement(ctx context.Context, rec dailyrecord.DailyRecord, deps PostAnnouncementDeps) int {
	members, err := deps.Accounts.ListByRole(ctx, account.RoleMember)
	if err != nil {
		slog.Error("publish_event", "event", "broadcast_failed", "stage", "list_members", "error", err)
		return 0
	}
	recipients := make([]string, 0, len(members))
	for _, m := range members {
		recipients = append(recipients, m.Email)
	}
	if len(recipients) == 0 {
		return 0
	}

	reqs, err := email.AnnouncementEmails(recipients, rec.Date, rec.Message)
	if err != nil {
		slog.Error("publish_event", "event", "broadcast_failed", "stage", "render", "error", err)
		return 0
	}
	results, err := deps.Sender.SendBatch(ctx, reqs)
	if err != nil {
		slog.Error("publish_event", "event", "broadcast_failed", "stage", "send", "sent", len(results), "error", err)
	}
	slog.Info("publish_event", "event", "announcement_broadcast", "date", rec.Date, "sent", len(results))
	return len(results)
}
