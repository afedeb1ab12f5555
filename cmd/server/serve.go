package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	emailPkg "grindset/internal/adapters/email"
	web "grindset/internal/adapters/http"
	"grindset/internal/adapters/llm"
	"grindset/internal/adapters/metrics"
	"grindset/internal/adapters/storage"
	accountStore "grindset/internal/adapters/storage/account"
	dailyRecordStore "grindset/internal/adapters/storage/dailyrecord"
	profileStore "grindset/internal/adapters/storage/profile"
	"grindset/internal/application/orchestrators"
	"grindset/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.New()
	timedDB := storage.NewTimedDB(db, m, cfg.Database.SlowQuery)

	stores := &web.Stores{
		AccountStore:     accountStore.NewSQLiteStore(timedDB),
		ProfileStore:     profileStore.NewSQLiteStore(timedDB),
		DailyRecordStore: dailyRecordStore.NewSQLiteStore(timedDB),
	}

	sender := newSender(cfg)
	err = orchestrators.ExecuteSeedAdmin(cmd.Context(), cfg.Admin.Email, cfg.Admin.Password, orchestrators.SeedAdminDeps{
		Admins: stores.AccountStore,
		SignUp: orchestrators.SignUpDeps{
			AccountStore: stores.AccountStore,
			ProfileStore: stores.ProfileStore,
			GenerateID:   func() string { return uuid.New().String() },
			Now:          time.Now,
		},
	})
	if err != nil {
		return err
	}

	completer, err := llm.New(llm.Config{
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		APIKey:  cfg.Completion.APIKey,
		Timeout: cfg.Completion.Timeout,
	})
	if err != nil {
		return err
	}

	csrfKey, _ := cfg.CSRFKey()
	loc, _ := cfg.Location()
	handler, stop := web.NewMux(stores, &web.Services{
		Completer: completer,
		Sender:    sender,
		Metrics:   m,
	}, web.Options{
		CSRFKey:               csrfKey,
		SecureCookies:         cfg.IsProduction(),
		TrustedOrigins:        cfg.Server.TrustedOrigins,
		RateLimitPerSecond:    cfg.Server.RateLimit,
		RateLimitBurst:        cfg.Server.RateBurst,
		SlowRequest:           cfg.Server.SlowRequest,
		Location:              loc,
		LeaderboardLimit:      cfg.Leaderboard.Limit,
		BroadcastAnnouncement: cfg.Email.BroadcastAnnouncements,
	})
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_event", "event", "starting", "addr", cfg.Server.Addr, "env", cfg.Env,
			"schema", storage.LatestSchemaVersion(), "timezone", loc.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_event", "event", "shutting_down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

// newSender returns the Resend sender, or a logging sender when no key is configured.
func newSender(cfg *config.Config) emailPkg.Sender {
	if cfg.Email.ResendAPIKey != "" {
		slog.Info("config_event", "event", "email_configured", "provider", "resend")
		return emailPkg.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Email.ReplyTo)
	}
	if cfg.IsProduction() {
		slog.Warn("config_event", "event", "email_disabled", "detail", "GRINDSET_EMAIL_RESEND_API_KEY is not set")
	}
	return emailPkg.NewNoopSender()
}
