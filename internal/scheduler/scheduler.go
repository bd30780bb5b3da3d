// Package scheduler drives the minute-tick notification passes.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/notifier"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository"
)

var (
	ticksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_ticks_total",
			Help: "Total number of scheduler ticks",
		},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_notifications_sent_total",
			Help: "Scheduled notifications by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// Scheduler fires once per minute and runs two passes: client reminders and
// therapist digests. A tick matches users whose configured HH:MM equals the
// tick's clock, so each setting fires at most once per day and there is no
// catch-up for missed minutes.
type Scheduler struct {
	entries  repository.EntryRepository
	settings repository.SettingsRepository
	notifier notifier.Notifier
	appLink  string
	logger   *slog.Logger
}

// New creates a scheduler. appLink is attached to every message as the Mini
// App button target.
func New(
	entries repository.EntryRepository,
	settings repository.SettingsRepository,
	n notifier.Notifier,
	appLink string,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		entries:  entries,
		settings: settings,
		notifier: n,
		appLink:  appLink,
		logger:   logger,
	}
}

// Run ticks every minute until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "notification scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "notification scheduler stopped")
			return
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick runs both notification passes for the given wall-clock time. Delivery
// failures are logged and dropped; this is the one place where errors are
// deliberately discarded, a failed send must never abort the rest of the tick.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	ticksTotal.Inc()
	clock := domain.ClockOf(now)
	date := domain.DateOf(now)

	s.remindClients(ctx, clock, date)
	s.sendDigests(ctx, clock, date)
}

func (s *Scheduler) remindClients(ctx context.Context, clock, date string) {
	targets, err := s.settings.ListClientsDueReminder(ctx, clock, date)
	if err != nil {
		s.logger.ErrorContext(ctx, "reminder pass failed",
			slog.String("error", err.Error()),
		)
		return
	}

	for _, t := range targets {
		var text string
		switch {
		case t.EntryCount == 0:
			text = "You haven't written anything today. How was your day?"
		case t.EntryCount <= 2:
			text = "Nice start today! A few more lines about your day?"
		default:
			continue
		}
		if err := s.notifier.Send(ctx, t.TelegramID, text, s.appLink); err != nil {
			notificationsSent.WithLabelValues("reminder", "error").Inc()
			s.logger.WarnContext(ctx, "reminder delivery failed",
				slog.Int64("user_id", t.UserID),
				slog.String("error", err.Error()),
			)
			continue
		}
		notificationsSent.WithLabelValues("reminder", "ok").Inc()
	}
}

func (s *Scheduler) sendDigests(ctx context.Context, clock, date string) {
	therapists, err := s.settings.ListTherapistsDueDigest(ctx, clock)
	if err != nil {
		s.logger.ErrorContext(ctx, "digest pass failed",
			slog.String("error", err.Error()),
		)
		return
	}

	for _, t := range therapists {
		counts, err := s.entries.CountByClientOnDate(ctx, t.UserID, date)
		if err != nil {
			s.logger.WarnContext(ctx, "digest aggregation failed",
				slog.Int64("therapist_id", t.UserID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if len(counts) == 0 {
			continue
		}
		if err := s.notifier.Send(ctx, t.TelegramID, digestText(counts), s.appLink); err != nil {
			notificationsSent.WithLabelValues("digest", "error").Inc()
			s.logger.WarnContext(ctx, "digest delivery failed",
				slog.Int64("therapist_id", t.UserID),
				slog.String("error", err.Error()),
			)
			continue
		}
		notificationsSent.WithLabelValues("digest", "ok").Inc()
	}
}

// digestText renders the per-client counts and the grand total.
func digestText(counts []domain.ClientEntryCount) string {
	var b strings.Builder
	b.WriteString("Today's journal activity:\n")
	total := 0
	for _, c := range counts {
		fmt.Fprintf(&b, "• %s: %d\n", c.ClientName, c.Count)
		total += c.Count
	}
	fmt.Fprintf(&b, "Total: %d entries", total)
	return b.String()
}
