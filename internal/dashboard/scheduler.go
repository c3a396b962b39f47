package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MrJamesThe3rd/getrich/internal/insight"
)

// Notifier is told about freshly generated insights.
type Notifier interface {
	Notify(ctx context.Context, insights []insight.Insight)
}

// Scheduler reloads the dashboard on a cron schedule and keeps the latest result.
type Scheduler struct {
	loader   *Loader
	notifier Notifier
	timeout  time.Duration
	cron     *cron.Cron

	mu     sync.RWMutex
	latest *Snapshot
}

func NewScheduler(loader *Loader, notifier Notifier, timeout time.Duration) *Scheduler {
	return &Scheduler{
		loader:   loader,
		notifier: notifier,
		timeout:  timeout,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start registers the refresh job. expr uses six fields, seconds first.
func (s *Scheduler) Start(expr string) error {
	_, err := s.cron.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		s.Refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling dashboard refresh: %w", err)
	}

	slog.Info("dashboard refresh scheduled", "schedule", expr)
	s.cron.Start()

	return nil
}

// Stop halts the schedule and waits for a running refresh.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Refresh(ctx context.Context) Snapshot {
	snap := s.loader.Load(ctx)

	s.mu.Lock()
	s.latest = &snap
	s.mu.Unlock()

	if s.notifier != nil && len(snap.Insights) > 0 {
		s.notifier.Notify(ctx, snap.Insights)
	}

	return snap
}

func (s *Scheduler) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return Snapshot{}, false
	}

	return *s.latest, true
}
