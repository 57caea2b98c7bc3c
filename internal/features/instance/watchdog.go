package instance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Watchdog moves instances stuck in PROCESSING beyond the timeout into
// ERROR so the run can be retried. Covers crashed workers that never
// released their claim.
type Watchdog struct {
	Repo    InstanceRepository
	Timeout time.Duration
	Logger  *zap.Logger

	scheduler *cron.Cron
}

func NewWatchdog(repo InstanceRepository, timeout time.Duration, logger *zap.Logger) *Watchdog {
	return &Watchdog{
		Repo:    repo,
		Timeout: timeout,
		Logger:  logger,
	}
}

// Sweep marks every timed-out PROCESSING instance as errored and returns
// how many were recovered
func (w *Watchdog) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-w.Timeout)
	stuck, err := w.Repo.ListStuckProcessing(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for i := range stuck {
		err := w.Repo.SetStatus(ctx, stuck[i].ID, StatusError, "processing timed out")
		if err != nil {
			w.Logger.Error("failed to recover stuck instance",
				zap.String("instance_id", stuck[i].ID.Hex()), zap.Error(err))
			continue
		}
		w.Logger.Warn("recovered stuck instance",
			zap.String("instance_id", stuck[i].ID.Hex()),
			zap.Time("updated_at", stuck[i].UpdatedAt),
		)
		recovered++
	}
	return recovered, nil
}

// Start sweeps every minute until Stop is called
func (w *Watchdog) Start() error {
	w.scheduler = cron.New()
	_, err := w.scheduler.AddFunc("* * * * *", func() {
		if _, err := w.Sweep(context.Background()); err != nil {
			w.Logger.Error("watchdog sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	w.scheduler.Start()
	return nil
}

func (w *Watchdog) Stop() {
	if w.scheduler != nil {
		ctx := w.scheduler.Stop()
		<-ctx.Done()
	}
}
