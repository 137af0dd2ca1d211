package sweeper

import (
	"context"
	"time"

	"app/internal/usecase"

	"go.uber.org/zap"
)

// Runner は一定間隔でスイープを回す。
// ループは直列なのでスイープが重なって走ることはない。
type Runner struct {
	uc       *usecase.SweeperUsecase
	interval time.Duration
	logger   *zap.Logger
}

func NewRunner(uc *usecase.SweeperUsecase, interval time.Duration, logger *zap.Logger) *Runner {
	return &Runner{
		uc:       uc,
		interval: interval,
		logger:   logger,
	}
}

func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report := r.uc.RunAbandonmentSweep(ctx)
			r.logger.Info("abandoned cart sweep finished",
				zap.Int64("marked", report.Marked),
				zap.Int64("deleted", report.Deleted),
				zap.Int("failures", len(report.Failures)))
		}
	}
}
