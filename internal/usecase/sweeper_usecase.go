package usecase

import (
	"context"
	"time"

	repo "app/internal/repository"

	"go.uber.org/zap"
)

type SweepFailure struct {
	CartID  int64  `json:"cart_id"`
	Message string `json:"message"`
}

type SweepReport struct {
	Marked   int64          `json:"marked"`
	Deleted  int64          `json:"deleted"`
	Failures []SweepFailure `json:"failures"`
}

// SweeperUsecase は放置カートの整理。
// マークパス：一定時間触られていないACTIVEカートをまとめてABANDONEDへ。
// 削除パス：保持期限の切れたABANDONEDカートを1件ずつ削除。
type SweeperUsecase struct {
	cartRepo     repo.CartRepository
	clock        Clock
	logger       *zap.Logger
	abandonAfter time.Duration
	removeAfter  time.Duration
}

func NewSweeperUsecase(
	cartRepo repo.CartRepository,
	clock Clock,
	logger *zap.Logger,
	abandonAfter time.Duration,
	removeAfter time.Duration,
) *SweeperUsecase {
	return &SweeperUsecase{
		cartRepo:     cartRepo,
		clock:        clock,
		logger:       logger,
		abandonAfter: abandonAfter,
		removeAfter:  removeAfter,
	}
}

// RunAbandonmentSweep は必ず完走する。呼び出し元にエラーは返さず、
// 失敗はログとレポートに積んで次のカートへ進む。
func (u *SweeperUsecase) RunAbandonmentSweep(ctx context.Context) SweepReport {
	report := SweepReport{Failures: []SweepFailure{}}

	u.markAbandonedCarts(ctx, &report)
	u.deleteAbandonedCarts(ctx, &report)

	return report
}

// 放置されたACTIVEカートをまとめてABANDONEDへ（1回のUPDATE）
func (u *SweeperUsecase) markAbandonedCarts(ctx context.Context, report *SweepReport) {
	cutoff := u.clock.Now().Add(-u.abandonAfter)

	carts, err := u.cartRepo.ListInactiveActive(ctx, cutoff)
	if err != nil {
		u.logger.Error("failed to list inactive carts", zap.Error(err))
		return
	}
	if len(carts) == 0 {
		return
	}

	ids := make([]int64, 0, len(carts))
	for _, cart := range carts {
		ids = append(ids, cart.ID)
	}

	marked, err := u.cartRepo.MarkAllAbandoned(ctx, ids, cutoff)
	if err != nil {
		u.logger.Error("failed to mark carts as abandoned", zap.Error(err))
		return
	}

	report.Marked = marked
}

// 保持期限切れのABANDONEDカートを1件ずつ削除。1件の失敗で残りを止めない
func (u *SweeperUsecase) deleteAbandonedCarts(ctx context.Context, report *SweepReport) {
	cutoff := u.clock.Now().Add(-u.removeAfter)

	carts, err := u.cartRepo.ListExpiredAbandoned(ctx, cutoff)
	if err != nil {
		u.logger.Error("failed to list expired abandoned carts", zap.Error(err))
		return
	}

	for _, cart := range carts {
		deleted, err := u.cartRepo.DeleteIfAbandoned(ctx, cart.ID)
		if err != nil {
			u.logger.Error("failed to remove abandoned cart",
				zap.Int64("cart_id", cart.ID),
				zap.Error(err))
			report.Failures = append(report.Failures, SweepFailure{
				CartID:  cart.ID,
				Message: err.Error(),
			})
			continue
		}
		if deleted {
			report.Deleted++
		}
	}
}
