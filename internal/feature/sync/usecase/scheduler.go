package usecase

import (
	"context"
	"log/slog"
	"time"

	"market_backend/internal/feature/sync/domain/entity"
)

// Runner は定期実行される同期処理です。
type Runner interface {
	RunSync(ctx context.Context) (entity.SyncReport, error)
	RunIndexSync(ctx context.Context) (entity.SyncReport, error)
}

// Scheduler は一定間隔で指数と保有銘柄の同期を実行します。
// 前回の実行が終わるまで次の実行は始まりません。
type Scheduler struct {
	runner   Runner
	interval time.Duration
}

// NewScheduler は Scheduler を生成します。interval が 0 以下の場合、Start は何もしません。
func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, interval: interval}
}

// Start は ctx がキャンセルされるまでブロックします。起動直後に 1 回実行します。
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		slog.Info("sync scheduler disabled")
		return
	}
	slog.Info("sync scheduler started", "interval", s.interval)

	s.tick(ctx)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("sync scheduler stopped")
			return
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.runner.RunIndexSync(ctx); err != nil {
		slog.Error("scheduled index sync failed", "error", err)
	}
	if _, err := s.runner.RunSync(ctx); err != nil {
		slog.Error("scheduled symbol sync failed", "error", err)
	}
}
