package cron

import (
	"context"
	"time"

	"nafany/utils"

	"go.uber.org/zap"
)

// RankingRefresher rebuilds the cached provider leaderboard.
type RankingRefresher interface {
	RefreshRanking(ctx context.Context) error
}

// StartRankingCron keeps the leaderboard warm so profile pages rarely rebuild it inline.
// It returns when ctx is cancelled.
func StartRankingCron(ctx context.Context, interval time.Duration, r RankingRefresher) {
	logger := utils.GetLogger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Ranking cron stopped")
			return
		case <-ticker.C:
			if err := r.RefreshRanking(ctx); err != nil {
				logger.Warn("Ranking refresh failed", zap.Error(err))
			}
		}
	}
}
