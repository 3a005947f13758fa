package cron

import (
	"context"
	"time"

	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
)

const defaultLeaderboardInterval = 10 * time.Minute

// LeaderboardCronJob recomputes the cached top of the leaderboard so that
// readers rarely hit the database for it.
type LeaderboardCronJob struct {
	userRepo repository.UserRepository
	interval time.Duration
}

func NewLeaderboardCronJob(userRepo repository.UserRepository, interval time.Duration) *LeaderboardCronJob {
	if interval <= 0 {
		interval = defaultLeaderboardInterval
	}

	return &LeaderboardCronJob{userRepo: userRepo, interval: interval}
}

func (job *LeaderboardCronJob) Do(ctx context.Context) {
	entries, err := job.userRepo.RefreshLeaderboard(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot refresh leaderboard: %v", err)
		return
	}

	xcontext.Logger(ctx).Debugf("Leaderboard refreshed with %d entries", len(entries))
}

func (job *LeaderboardCronJob) RunNow() bool {
	return true
}

func (job *LeaderboardCronJob) Interval() time.Duration {
	return job.interval
}
