package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/pkg/testutil"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs atomic.Int32
}

func (job *countingJob) Do(context.Context)      { job.runs.Add(1) }
func (job *countingJob) RunNow() bool            { return true }
func (job *countingJob) Interval() time.Duration { return time.Hour }

func TestCronJobManager_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.MockContext())
	job := &countingJob{}

	manager := NewCronJobManager()
	manager.Register(job)

	done := make(chan error, 1)
	go func() { done <- manager.Start(ctx) }()

	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("cron job manager did not stop")
	}
	require.Equal(t, int32(1), job.runs.Load())
}

func TestLeaderboardCronJob_Do(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMemoryRedisClient()
	require.NoError(t, xcontext.DB(ctx).Create(&[]entity.User{
		{UserID: 1, Balance: 10, Language: "en"},
		{UserID: 2, Balance: 30, Language: "en"},
	}).Error)

	job := NewLeaderboardCronJob(repository.NewUserRepository(redisClient), 0)
	require.True(t, job.RunNow())
	require.Equal(t, defaultLeaderboardInterval, job.Interval())

	job.Do(ctx)
	require.True(t, redisClient.Has("leaderboard:top5"))

	var top []entity.LeaderboardEntry
	require.NoError(t, redisClient.GetObj(ctx, "leaderboard:top5", &top))
	require.Equal(t, []entity.LeaderboardEntry{
		{UserID: 2, Place: 1, Balance: 30},
		{UserID: 1, Place: 2, Balance: 10},
	}, top)
}
