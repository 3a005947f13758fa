package cron

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Interval() time.Duration
}

type CronJobManager struct {
	mutex sync.Mutex
	jobs  []CronJob
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{}
}

func (m *CronJobManager) Register(job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.jobs = append(m.jobs, job)
}

// Start runs the registered jobs until ctx is done. A job never overlaps with
// its own previous run.
func (m *CronJobManager) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	m.mutex.Lock()
	jobs := append([]CronJob(nil), m.jobs...)
	m.mutex.Unlock()

	for _, job := range jobs {
		job := job
		options := []gocron.JobOption{gocron.WithSingletonMode(gocron.LimitModeReschedule)}
		if job.RunNow() {
			options = append(options, gocron.WithStartAt(gocron.WithStartImmediately()))
		}

		_, err := scheduler.NewJob(
			gocron.DurationJob(job.Interval()),
			gocron.NewTask(func() { m.run(ctx, job) }),
			options...,
		)
		if err != nil {
			return err
		}
	}

	scheduler.Start()
	xcontext.Logger(ctx).Infof("Cron job manager started")

	<-ctx.Done()
	if err := scheduler.Shutdown(); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot shutdown scheduler: %v", err)
	}

	xcontext.Logger(ctx).Infof("Cron job manager stopped")
	return nil
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	xcontext.Logger(ctx).Infof("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Infof("%T ok", job)
}
