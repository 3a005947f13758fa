package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

type Report struct {
	Sent   int
	Failed map[int64]error
}

// SendAll delivers msgs without a queue. A new delivery starts at most once
// per pace and at most concurrency deliveries run at the same time. Failures
// are collected in the report and never stop the others.
func SendAll(ctx context.Context, d *Deliverer, msgs []Message, pace time.Duration, concurrency int) Report {
	report := Report{Failed: map[int64]error{}}
	if concurrency <= 0 {
		concurrency = 1
	}

	var mutex sync.Mutex
	var group errgroup.Group
	group.SetLimit(concurrency)

	var tick <-chan time.Time
	if pace > 0 {
		ticker := time.NewTicker(pace)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i, msg := range msgs {
		if tick != nil && i > 0 {
			select {
			case <-tick:
			case <-ctx.Done():
				mutex.Lock()
				for _, rest := range msgs[i:] {
					report.Failed[rest.UserID] = ctx.Err()
				}
				mutex.Unlock()
				group.Wait()
				return report
			}
		}

		msg := msg
		group.Go(func() error {
			err := d.Deliver(ctx, msg)

			mutex.Lock()
			defer mutex.Unlock()
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot deliver broadcast %s to user %d: %v",
					msg.BroadcastID, msg.UserID, err)
				report.Failed[msg.UserID] = err
			} else {
				report.Sent++
			}

			return nil
		})
	}

	group.Wait()
	return report
}
