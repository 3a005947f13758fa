package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
)

const TypeDeliver = "broadcast:deliver"

// Enqueuer is implemented by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewTask(msg Message) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeDeliver, payload), nil
}

// Enqueue schedules the delivery of msg on the broadcast queue.
func Enqueue(ctx context.Context, enqueuer Enqueuer, msg Message) error {
	task, err := NewTask(msg)
	if err != nil {
		return err
	}

	cfg := xcontext.Configs(ctx).Broadcast
	_, err = enqueuer.EnqueueContext(ctx, task, asynq.Queue(cfg.Queue), asynq.MaxRetry(cfg.MaxRetry))
	return err
}

// HandleTask delivers the message of a queued task. A malformed payload is
// never retried.
func (d *Deliverer) HandleTask(ctx context.Context, task *asynq.Task) error {
	var msg Message
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		return fmt.Errorf("decode broadcast message: %v: %w", err, asynq.SkipRetry)
	}

	if err := d.Deliver(ctx, msg); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot deliver broadcast %s to user %d: %v",
			msg.BroadcastID, msg.UserID, err)
		return err
	}

	return nil
}

// NewServeMux routes queued deliveries to d. Handlers see the configs, logger
// and HTTP client of base.
func NewServeMux(base context.Context, d *Deliverer) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			ctx = xcontext.WithConfigs(ctx, xcontext.Configs(base))
			ctx = xcontext.WithLogger(ctx, xcontext.Logger(base))
			ctx = xcontext.WithHTTPClient(ctx, xcontext.HTTPClient(base))
			return next.ProcessTask(ctx, task)
		})
	})
	mux.HandleFunc(TypeDeliver, d.HandleTask)
	return mux
}

func RedisClientOpt(ctx context.Context) asynq.RedisClientOpt {
	cfg := xcontext.Configs(ctx).Redis
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(ctx context.Context) *asynq.Client {
	return asynq.NewClient(RedisClientOpt(ctx))
}

func NewServer(ctx context.Context) *asynq.Server {
	cfg := xcontext.Configs(ctx).Broadcast
	return asynq.NewServer(RedisClientOpt(ctx), asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.Queue: 1},
	})
}
