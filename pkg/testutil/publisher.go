package testutil

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/questx-lab/rewardbot/internal/model"
	"github.com/questx-lab/rewardbot/pkg/errorx"
)

type MockEnqueuer struct {
	EnqueueContextFunc func(context.Context, *asynq.Task, ...asynq.Option) (*asynq.TaskInfo, error)
}

func (m *MockEnqueuer) EnqueueContext(
	ctx context.Context, task *asynq.Task, opts ...asynq.Option,
) (*asynq.TaskInfo, error) {
	if m.EnqueueContextFunc != nil {
		return m.EnqueueContextFunc(ctx, task, opts...)
	}

	return nil, errorx.New(errorx.Internal, "Not implemented")
}

type MockSender struct {
	SendTextFunc func(ctx context.Context, chatID int64, text string, button *model.Button) error
}

func (m *MockSender) SendText(ctx context.Context, chatID int64, text string, button *model.Button) error {
	if m.SendTextFunc != nil {
		return m.SendTextFunc(ctx, chatID, text, button)
	}

	return errorx.New(errorx.Internal, "Not implemented")
}

type MockNotifier struct {
	NotifyReferralRewardFunc func(ctx context.Context, reward model.ReferralReward) error
}

func (m *MockNotifier) NotifyReferralReward(ctx context.Context, reward model.ReferralReward) error {
	if m.NotifyReferralRewardFunc != nil {
		return m.NotifyReferralRewardFunc(ctx, reward)
	}

	return errorx.New(errorx.Internal, "Not implemented")
}
