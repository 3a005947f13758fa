package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/questx-lab/rewardbot/internal/domain/broadcast"
	"github.com/questx-lab/rewardbot/internal/model"
	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/pkg/errorx"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
)

type BroadcastDomain interface {
	Broadcast(context.Context, *model.BroadcastRequest) (*model.BroadcastResponse, error)
}

type broadcastDomain struct {
	requests  *repository.Requests
	enqueuer  broadcast.Enqueuer
	deliverer *broadcast.Deliverer
}

// NewBroadcastDomain queues one delivery per user on enqueuer. With a nil
// enqueuer the messages are sent from the calling goroutine through deliverer.
func NewBroadcastDomain(
	requests *repository.Requests,
	enqueuer broadcast.Enqueuer,
	deliverer *broadcast.Deliverer,
) *broadcastDomain {
	return &broadcastDomain{
		requests:  requests,
		enqueuer:  enqueuer,
		deliverer: deliverer,
	}
}

func (d *broadcastDomain) Broadcast(
	ctx context.Context, req *model.BroadcastRequest,
) (*model.BroadcastResponse, error) {
	if !xcontext.Configs(ctx).Telegram.IsAdmin(xcontext.RequestUserID(ctx)) {
		return nil, errorx.New(errorx.PermissionDenied, "Only admins can broadcast")
	}

	texts := cleanLocales(req.Texts)
	if len(texts) == 0 && req.Photo == "" && req.Video == "" && len(req.Album) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Nothing to broadcast")
	}

	if req.Button != nil && (req.Button.Text == "" || req.Button.URL == "") {
		return nil, errorx.New(errorx.BadRequest, "Button needs a text and a url")
	}

	users, err := d.requests.Users().GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.BroadcastResponse{ID: uuid.NewString(), Total: len(users)}
	msgs := make([]broadcast.Message, 0, len(users))
	for _, user := range users {
		msgs = append(msgs, broadcast.Message{
			BroadcastID: resp.ID,
			UserID:      user.UserID,
			Language:    user.Language,
			Texts:       texts,
			Photo:       req.Photo,
			Video:       req.Video,
			Album:       req.Album,
			Button:      req.Button,
		})
	}

	if d.enqueuer == nil {
		cfg := xcontext.Configs(ctx).Broadcast
		report := broadcast.SendAll(ctx, d.deliverer, msgs, cfg.Pace, cfg.Concurrency)
		resp.Queued = report.Sent
		resp.Failed = len(report.Failed)
		return resp, nil
	}

	for _, msg := range msgs {
		if err := broadcast.Enqueue(ctx, d.enqueuer, msg); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot enqueue broadcast %s for user %d: %v",
				resp.ID, msg.UserID, err)
			resp.Failed++
			continue
		}

		resp.Queued++
	}

	xcontext.Logger(ctx).Infof("Broadcast %s: %d queued, %d failed", resp.ID, resp.Queued, resp.Failed)
	return resp, nil
}
