package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/internal/model"
	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/pkg/errorx"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"gorm.io/gorm"
)

// Notifier tells a referrer about a credit. It is called only after the credit
// is committed.
type Notifier interface {
	NotifyReferralReward(ctx context.Context, reward model.ReferralReward) error
}

type ReferralDomain interface {
	Register(context.Context, *model.RegisterRequest) (*model.RegisterResponse, error)
	GetFriends(context.Context, *model.GetFriendsRequest) (*model.GetFriendsResponse, error)
}

type referralDomain struct {
	requests *repository.Requests
	notifier Notifier
}

func NewReferralDomain(requests *repository.Requests, notifier Notifier) *referralDomain {
	return &referralDomain{
		requests: requests,
		notifier: notifier,
	}
}

// Register creates the user with its referral edge and pays the referrers of
// the stored edge, at most two levels up. Each level of each registration is
// paid once however many times Register is called.
func (d *referralDomain) Register(
	ctx context.Context, req *model.RegisterRequest,
) (*model.RegisterResponse, error) {
	if req.UserID <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid user id")
	}

	params := repository.CreateUserParams{UserID: req.UserID, Language: req.Language}
	switch {
	case req.ReferredBy == req.UserID:
		xcontext.Logger(ctx).Infof("Ignore self referral of user %d", req.UserID)
	case req.ReferredBy > 0:
		params.ReferredBy = &req.ReferredBy
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	user, err := d.requests.Users().Create(txCtx, params)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user %d: %v", req.UserID, err)
		return nil, errorx.Wrap(errorx.Internal, err, "Cannot register user")
	}

	// The stored edge wins over the link of a repeated registration.
	edge, err := d.requests.Referrals().GetWithLanguage(txCtx, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get referral of user %d: %v", req.UserID, err)
		return nil, errorx.Wrap(errorx.Internal, err, "Cannot register user")
	}

	rewards, err := d.payReferrers(txCtx, req.UserID, edge)
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit registration of user %d: %v", req.UserID, err)
		return nil, errorx.Wrap(errorx.Internal, err, "Cannot register user")
	}

	if d.notifier != nil {
		for _, reward := range rewards {
			if err := d.notifier.NotifyReferralReward(ctx, reward); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot notify referrer %d: %v", reward.ReferrerID, err)
			}
		}
	}

	return &model.RegisterResponse{User: model.ConvertUser(user), Rewards: rewards}, nil
}

func (d *referralDomain) payReferrers(
	ctx context.Context, userID int64, edge *entity.ReferralInfo,
) ([]model.ReferralReward, error) {
	startReward := xcontext.Configs(ctx).Reward.StartReward
	visited := map[int64]bool{userID: true}
	rewards := []model.ReferralReward{}

	referrerID := edge.Referral.ReferredBy
	for level := entity.FirstLevel; level <= entity.SecondLevel && referrerID.Valid; level++ {
		if visited[referrerID.Int64] {
			xcontext.Logger(ctx).Warnf("Referral chain of user %d has a cycle at %d", userID, referrerID.Int64)
			break
		}
		visited[referrerID.Int64] = true

		referrer, err := d.requests.Referrals().GetWithLanguage(ctx, referrerID.Int64)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Warnf("Referrer %d of user %d is not registered", referrerID.Int64, userID)
				break
			}

			xcontext.Logger(ctx).Errorf("Cannot get referral of user %d: %v", referrerID.Int64, err)
			return nil, errorx.Wrap(errorx.Internal, err, "Cannot register user")
		}

		amount := ReferralReward(startReward, level, referrer.Referral.RewardType)
		if amount > 0 {
			paid, err := d.requests.RewardLogs().Create(ctx, &entity.RewardLog{
				ReferredUserID: userID,
				Level:          level,
				ReferrerID:     referrerID.Int64,
				Amount:         amount,
			})
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot log referral reward: %v", err)
				return nil, errorx.Wrap(errorx.Internal, err, "Cannot register user")
			}

			if paid {
				_, err := d.requests.Users().Update(ctx, referrerID.Int64, repository.UpdateUserParams{
					BalanceDelta: amount,
				})
				if err != nil {
					xcontext.Logger(ctx).Errorf("Cannot credit referrer %d: %v", referrerID.Int64, err)
					return nil, errorx.Wrap(errorx.Internal, err, "Cannot register user")
				}

				rewards = append(rewards, model.ReferralReward{
					ReferrerID: referrerID.Int64,
					Language:   referrer.Language,
					Level:      int(level),
					Amount:     amount,
				})
			}
		}

		referrerID = referrer.Referral.ReferredBy
	}

	return rewards, nil
}

func (d *referralDomain) GetFriends(
	ctx context.Context, req *model.GetFriendsRequest,
) (*model.GetFriendsResponse, error) {
	breakdown, err := d.requests.Referrals().CountByReferredBy(ctx, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count referrals of user %d: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	return &model.GetFriendsResponse{
		ReferralLink: fmt.Sprintf("https://t.me/%s?start=%d",
			xcontext.Configs(ctx).Telegram.BotUsername, req.UserID),
		FirstLevel:  breakdown.FirstLevel,
		SecondLevel: breakdown.SecondLevel,
	}, nil
}
