package domain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/internal/model"
	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/pkg/errorx"
	"github.com/questx-lab/rewardbot/pkg/testutil"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type notifications struct {
	mutex   sync.Mutex
	rewards []model.ReferralReward
}

func (n *notifications) notifier() *testutil.MockNotifier {
	return &testutil.MockNotifier{
		NotifyReferralRewardFunc: func(ctx context.Context, reward model.ReferralReward) error {
			n.mutex.Lock()
			defer n.mutex.Unlock()
			n.rewards = append(n.rewards, reward)
			return nil
		},
	}
}

func balanceOf(t *testing.T, ctx context.Context, userID int64) int64 {
	var user entity.User
	require.NoError(t, xcontext.DB(ctx).Take(&user, "user_id=?", userID).Error)
	return user.Balance
}

func Test_ReferralReward(t *testing.T) {
	require.Equal(t, int64(100), ReferralReward(1000, entity.FirstLevel, entity.DefaultRewardType))
	require.Equal(t, int64(150), ReferralReward(1000, entity.FirstLevel, entity.PremiumRewardType))
	require.Equal(t, int64(50), ReferralReward(1000, entity.SecondLevel, entity.DefaultRewardType))
	require.Equal(t, int64(75), ReferralReward(1000, entity.SecondLevel, entity.PremiumRewardType))
	require.Equal(t, int64(100), ReferralReward(1000, entity.FirstLevel, entity.RewardType(9)))
	require.Equal(t, int64(0), ReferralReward(1000, entity.ReferralLevel(3), entity.DefaultRewardType))
	require.Equal(t, int64(7), ReferralReward(99, entity.SecondLevel, entity.PremiumRewardType))
}

func Test_referralDomain_Register(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	sent := &notifications{}
	domain := NewReferralDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), sent.notifier())

	resp, err := domain.Register(ctx, &model.RegisterRequest{
		UserID:     200,
		Language:   "ru",
		ReferredBy: testutil.User3.UserID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(200), resp.User.UserID)
	require.Equal(t, "ru", resp.User.Language)
	require.Equal(t, entity.DefaultBalance, resp.User.Balance)
	require.Equal(t, []model.ReferralReward{
		{ReferrerID: testutil.User3.UserID, Language: "en", Level: 1, Amount: 100},
		{ReferrerID: testutil.User2.UserID, Language: "ru", Level: 2, Amount: 50},
	}, resp.Rewards)
	require.Equal(t, resp.Rewards, sent.rewards)

	require.Equal(t, int64(1100), balanceOf(t, ctx, testutil.User3.UserID))
	require.Equal(t, int64(1050), balanceOf(t, ctx, testutil.User2.UserID))
	require.Equal(t, int64(1000), balanceOf(t, ctx, testutil.User1.UserID))

	var logs []entity.RewardLog
	require.NoError(t, xcontext.DB(ctx).Order("level").Find(&logs, "referred_user_id=?", 200).Error)
	require.Len(t, logs, 2)
	require.Equal(t, testutil.User3.UserID, logs[0].ReferrerID)
	require.Equal(t, testutil.User2.UserID, logs[1].ReferrerID)
}

func Test_referralDomain_Register_PremiumSecondLevel(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := NewReferralDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)

	resp, err := domain.Register(ctx, &model.RegisterRequest{UserID: 200, ReferredBy: testutil.User2.UserID})
	require.NoError(t, err)
	require.Len(t, resp.Rewards, 2)
	require.Equal(t, int64(100), resp.Rewards[0].Amount)
	require.Equal(t, int64(75), resp.Rewards[1].Amount)

	require.Equal(t, int64(1100), balanceOf(t, ctx, testutil.User2.UserID))
	require.Equal(t, int64(1075), balanceOf(t, ctx, testutil.User1.UserID))
}

func Test_referralDomain_Register_Twice(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	sent := &notifications{}
	domain := NewReferralDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), sent.notifier())

	_, err := domain.Register(ctx, &model.RegisterRequest{UserID: 200, ReferredBy: testutil.User3.UserID})
	require.NoError(t, err)

	// The second link is ignored, the stored edge still points at User3.
	resp, err := domain.Register(ctx, &model.RegisterRequest{
		UserID:     200,
		Language:   "ru",
		ReferredBy: testutil.User1.UserID,
	})
	require.NoError(t, err)
	require.Empty(t, resp.Rewards)
	require.Equal(t, "ru", resp.User.Language)
	require.Len(t, sent.rewards, 2)

	require.Equal(t, int64(1100), balanceOf(t, ctx, testutil.User3.UserID))
	require.Equal(t, int64(1050), balanceOf(t, ctx, testutil.User2.UserID))
	require.Equal(t, int64(1000), balanceOf(t, ctx, testutil.User1.UserID))

	var referral entity.Referral
	require.NoError(t, xcontext.DB(ctx).Take(&referral, "referral_id=?", 200).Error)
	require.Equal(t, testutil.User3.UserID, referral.ReferredBy.Int64)
}

func Test_referralDomain_Register_SelfReferral(t *testing.T) {
	ctx := testutil.MockContext()
	domain := NewReferralDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)

	resp, err := domain.Register(ctx, &model.RegisterRequest{UserID: 200, ReferredBy: 200})
	require.NoError(t, err)
	require.Empty(t, resp.Rewards)

	var referral entity.Referral
	require.NoError(t, xcontext.DB(ctx).Take(&referral, "referral_id=?", 200).Error)
	require.False(t, referral.ReferredBy.Valid)
	require.Equal(t, int64(1000), balanceOf(t, ctx, 200))
}

func Test_referralDomain_Register_UnknownReferrer(t *testing.T) {
	ctx := testutil.MockContext()
	domain := NewReferralDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)

	resp, err := domain.Register(ctx, &model.RegisterRequest{UserID: 200, ReferredBy: 999})
	require.NoError(t, err)
	require.Empty(t, resp.Rewards)

	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.RewardLog{}).Count(&count).Error)
	require.Zero(t, count)
}

func Test_referralDomain_Register_Cycle(t *testing.T) {
	ctx := testutil.MockContext()
	db := xcontext.DB(ctx)

	// 301 and 302 point at each other.
	require.NoError(t, db.Create(&[]entity.User{
		{UserID: 301, Balance: 1000, Language: "en"},
		{UserID: 302, Balance: 1000, Language: "en"},
	}).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO referrals (referral_id, referred_by, reward_type) VALUES (301, 302, 1), (302, 301, 1)",
	).Error)

	domain := NewReferralDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)
	resp, err := domain.Register(ctx, &model.RegisterRequest{UserID: 200, ReferredBy: 301})
	require.NoError(t, err)
	require.Len(t, resp.Rewards, 2)
	require.Equal(t, int64(1100), balanceOf(t, ctx, 301))
	require.Equal(t, int64(1050), balanceOf(t, ctx, 302))

	// A chain that comes back to the new user stops there.
	require.NoError(t, db.Create(&entity.User{UserID: 303, Balance: 1000, Language: "en"}).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO referrals (referral_id, referred_by, reward_type) VALUES (303, 400, 1)",
	).Error)

	resp, err = domain.Register(ctx, &model.RegisterRequest{UserID: 400, ReferredBy: 303})
	require.NoError(t, err)
	require.Len(t, resp.Rewards, 1)
	require.Equal(t, int64(303), resp.Rewards[0].ReferrerID)
}

func Test_referralDomain_Register_NotifyFailure(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	notifier := &testutil.MockNotifier{
		NotifyReferralRewardFunc: func(context.Context, model.ReferralReward) error {
			return errors.New("bot was blocked by the user")
		},
	}
	domain := NewReferralDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), notifier)

	resp, err := domain.Register(ctx, &model.RegisterRequest{UserID: 200, ReferredBy: testutil.User1.UserID})
	require.NoError(t, err)
	require.Len(t, resp.Rewards, 1)
	require.Equal(t, int64(150), resp.Rewards[0].Amount)
	require.Equal(t, int64(1150), balanceOf(t, ctx, testutil.User1.UserID))
}

func Test_referralDomain_Register_InvalidUser(t *testing.T) {
	ctx := testutil.MockContext()
	domain := NewReferralDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)

	_, err := domain.Register(ctx, &model.RegisterRequest{UserID: 0})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_referralDomain_GetFriends(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	cfg := xcontext.Configs(ctx)
	cfg.Telegram.BotUsername = "reward_bot"
	ctx = xcontext.WithConfigs(ctx, cfg)

	domain := NewReferralDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)
	resp, err := domain.GetFriends(ctx, &model.GetFriendsRequest{UserID: testutil.User1.UserID})
	require.NoError(t, err)
	require.Equal(t, "https://t.me/reward_bot?start=101", resp.ReferralLink)
	require.Equal(t, int64(1), resp.FirstLevel)
	require.Equal(t, int64(1), resp.SecondLevel)
}
