package migration

import (
	"context"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"gorm.io/gorm/clause"
)

// migrate0001 gives every imported user without a referral record a root
// record, so that users who register through their links are paid.
func migrate0001(ctx context.Context, _ *repository.Requests) error {
	var userIDs []int64
	err := xcontext.DB(ctx).Model(&entity.User{}).
		Where("user_id NOT IN (?)", xcontext.DB(ctx).Model(&entity.Referral{}).Select("referral_id")).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return err
	}

	if len(userIDs) == 0 {
		return nil
	}

	referrals := make([]entity.Referral, 0, len(userIDs))
	for _, id := range userIDs {
		referrals = append(referrals, entity.Referral{ReferralID: id, RewardType: entity.DefaultRewardType})
	}

	xcontext.Logger(ctx).Infof("Backfill %d referral records", len(referrals))
	return xcontext.DB(ctx).
		Omit("User").
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&referrals, 100).Error
}
