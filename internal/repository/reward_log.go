package repository

import (
	"context"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type RewardLogRepository interface {
	Create(ctx context.Context, log *entity.RewardLog) (bool, error)
	GetByReferrer(ctx context.Context, referrerID int64) ([]entity.RewardLog, error)
}

type rewardLogRepository struct{}

func NewRewardLogRepository() *rewardLogRepository {
	return &rewardLogRepository{}
}

// Create returns false if the reward of this level was already paid.
func (r *rewardLogRepository) Create(ctx context.Context, log *entity.RewardLog) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(log)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *rewardLogRepository) GetByReferrer(ctx context.Context, referrerID int64) ([]entity.RewardLog, error) {
	var result []entity.RewardLog
	err := xcontext.DB(ctx).
		Where("referrer_id=?", referrerID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
