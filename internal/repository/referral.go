package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/questx-lab/rewardbot/pkg/xredis"
)

// noReferrer is cached in place of a null referred_by so that a complete entry
// never has an empty field.
const noReferrer = "none"

type ReferralRepository interface {
	GetByReferredBy(ctx context.Context, referredBy int64) ([]entity.Referral, error)
	CountByReferredBy(ctx context.Context, referredBy int64) (*entity.ReferralBreakdown, error)
	GetWithLanguage(ctx context.Context, userID int64) (*entity.ReferralInfo, error)
}

type referralRepository struct {
	redisClient xredis.Client
}

func NewReferralRepository(redisClient xredis.Client) *referralRepository {
	return &referralRepository{redisClient: redisClient}
}

// referralListSchema accepts a hash holding count followed by count indexed
// referral_id and reward_type fields.
type referralListSchema struct{}

func (referralListSchema) complete(values map[string]string) bool {
	n, err := strconv.Atoi(values["count"])
	if err != nil || n < 0 {
		return false
	}

	for i := 0; i < n; i++ {
		if values[fmt.Sprintf("referral_id:%d", i)] == "" || values[fmt.Sprintf("reward_type:%d", i)] == "" {
			return false
		}
	}

	return true
}

var (
	breakdownSchema = hashSchema{required: []string{"first_referrals", "second_referrals"}}
	referralSchema  = hashSchema{required: []string{"referral_id", "referred_by", "reward_type", "language"}}
)

func (r *referralRepository) GetByReferredBy(ctx context.Context, referredBy int64) ([]entity.Referral, error) {
	key := referralsByUserKey(referredBy)
	if values, ok := readHash(ctx, r.redisClient, key, referralListSchema{}); ok {
		n, _ := strconv.Atoi(values["count"])
		result := make([]entity.Referral, 0, n)
		for i := 0; i < n; i++ {
			id, err1 := strconv.ParseInt(values[fmt.Sprintf("referral_id:%d", i)], 10, 64)
			rewardType, err2 := strconv.Atoi(values[fmt.Sprintf("reward_type:%d", i)])
			if err1 != nil || err2 != nil {
				xcontext.Logger(ctx).Warnf("Invalid cached referral list of user %d", referredBy)
				result = nil
				break
			}

			result = append(result, entity.Referral{
				ReferralID: id,
				ReferredBy: sql.NullInt64{Int64: referredBy, Valid: true},
				RewardType: entity.RewardType(rewardType),
			})
		}

		if result != nil {
			return result, nil
		}
	}

	var result []entity.Referral
	err := xcontext.DB(ctx).
		Where("referred_by=?", referredBy).
		Order("referral_id").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	values := map[string]string{"count": strconv.Itoa(len(result))}
	for i, ref := range result {
		values[fmt.Sprintf("referral_id:%d", i)] = strconv.FormatInt(ref.ReferralID, 10)
		values[fmt.Sprintf("reward_type:%d", i)] = strconv.Itoa(int(ref.RewardType))
	}

	populate(ctx, func() { writeHash(ctx, r.redisClient, key, values) })
	return result, nil
}

// CountByReferredBy counts users invited by referredBy and users invited by
// those users.
func (r *referralRepository) CountByReferredBy(ctx context.Context, referredBy int64) (*entity.ReferralBreakdown, error) {
	key := referralBreakdownKey(referredBy)
	if values, ok := readHash(ctx, r.redisClient, key, breakdownSchema); ok {
		var cached struct {
			First  int64 `mapstructure:"first_referrals"`
			Second int64 `mapstructure:"second_referrals"`
		}
		if err := decodeHash(values, &cached); err == nil {
			return &entity.ReferralBreakdown{FirstLevel: cached.First, SecondLevel: cached.Second}, nil
		}
		xcontext.Logger(ctx).Warnf("Cannot decode cached referral breakdown of user %d", referredBy)
	}

	var firstIDs []int64
	err := xcontext.DB(ctx).Model(&entity.Referral{}).
		Where("referred_by=?", referredBy).
		Pluck("referral_id", &firstIDs).Error
	if err != nil {
		return nil, err
	}

	result := &entity.ReferralBreakdown{FirstLevel: int64(len(firstIDs))}
	if len(firstIDs) > 0 {
		err := xcontext.DB(ctx).Model(&entity.Referral{}).
			Where("referred_by IN ?", firstIDs).
			Count(&result.SecondLevel).Error
		if err != nil {
			return nil, err
		}
	}

	values := map[string]string{
		"first_referrals":  strconv.FormatInt(result.FirstLevel, 10),
		"second_referrals": strconv.FormatInt(result.SecondLevel, 10),
	}
	populate(ctx, func() { writeHash(ctx, r.redisClient, key, values) })

	return result, nil
}

type referralRow struct {
	ReferralID int64
	ReferredBy sql.NullInt64
	RewardType entity.RewardType
	Language   sql.NullString
}

// GetWithLanguage returns the referral record of userID along with the
// language of userID, "en" if the user row is missing.
func (r *referralRepository) GetWithLanguage(ctx context.Context, userID int64) (*entity.ReferralInfo, error) {
	key := referralKey(userID)
	if values, ok := readHash(ctx, r.redisClient, key, referralSchema); ok {
		if info, err := parseCachedReferral(values); err == nil {
			return info, nil
		}
		xcontext.Logger(ctx).Warnf("Cannot decode cached referral of user %d", userID)
	}

	var row referralRow
	err := xcontext.DB(ctx).Table("referrals").
		Select("referrals.referral_id, referrals.referred_by, referrals.reward_type, users.language").
		Joins("LEFT JOIN users ON users.user_id = referrals.referral_id").
		Where("referrals.referral_id = ?", userID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}

	info := &entity.ReferralInfo{
		Referral: entity.Referral{
			ReferralID: row.ReferralID,
			ReferredBy: row.ReferredBy,
			RewardType: row.RewardType,
		},
		Language: entity.DefaultLanguage,
	}
	if row.Language.Valid && row.Language.String != "" {
		info.Language = row.Language.String
	}

	referredBy := noReferrer
	if info.Referral.ReferredBy.Valid {
		referredBy = strconv.FormatInt(info.Referral.ReferredBy.Int64, 10)
	}

	values := map[string]string{
		"referral_id": strconv.FormatInt(info.Referral.ReferralID, 10),
		"referred_by": referredBy,
		"reward_type": strconv.Itoa(int(info.Referral.RewardType)),
		"language":    info.Language,
	}
	populate(ctx, func() { writeHash(ctx, r.redisClient, key, values) })

	return info, nil
}

func parseCachedReferral(values map[string]string) (*entity.ReferralInfo, error) {
	id, err := strconv.ParseInt(values["referral_id"], 10, 64)
	if err != nil {
		return nil, err
	}

	rewardType, err := strconv.Atoi(values["reward_type"])
	if err != nil {
		return nil, err
	}

	info := &entity.ReferralInfo{
		Referral: entity.Referral{ReferralID: id, RewardType: entity.RewardType(rewardType)},
		Language: values["language"],
	}

	if values["referred_by"] != noReferrer {
		referredBy, err := strconv.ParseInt(values["referred_by"], 10, 64)
		if err != nil {
			return nil, err
		}
		info.Referral.ReferredBy = sql.NullInt64{Int64: referredBy, Valid: true}
	}

	return info, nil
}
