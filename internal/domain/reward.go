package domain

import "github.com/questx-lab/rewardbot/internal/entity"

// rewardPermille is the share of the start reward paid to a referrer, in
// thousandths, by chain level and by the referrer's reward type.
var rewardPermille = map[entity.ReferralLevel]map[entity.RewardType]int64{
	entity.FirstLevel: {
		entity.DefaultRewardType: 100,
		entity.PremiumRewardType: 150,
	},
	entity.SecondLevel: {
		entity.DefaultRewardType: 50,
		entity.PremiumRewardType: 75,
	},
}

// ReferralReward returns the credit of a referrer at level for a start reward
// of amount. Unknown reward types are paid as the default type.
func ReferralReward(amount int64, level entity.ReferralLevel, rewardType entity.RewardType) int64 {
	rates, ok := rewardPermille[level]
	if !ok {
		return 0
	}

	rate, ok := rates[rewardType]
	if !ok {
		rate = rates[entity.DefaultRewardType]
	}

	return amount * rate / 1000
}
