package testutil

import (
	"context"
	"database/sql"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
)

// Fixture chain: User1 invited User2 who invited User3. User1 is on the
// premium reward type.
var (
	User1 = entity.User{UserID: 101, Balance: 1000, Language: "en"}
	User2 = entity.User{UserID: 102, Balance: 1000, Language: "ru"}
	User3 = entity.User{UserID: 103, Balance: 1000, Language: "en"}

	Users = []*entity.User{&User1, &User2, &User3}

	Referrals = []entity.Referral{
		{ReferralID: User1.UserID, RewardType: entity.PremiumRewardType},
		{ReferralID: User2.UserID, ReferredBy: sql.NullInt64{Int64: User1.UserID, Valid: true}, RewardType: entity.DefaultRewardType},
		{ReferralID: User3.UserID, ReferredBy: sql.NullInt64{Int64: User2.UserID, Valid: true}, RewardType: entity.DefaultRewardType},
	}

	ChannelTask = entity.Task{
		TaskID:       1,
		Titles:       entity.Locales{"en": "Join our channel", "ru": "Подпишись на канал"},
		Descriptions: entity.Locales{"en": "Subscribe and press check"},
		Source:       "t",
		Link:         "https://t.me/rewardnews",
		Balance:      500,
	}

	VisitTask = entity.Task{
		TaskID:  2,
		Titles:  entity.Locales{"en": "Watch the video"},
		Source:  "youtube",
		Link:    "https://www.youtube.com/watch?v=42",
		Balance: 200,
	}

	Tasks = []*entity.Task{&ChannelTask, &VisitTask}
)

// CreateFixtureDb inserts the fixture into the database of ctx.
func CreateFixtureDb(ctx context.Context) {
	db := xcontext.DB(ctx)
	for _, u := range Users {
		if err := db.Create(u).Error; err != nil {
			panic(err)
		}
	}

	for _, r := range Referrals {
		r := r
		if err := db.Omit("User").Create(&r).Error; err != nil {
			panic(err)
		}
	}

	for _, t := range Tasks {
		if err := db.Create(t).Error; err != nil {
			panic(err)
		}
	}
}
