package entity

import (
	"database/sql"
	"time"
)

type RewardType int

const (
	DefaultRewardType RewardType = 1
	PremiumRewardType RewardType = 2
)

type ReferralLevel int

const (
	FirstLevel  ReferralLevel = 1
	SecondLevel ReferralLevel = 2
)

// Referral is the edge created when a user registers. ReferralID is the id of
// the registered user, ReferredBy is the user who invited them.
type Referral struct {
	ReferralID int64         `gorm:"primaryKey;autoIncrement:false"`
	User       User          `gorm:"foreignKey:ReferralID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ReferredBy sql.NullInt64 `gorm:"index"`
	RewardType RewardType    `gorm:"not null;default:1"`
	CreatedAt  time.Time
}

type ReferralInfo struct {
	Referral Referral

	// Language of the user who owns the referral record.
	Language string
}

type ReferralBreakdown struct {
	FirstLevel  int64
	SecondLevel int64
}

// RewardLog records a credit paid to a referrer so that the same level of the
// same registration is never paid twice.
type RewardLog struct {
	ReferredUserID int64         `gorm:"primaryKey;autoIncrement:false"`
	Level          ReferralLevel `gorm:"primaryKey;autoIncrement:false"`
	ReferrerID     int64         `gorm:"index"`
	Amount         int64
	CreatedAt      time.Time
}

func (RewardLog) TableName() string {
	return "referral_rewards"
}
