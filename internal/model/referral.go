package model

type RegisterRequest struct {
	UserID   int64  `json:"user_id"`
	Language string `json:"language"`

	// Zero means the user came without a referral link.
	ReferredBy int64 `json:"referred_by"`
}

type ReferralReward struct {
	ReferrerID int64  `json:"referrer_id"`
	Language   string `json:"language"`
	Level      int    `json:"level"`
	Amount     int64  `json:"amount"`
}

type RegisterResponse struct {
	User    User             `json:"user"`
	Rewards []ReferralReward `json:"rewards"`
}

type GetFriendsRequest struct {
	UserID int64 `json:"user_id"`
}

type GetFriendsResponse struct {
	ReferralLink string `json:"referral_link"`
	FirstLevel   int64  `json:"first_level"`
	SecondLevel  int64  `json:"second_level"`
}
