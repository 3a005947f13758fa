package model

type User struct {
	UserID   int64  `json:"user_id"`
	Balance  int64  `json:"balance"`
	Language string `json:"language"`
}

type GetProfileRequest struct {
	UserID int64 `json:"user_id"`
}

type GetProfileResponse User

type ChangeLanguageRequest struct {
	UserID int64 `json:"user_id"`

	// Empty switches between en and ru.
	Language string `json:"language"`
}

type ChangeLanguageResponse User

type LeaderboardEntry struct {
	UserID  int64 `json:"user_id"`
	Place   int   `json:"place"`
	Balance int64 `json:"balance"`
}

type GetLeaderboardRequest struct {
	UserID int64 `json:"user_id"`
}

type GetLeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
	Place   *int               `json:"place"`
}
