package entity

type LeaderboardEntry struct {
	UserID  int64 `json:"user_id"`
	Place   int   `json:"place"`
	Balance int64 `json:"balance"`
}

type Leaderboard struct {
	Entries []LeaderboardEntry

	// Place of the requesting user, nil when it cannot be computed.
	Place *int
}
