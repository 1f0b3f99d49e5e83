package dto

// LeaderboardEntry is one row of the inviter leaderboard.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	TelegramID int64  `json:"telegram_id"`
	Name       string `json:"name"`
	Credits    int    `json:"credits"`
}

// TierResponse is one reward tier as exposed by the admin API.
type TierResponse struct {
	TierID    string `json:"tier_id"`
	Threshold int    `json:"threshold"`
	FileID    string `json:"file_id"`
}

// BroadcastResult is the per-recipient tally of a bulk notification pass.
type BroadcastResult struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
