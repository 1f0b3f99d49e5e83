package model

// RewardTier is one reward definition, maps reward_tiers.
// Re-registering the same tier id overwrites FileID and Threshold.
type RewardTier struct {
	TierID string `gorm:"type:varchar(64);primaryKey" json:"tier_id"`
	// FileID is the Telegram file id of the wallpaper-pack archive; the bot
	// never downloads the payload, it forwards the reference on delivery.
	FileID    string `gorm:"type:varchar(255);not null" json:"file_id"`
	Threshold int    `gorm:"not null;index"             json:"threshold"`
	BaseModel
}

// TableName sets the table name.
func (RewardTier) TableName() string { return "reward_tiers" }
