package model

// Inviter is one channel member's referral profile, maps inviters.
// Created on first interaction with the bot, never deleted.
//
// Invariant: InvitedCount always equals the number of referrals rows whose
// inviter_id is this profile's TelegramID. The count is recomputed from the
// ledger after every attribution, never incremented blindly.
type Inviter struct {
	InviterID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"inviter_id"`
	TelegramID int64   `gorm:"not null;uniqueIndex"                           json:"telegram_id"`
	Name       string  `gorm:"type:varchar(255);not null;default:''"         json:"name"`
	InviteLink *string `gorm:"type:varchar(255)"                             json:"invite_link,omitempty"`
	// InvitedCount is the derived credit count.
	InvitedCount int `gorm:"not null;default:0" json:"invited_count"`
	// ClaimedTiers grows monotonically; a tier id is added only after its
	// payload was delivered successfully.
	ClaimedTiers StringArray `gorm:"type:text[];not null;default:'{}'" json:"claimed_tiers"`
	BaseModel
}

// TableName sets the table name.
func (Inviter) TableName() string { return "inviters" }
