package model

import "time"

// Referral is one attribution record, maps referrals.
//
// The table is append-only and JoineeID carries a unique constraint: a joined
// identity is attributed to at most one inviter for the lifetime of the
// system, regardless of later leaves and re-joins. All deduplication happens
// at this constraint, not in process memory.
type Referral struct {
	ReferralID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"referral_id"`
	JoineeID   int64     `gorm:"not null;uniqueIndex"                           json:"joinee_id"`
	InviterID  int64     `gorm:"not null;index"                                 json:"inviter_id"`
	JoinedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"joined_at"`
}

// TableName sets the table name.
func (Referral) TableName() string { return "referrals" }
