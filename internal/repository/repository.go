package repository

import "gorm.io/gorm"

// Repository aggregates all repository interfaces.
type Repository struct {
	Inviter    InviterRepository
	Referral   ReferralRepository
	RewardTier RewardTierRepository
}

// NewRepository builds the Repository aggregate.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Inviter:    NewInviterRepo(db),
		Referral:   NewReferralRepo(db),
		RewardTier: NewRewardTierRepo(db),
	}
}
