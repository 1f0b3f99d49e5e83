package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ShivamThakkar1/Wallswipe-invite/internal/model"
)

// RewardTierRepository data access for the reward catalog.
type RewardTierRepository interface {
	// Upsert registers a tier; an existing tier id has its payload reference
	// and threshold replaced.
	Upsert(ctx context.Context, tier *model.RewardTier) error
	GetByID(ctx context.Context, tierID string) (*model.RewardTier, error)
	// ListAsc returns all tiers in ascending threshold order.
	ListAsc(ctx context.Context) ([]model.RewardTier, error)
}

type rewardTierRepo struct {
	db *gorm.DB
}

// NewRewardTierRepo creates a RewardTierRepository.
func NewRewardTierRepo(db *gorm.DB) RewardTierRepository {
	return &rewardTierRepo{db: db}
}

func (r *rewardTierRepo) Upsert(ctx context.Context, tier *model.RewardTier) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tier_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"file_id", "threshold", "updated_at"}),
		}).
		Create(tier).Error
}

func (r *rewardTierRepo) GetByID(ctx context.Context, tierID string) (*model.RewardTier, error) {
	var tier model.RewardTier
	err := r.db.WithContext(ctx).
		Where("tier_id = ?", tierID).
		First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *rewardTierRepo) ListAsc(ctx context.Context) ([]model.RewardTier, error) {
	var tiers []model.RewardTier
	err := r.db.WithContext(ctx).
		Order("threshold ASC, tier_id ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}
