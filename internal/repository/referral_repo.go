package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ShivamThakkar1/Wallswipe-invite/internal/model"
	pkgerrors "github.com/ShivamThakkar1/Wallswipe-invite/pkg/errors"
)

// ReferralRepository data access for the append-only attribution ledger.
type ReferralRepository interface {
	// Insert commits one attribution. The uniqueness of joinee_id is enforced
	// by the database constraint; a conflicting insert returns
	// ErrDuplicateAttribution and writes nothing. This is the single
	// deduplication boundary for the whole system, safe under concurrent
	// duplicate events and across processes.
	Insert(ctx context.Context, referral *model.Referral) error
	CountByInviter(ctx context.Context, inviterID int64) (int64, error)
}

type referralRepo struct {
	db *gorm.DB
}

// NewReferralRepo creates a ReferralRepository.
func NewReferralRepo(db *gorm.DB) ReferralRepository {
	return &referralRepo{db: db}
}

func (r *referralRepo) Insert(ctx context.Context, referral *model.Referral) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "joinee_id"}},
			DoNothing: true,
		}).
		Create(referral)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrDuplicateAttribution
	}
	return nil
}

func (r *referralRepo) CountByInviter(ctx context.Context, inviterID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Referral{}).
		Where("inviter_id = ?", inviterID).
		Count(&count).Error
	return count, err
}
