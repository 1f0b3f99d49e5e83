package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ShivamThakkar1/Wallswipe-invite/internal/model"
	pkgerrors "github.com/ShivamThakkar1/Wallswipe-invite/pkg/errors"
)

// InviterRepository data access for inviter profiles.
type InviterRepository interface {
	Create(ctx context.Context, inviter *model.Inviter) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Inviter, error)
	GetByInviteLink(ctx context.Context, link string) (*model.Inviter, error)
	// ClaimInviteLink binds a link to a profile with a conditional write: the
	// update applies only while invite_link is still NULL, so concurrent
	// first-time calls cannot bind two links. The loser gets ErrLinkClaimLost.
	ClaimInviteLink(ctx context.Context, telegramID int64, link string) error
	UpdateInvitedCount(ctx context.Context, telegramID int64, count int) error
	// MergeClaimedTiers persists the post-dispatch claimed set in one write.
	MergeClaimedTiers(ctx context.Context, telegramID int64, claimed model.StringArray) error
	ListTop(ctx context.Context, limit int) ([]model.Inviter, error)
	ListAll(ctx context.Context) ([]model.Inviter, error)
}

type inviterRepo struct {
	db *gorm.DB
}

// NewInviterRepo creates an InviterRepository.
func NewInviterRepo(db *gorm.DB) InviterRepository {
	return &inviterRepo{db: db}
}

func (r *inviterRepo) Create(ctx context.Context, inviter *model.Inviter) error {
	return r.db.WithContext(ctx).Create(inviter).Error
}

func (r *inviterRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Inviter, error) {
	var inviter model.Inviter
	err := r.db.WithContext(ctx).
		Where("telegram_id = ?", telegramID).
		First(&inviter).Error
	if err != nil {
		return nil, err
	}
	return &inviter, nil
}

func (r *inviterRepo) GetByInviteLink(ctx context.Context, link string) (*model.Inviter, error) {
	var inviter model.Inviter
	err := r.db.WithContext(ctx).
		Where("invite_link = ?", link).
		First(&inviter).Error
	if err != nil {
		return nil, err
	}
	return &inviter, nil
}

func (r *inviterRepo) ClaimInviteLink(ctx context.Context, telegramID int64, link string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Inviter{}).
		Where("telegram_id = ? AND invite_link IS NULL", telegramID).
		Update("invite_link", link)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrLinkClaimLost
	}
	return nil
}

func (r *inviterRepo) UpdateInvitedCount(ctx context.Context, telegramID int64, count int) error {
	return r.db.WithContext(ctx).
		Model(&model.Inviter{}).
		Where("telegram_id = ?", telegramID).
		Update("invited_count", count).Error
}

func (r *inviterRepo) MergeClaimedTiers(ctx context.Context, telegramID int64, claimed model.StringArray) error {
	return r.db.WithContext(ctx).
		Model(&model.Inviter{}).
		Where("telegram_id = ?", telegramID).
		Update("claimed_tiers", claimed).Error
}

func (r *inviterRepo) ListTop(ctx context.Context, limit int) ([]model.Inviter, error) {
	var inviters []model.Inviter
	err := r.db.WithContext(ctx).
		Where("invited_count > 0").
		Order("invited_count DESC, updated_at ASC").
		Limit(limit).
		Find(&inviters).Error
	if err != nil {
		return nil, err
	}
	return inviters, nil
}

func (r *inviterRepo) ListAll(ctx context.Context) ([]model.Inviter, error) {
	var inviters []model.Inviter
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&inviters).Error
	if err != nil {
		return nil, err
	}
	return inviters, nil
}
