package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ShivamThakkar1/Wallswipe-invite/internal/model"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/repository"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/telegram"
	pkgerrors "github.com/ShivamThakkar1/Wallswipe-invite/pkg/errors"
)

// InviteService issues personal invite links and reports progress.
type InviteService interface {
	// EnsureProfile returns the inviter profile for a Telegram identity,
	// creating it on first interaction.
	EnsureProfile(ctx context.Context, telegramID int64, name string) (*model.Inviter, error)
	// GetOrCreateLink is idempotent: repeated calls for the same inviter
	// always return the same link.
	GetOrCreateLink(ctx context.Context, telegramID int64, name string) (string, error)
	// NextTarget reports the configured-step progress for a credit count.
	NextTarget(credits int) (next int, remaining int)
}

type inviteService struct {
	repo   *repository.Repository
	msgr   telegram.Messenger
	step   int
	logger *zap.Logger
}

// NewInviteService creates an InviteService.
func NewInviteService(repo *repository.Repository, msgr telegram.Messenger, step int, logger *zap.Logger) InviteService {
	return &inviteService{repo: repo, msgr: msgr, step: step, logger: logger}
}

func (s *inviteService) EnsureProfile(ctx context.Context, telegramID int64, name string) (*model.Inviter, error) {
	inviter, err := s.repo.Inviter.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return inviter, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	inviter = &model.Inviter{
		TelegramID:   telegramID,
		Name:         name,
		ClaimedTiers: model.StringArray{},
	}
	if err := s.repo.Inviter.Create(ctx, inviter); err != nil {
		// A concurrent first interaction may have created the row already.
		existing, getErr := s.repo.Inviter.GetByTelegramID(ctx, telegramID)
		if getErr == nil {
			return existing, nil
		}
		s.logger.Error("create inviter profile failed",
			zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil, err
	}
	return inviter, nil
}

func (s *inviteService) GetOrCreateLink(ctx context.Context, telegramID int64, name string) (string, error) {
	inviter, err := s.EnsureProfile(ctx, telegramID, name)
	if err != nil {
		return "", err
	}
	if inviter.InviteLink != nil && *inviter.InviteLink != "" {
		return *inviter.InviteLink, nil
	}

	// Request a fresh channel link, then bind it with a claim-once write so
	// concurrent first-time calls cannot end up with two bound links.
	link, err := s.msgr.CreateInviteLink(name)
	if err != nil {
		// Usually missing admin rights on the channel; fatal to this flow.
		s.logger.Error("invite link issuance failed",
			zap.Int64("telegram_id", telegramID), zap.Error(err))
		return "", err
	}

	if err := s.repo.Inviter.ClaimInviteLink(ctx, telegramID, link); err != nil {
		if errors.Is(err, pkgerrors.ErrLinkClaimLost) {
			// A concurrent call won the claim; its link is the bound one. The
			// surplus Telegram link stays unbound and unused.
			current, getErr := s.repo.Inviter.GetByTelegramID(ctx, telegramID)
			if getErr != nil {
				return "", getErr
			}
			if current.InviteLink == nil {
				return "", err
			}
			return *current.InviteLink, nil
		}
		return "", err
	}
	return link, nil
}

func (s *inviteService) NextTarget(credits int) (int, int) {
	return Progress(credits, s.step)
}

// Progress computes the next reward step boundary for a credit count: the
// smallest multiple of step strictly greater than credits, and how many
// invites remain until it. Reporting only; dispatch decisions always
// consult the catalog, whose thresholds need not be uniform.
func Progress(credits, step int) (next int, remaining int) {
	remaining = step - credits%step
	next = credits + remaining
	return next, remaining
}
