package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ShivamThakkar1/Wallswipe-invite/internal/model"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/repository"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/telegram"
	pkgerrors "github.com/ShivamThakkar1/Wallswipe-invite/pkg/errors"
)

// JoinService consumes channel membership transitions and commits referral
// attributions.
type JoinService interface {
	// ProcessChatMember runs the attribution pipeline for one membership
	// update. Non-attributable events (wrong channel, no invite link, unknown
	// link, self-invite, already attributed) are dropped silently. The only
	// error that aborts processing is a failed ledger insert, which leaves
	// the event unattributed and safe to reprocess.
	ProcessChatMember(ctx context.Context, upd *tgbotapi.ChatMemberUpdated) error
}

type joinService struct {
	repo        *repository.Repository
	msgr        telegram.Messenger
	channel     telegram.ChannelRef
	rewards     RewardService
	leaderboard LeaderboardService
	step        int
	logger      *zap.Logger
}

// NewJoinService creates a JoinService.
func NewJoinService(
	repo *repository.Repository,
	msgr telegram.Messenger,
	channel telegram.ChannelRef,
	rewards RewardService,
	leaderboard LeaderboardService,
	step int,
	logger *zap.Logger,
) JoinService {
	return &joinService{
		repo:        repo,
		msgr:        msgr,
		channel:     channel,
		rewards:     rewards,
		leaderboard: leaderboard,
		step:        step,
		logger:      logger,
	}
}

func (s *joinService) ProcessChatMember(ctx context.Context, upd *tgbotapi.ChatMemberUpdated) error {
	// 1. Only the tracked channel.
	if !s.channel.Matches(upd.Chat) {
		return nil
	}

	// 2. Only genuine joins: not-a-member before, member now. A member who
	// left and re-enters produces this transition again and is processed
	// again; the ledger decides whether it still counts.
	if !becameMember(upd.OldChatMember, upd.NewChatMember) {
		return nil
	}

	// 3. Organic joins carry no invite link and are not attributable.
	if upd.InviteLink == nil || upd.InviteLink.InviteLink == "" {
		return nil
	}
	link := upd.InviteLink.InviteLink

	joiner := upd.NewChatMember.User
	if joiner == nil {
		return nil
	}

	// 4. Resolve the owning inviter.
	inviter, err := s.repo.Inviter.GetByInviteLink(ctx, link)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug("join through unknown invite link",
				zap.Int64("joinee_id", joiner.ID))
			return nil
		}
		return err
	}

	// 5. Self-invite guard.
	if inviter.TelegramID == joiner.ID {
		return nil
	}

	// 6. Commit the attribution. This is the exactly-once boundary: the
	// unique constraint makes concurrent duplicates collapse to one record.
	err = s.repo.Referral.Insert(ctx, &model.Referral{
		JoineeID:  joiner.ID,
		InviterID: inviter.TelegramID,
		JoinedAt:  time.Now(),
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateAttribution) {
			s.logger.Debug("joiner already attributed",
				zap.Int64("joinee_id", joiner.ID))
			return nil
		}
		// Insert failure aborts: the event was not attributed and can be
		// reprocessed safely.
		s.logger.Error("referral insert failed",
			zap.Int64("joinee_id", joiner.ID),
			zap.Int64("inviter_id", inviter.TelegramID),
			zap.Error(err))
		return err
	}

	// 7. Post-commit bookkeeping and delivery. Nothing below rolls back the
	// attribution; failures are logged and repaired by later events.
	count, err := s.repo.Referral.CountByInviter(ctx, inviter.TelegramID)
	if err != nil {
		s.logger.Error("recount credits failed",
			zap.Int64("inviter_id", inviter.TelegramID), zap.Error(err))
		count = int64(inviter.InvitedCount) + 1
	}
	inviter.InvitedCount = int(count)

	if err := s.repo.Inviter.UpdateInvitedCount(ctx, inviter.TelegramID, inviter.InvitedCount); err != nil {
		s.logger.Error("persist credit count failed",
			zap.Int64("inviter_id", inviter.TelegramID), zap.Error(err))
	}

	s.leaderboard.BumpScore(ctx, inviter.TelegramID, inviter.InvitedCount)

	s.logger.Info("referral attributed",
		zap.Int64("inviter_id", inviter.TelegramID),
		zap.Int64("joinee_id", joiner.ID),
		zap.Int("credits", inviter.InvitedCount),
	)

	if _, err := s.rewards.DispatchDue(ctx, inviter); err != nil {
		s.logger.Warn("reward dispatch incomplete",
			zap.Int64("inviter_id", inviter.TelegramID), zap.Error(err))
	}

	if err := s.msgr.SendMessage(inviter.TelegramID, s.joinNotification(joiner, inviter)); err != nil {
		s.logger.Warn("inviter notification failed",
			zap.Int64("inviter_id", inviter.TelegramID), zap.Error(err))
	}

	return nil
}

func (s *joinService) joinNotification(joiner *tgbotapi.User, inviter *model.Inviter) string {
	name := joiner.FirstName
	if name == "" {
		name = joiner.UserName
	}
	next, remaining := Progress(inviter.InvitedCount, s.step)
	return fmt.Sprintf(
		"%s joined through your link! You now have %d invite(s). %d more to reach %d.",
		name, inviter.InvitedCount, remaining, next,
	)
}

// becameMember reports the "not previously a member" → "now a member"
// transition, the only one that counts as a join.
func becameMember(old, new tgbotapi.ChatMember) bool {
	return !isMember(old) && isMember(new)
}

func isMember(m tgbotapi.ChatMember) bool {
	switch m.Status {
	case "creator", "administrator", "member":
		return true
	case "restricted":
		return m.IsMember
	default: // "left", "kicked"
		return false
	}
}
