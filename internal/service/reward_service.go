package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ShivamThakkar1/Wallswipe-invite/internal/model"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/repository"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/telegram"
)

// ── reward module errors ──

var (
	ErrNoUploadSession  = errors.New("no reward upload in progress")
	ErrNotArchive       = errors.New("reward payload must be an archive (.zip, .rar, .7z, .tar.gz)")
	ErrInvalidThreshold = errors.New("threshold must be a positive integer")
	ErrEmptyTierID      = errors.New("tier id must not be empty")
)

// RewardService owns the reward catalog, the admin upload sessions and the
// dispatch of due tiers.
type RewardService interface {
	// BeginUpload opens (or replaces) the admin's upload session and returns
	// the resolved threshold. When threshold is nil the default applies: the
	// tier id parsed as an integer times the configured step, or the step
	// itself when the id is not numeric.
	BeginUpload(adminID int64, tierID string, threshold *int) (int, error)
	// SubmitPayload completes the admin's session with an uploaded document.
	// A non-archive payload keeps the session open and returns ErrNotArchive.
	SubmitPayload(ctx context.Context, adminID int64, doc *tgbotapi.Document) (*model.RewardTier, error)
	// DispatchDue delivers every unclaimed tier whose threshold the inviter
	// has reached, in ascending threshold order, isolating per-tier delivery
	// failures. Successfully delivered tier ids are merged into the claimed
	// set in a single write; failed tiers stay unclaimed and are retried on
	// the next call.
	DispatchDue(ctx context.Context, inviter *model.Inviter) ([]string, error)
	ListTiers(ctx context.Context) ([]model.RewardTier, error)
}

// uploadSession is the Awaiting state of one admin's upload flow. Sessions
// live in process memory only and are replaced by a new BeginUpload; there is
// no timeout. A multi-instance deployment would need to move this map behind
// a shared store.
type uploadSession struct {
	TierID    string
	Threshold int
}

type rewardService struct {
	repo   *repository.Repository
	msgr   telegram.Messenger
	step   int
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[int64]uploadSession
}

// NewRewardService creates a RewardService.
func NewRewardService(repo *repository.Repository, msgr telegram.Messenger, step int, logger *zap.Logger) RewardService {
	return &rewardService{
		repo:     repo,
		msgr:     msgr,
		step:     step,
		logger:   logger,
		sessions: make(map[int64]uploadSession),
	}
}

func (s *rewardService) BeginUpload(adminID int64, tierID string, threshold *int) (int, error) {
	tierID = strings.TrimSpace(tierID)
	if tierID == "" {
		return 0, ErrEmptyTierID
	}

	resolved := 0
	switch {
	case threshold != nil:
		if *threshold < 1 {
			return 0, ErrInvalidThreshold
		}
		resolved = *threshold
	default:
		if n, err := strconv.Atoi(tierID); err == nil && n > 0 {
			resolved = n * s.step
		} else {
			resolved = s.step
		}
	}

	s.mu.Lock()
	s.sessions[adminID] = uploadSession{TierID: tierID, Threshold: resolved}
	s.mu.Unlock()

	return resolved, nil
}

func (s *rewardService) SubmitPayload(ctx context.Context, adminID int64, doc *tgbotapi.Document) (*model.RewardTier, error) {
	s.mu.Lock()
	sess, ok := s.sessions[adminID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoUploadSession
	}

	if doc == nil || !isArchive(doc.MimeType, doc.FileName) {
		// Session stays open so the admin can retry with the right file.
		return nil, ErrNotArchive
	}

	tier := &model.RewardTier{
		TierID:    sess.TierID,
		FileID:    doc.FileID,
		Threshold: sess.Threshold,
	}
	if err := s.repo.RewardTier.Upsert(ctx, tier); err != nil {
		s.logger.Error("register reward tier failed",
			zap.String("tier_id", sess.TierID), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, adminID)
	s.mu.Unlock()

	s.logger.Info("reward tier registered",
		zap.String("tier_id", tier.TierID),
		zap.Int("threshold", tier.Threshold),
	)
	return tier, nil
}

func (s *rewardService) DispatchDue(ctx context.Context, inviter *model.Inviter) ([]string, error) {
	tiers, err := s.repo.RewardTier.ListAsc(ctx)
	if err != nil {
		return nil, err
	}
	// The repository orders by threshold already; keep the guarantee local
	// regardless of the backing store.
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Threshold < tiers[j].Threshold })

	var delivered []string
	for _, tier := range tiers {
		if tier.Threshold > inviter.InvitedCount {
			break
		}
		if inviter.ClaimedTiers.Contains(tier.TierID) {
			continue
		}

		caption := fmt.Sprintf("Reward %s — unlocked at %d invites. Enjoy!", tier.TierID, tier.Threshold)
		if err := s.msgr.SendDocument(inviter.TelegramID, tier.FileID, caption); err != nil {
			// Failure is isolated to this tier; the id stays out of the
			// claimed set and is retried on the next dispatch.
			s.logger.Warn("reward delivery failed",
				zap.Int64("telegram_id", inviter.TelegramID),
				zap.String("tier_id", tier.TierID),
				zap.Error(err))
			continue
		}
		delivered = append(delivered, tier.TierID)
	}

	if len(delivered) == 0 {
		return nil, nil
	}

	merged := make(model.StringArray, 0, len(inviter.ClaimedTiers)+len(delivered))
	merged = append(merged, inviter.ClaimedTiers...)
	merged = append(merged, delivered...)
	if err := s.repo.Inviter.MergeClaimedTiers(ctx, inviter.TelegramID, merged); err != nil {
		s.logger.Error("persist claimed tiers failed",
			zap.Int64("telegram_id", inviter.TelegramID), zap.Error(err))
		return delivered, err
	}
	inviter.ClaimedTiers = merged

	return delivered, nil
}

func (s *rewardService) ListTiers(ctx context.Context) ([]model.RewardTier, error) {
	return s.repo.RewardTier.ListAsc(ctx)
}

// isArchive accepts a payload by declared mime type or file extension.
func isArchive(mimeType, fileName string) bool {
	switch mimeType {
	case "application/zip", "application/x-zip-compressed",
		"application/x-rar-compressed", "application/vnd.rar",
		"application/x-7z-compressed", "application/gzip", "application/x-tar":
		return true
	}
	lower := strings.ToLower(fileName)
	for _, ext := range []string{".zip", ".rar", ".7z", ".tar", ".tar.gz", ".tgz"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
