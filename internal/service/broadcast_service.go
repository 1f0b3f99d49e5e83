package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ShivamThakkar1/Wallswipe-invite/internal/dto"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/repository"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/telegram"
)

// BroadcastService sends one message to every known inviter.
type BroadcastService interface {
	// Broadcast is a sequential best-effort pass: each failed send is logged
	// and counted, none aborts the batch, and there is no retry.
	Broadcast(ctx context.Context, text string) (*dto.BroadcastResult, error)
}

type broadcastService struct {
	repo   *repository.Repository
	msgr   telegram.Messenger
	logger *zap.Logger
}

// NewBroadcastService creates a BroadcastService.
func NewBroadcastService(repo *repository.Repository, msgr telegram.Messenger, logger *zap.Logger) BroadcastService {
	return &broadcastService{repo: repo, msgr: msgr, logger: logger}
}

func (s *broadcastService) Broadcast(ctx context.Context, text string) (*dto.BroadcastResult, error) {
	inviters, err := s.repo.Inviter.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.BroadcastResult{Total: len(inviters)}
	for _, inviter := range inviters {
		if err := s.msgr.SendMessage(inviter.TelegramID, text); err != nil {
			result.Failed++
			s.logger.Warn("broadcast send failed",
				zap.Int64("telegram_id", inviter.TelegramID), zap.Error(err))
			continue
		}
		result.Sent++
	}

	s.logger.Info("broadcast finished",
		zap.Int("total", result.Total),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
