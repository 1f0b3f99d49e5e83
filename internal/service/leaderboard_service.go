package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ShivamThakkar1/Wallswipe-invite/internal/dto"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/repository"
	"github.com/ShivamThakkar1/Wallswipe-invite/pkg/redis"
)

// LeaderboardService reports the top inviters.
type LeaderboardService interface {
	Top(ctx context.Context, n int) ([]dto.LeaderboardEntry, error)
	// BumpScore refreshes the cached score for one inviter. Best effort: a
	// cache failure is logged and never propagated.
	BumpScore(ctx context.Context, telegramID int64, credits int)
	// ExportXLSX renders the top-N board as a spreadsheet.
	ExportXLSX(ctx context.Context, n int) (*excelize.File, error)
}

type leaderboardService struct {
	repo   *repository.Repository
	cache  *redis.Client // nil disables the cache
	logger *zap.Logger
}

// NewLeaderboardService creates a LeaderboardService.
func NewLeaderboardService(repo *repository.Repository, cache *redis.Client, logger *zap.Logger) LeaderboardService {
	return &leaderboardService{repo: repo, cache: cache, logger: logger}
}

func (s *leaderboardService) Top(ctx context.Context, n int) ([]dto.LeaderboardEntry, error) {
	if entries, ok := s.topFromCache(ctx, n); ok {
		return entries, nil
	}

	inviters, err := s.repo.Inviter.ListTop(ctx, n)
	if err != nil {
		return nil, err
	}
	entries := make([]dto.LeaderboardEntry, 0, len(inviters))
	for i, inv := range inviters {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:       i + 1,
			TelegramID: inv.TelegramID,
			Name:       inv.Name,
			Credits:    inv.InvitedCount,
		})
	}
	return entries, nil
}

// topFromCache serves the board from the Redis ZSET, resolving display names
// through the profile store. Any miss or error falls back to the database.
func (s *leaderboardService) topFromCache(ctx context.Context, n int) ([]dto.LeaderboardEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, err := s.cache.TopInviters(ctx, n)
	if err != nil || len(cached) == 0 {
		return nil, false
	}
	entries := make([]dto.LeaderboardEntry, 0, len(cached))
	for i, c := range cached {
		inviter, err := s.repo.Inviter.GetByTelegramID(ctx, c.TelegramID)
		if err != nil {
			return nil, false
		}
		entries = append(entries, dto.LeaderboardEntry{
			Rank:       i + 1,
			TelegramID: c.TelegramID,
			Name:       inviter.Name,
			Credits:    c.Credits,
		})
	}
	return entries, true
}

func (s *leaderboardService) BumpScore(ctx context.Context, telegramID int64, credits int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetInviterScore(ctx, telegramID, credits); err != nil {
		s.logger.Warn("leaderboard cache update failed",
			zap.Int64("telegram_id", telegramID), zap.Error(err))
	}
}

func (s *leaderboardService) ExportXLSX(ctx context.Context, n int) (*excelize.File, error) {
	entries, err := s.Top(ctx, n)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"Rank", "Name", "Telegram ID", "Invites"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for row, e := range entries {
		values := []interface{}{e.Rank, e.Name, strconv.FormatInt(e.TelegramID, 10), e.Credits}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row+2, err)
			}
		}
	}

	return f, nil
}
