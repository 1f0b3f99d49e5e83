package service

import (
	"go.uber.org/zap"

	"github.com/ShivamThakkar1/Wallswipe-invite/config"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/repository"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/telegram"
	"github.com/ShivamThakkar1/Wallswipe-invite/pkg/redis"
)

// Service aggregates all business services.
type Service struct {
	Invite      InviteService
	Join        JoinService
	Reward      RewardService
	Broadcast   BroadcastService
	Leaderboard LeaderboardService
}

// NewService wires the service aggregate.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	msgr telegram.Messenger,
	channel telegram.ChannelRef,
	cache *redis.Client,
	logger *zap.Logger,
) *Service {
	step := cfg.Bot.InviteStep

	reward := NewRewardService(repo, msgr, step, logger)
	leaderboard := NewLeaderboardService(repo, cache, logger)

	return &Service{
		Invite:      NewInviteService(repo, msgr, step, logger),
		Join:        NewJoinService(repo, msgr, channel, reward, leaderboard, step, logger),
		Reward:      reward,
		Broadcast:   NewBroadcastService(repo, msgr, logger),
		Leaderboard: leaderboard,
	}
}
