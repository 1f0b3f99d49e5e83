package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ShivamThakkar1/Wallswipe-invite/config"
)

// Client wraps the Redis connection. Used for the leaderboard cache and the
// webhook rate limiter; all callers accept a nil *Client and degrade.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── leaderboard cache ──

const leaderboardKey = "invite:leaderboard"

// LeaderboardEntry is one cached leaderboard row.
type LeaderboardEntry struct {
	TelegramID int64
	Credits    int
}

// SetInviterScore records an inviter's credit count in the leaderboard ZSET.
func (c *Client) SetInviterScore(ctx context.Context, telegramID int64, credits int) error {
	return c.rdb.ZAdd(ctx, leaderboardKey, goredis.Z{
		Score:  float64(credits),
		Member: strconv.FormatInt(telegramID, 10),
	}).Err()
}

// TopInviters returns the highest-credit inviters, best first.
func (c *Client) TopInviters(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	zs, err := c.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{TelegramID: id, Credits: int(z.Score)})
	}
	return entries, nil
}

// ── rate limiting ──

// CheckRateLimit implements a fixed-window counter. Returns false when the
// caller exceeded limit requests within the window.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := "rate_limit:" + key

	n, err := c.rdb.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, fullKey, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
