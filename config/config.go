package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application-wide configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Bot      BotConfig      `mapstructure:"bot"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP server settings (webhook intake + admin API).
type ServerConfig struct {
	Port       int        `mapstructure:"port"`
	BaseURL    string     `mapstructure:"base_url"`
	AdminToken string     `mapstructure:"admin_token"`
	CORS       CORSConfig `mapstructure:"cors"`
}

// CORSConfig allowed origins for the admin dashboard.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL settings.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // minutes
}

// DSN builds the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis cache settings. Optional: when unreachable the bot runs
// without the leaderboard cache and webhook rate limiting.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BotConfig Telegram bot settings.
type BotConfig struct {
	Token string `mapstructure:"token"`
	// Channel accepts either the public handle ("@wallswipe") or the numeric
	// chat id ("-1001234567890"). Parsed once into a telegram.ChannelRef.
	Channel string `mapstructure:"channel"`
	AdminID int64  `mapstructure:"admin_id"`
	// InviteStep is the invites-per-reward step used for default tier
	// thresholds and progress reporting.
	InviteStep      int    `mapstructure:"invite_step"`
	LeaderboardSize int    `mapstructure:"leaderboard_size"`
	WebhookSecret   string `mapstructure:"webhook_secret"`
}

// LogConfig logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// Precedence: env > config file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "wallswipe")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("bot.invite_step", 5)
	v.SetDefault("bot.leaderboard_size", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("WALLSWIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No config file: defaults + environment only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required settings. A failure here is fatal: the process
// must not serve a single update with an incomplete configuration.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("config validation: bot.token is required")
	}
	if c.Bot.Channel == "" {
		return fmt.Errorf("config validation: bot.channel is required")
	}
	if c.Bot.AdminID == 0 {
		return fmt.Errorf("config validation: bot.admin_id is required")
	}
	if c.Bot.InviteStep < 1 {
		return fmt.Errorf("config validation: bot.invite_step must be >= 1")
	}
	if c.Bot.LeaderboardSize < 1 {
		return fmt.Errorf("config validation: bot.leaderboard_size must be >= 1")
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("config validation: db.host and db.name are required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config validation: server.port must be within 1-65535")
	}
	return nil
}
