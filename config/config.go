package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string `toml:"env"`

	Database    DatabaseConfigs    `toml:"database"`
	Redis       RedisConfigs       `toml:"redis"`
	Telegram    TelegramConfigs    `toml:"telegram"`
	Reward      RewardConfigs      `toml:"reward"`
	Cache       CacheConfigs       `toml:"cache"`
	Broadcast   BroadcastConfigs   `toml:"broadcast"`
	Leaderboard LeaderboardConfigs `toml:"leaderboard"`
	Log         LogConfigs         `toml:"log"`
}

type DatabaseConfigs struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	LogLevel string `toml:"log_level"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User,
			d.Password,
			d.Host,
			d.Port,
			d.Database,
		)

	case "sqlite":
		return d.Database

	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			d.Host,
			d.Port,
			d.User,
			d.Password,
			d.Database,
		)
	}
}

type RedisConfigs struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	PoolSize int    `toml:"pool_size"`
}

type TelegramConfigs struct {
	BotToken    string  `toml:"bot_token"`
	BotUsername string  `toml:"bot_username"`
	AdminIDs    []int64 `toml:"admin_ids"`

	PollingTimeout time.Duration `toml:"polling_timeout"`
}

func (t TelegramConfigs) IsAdmin(userID int64) bool {
	for _, id := range t.AdminIDs {
		if id == userID {
			return true
		}
	}

	return false
}

type RewardConfigs struct {
	StartReward int64 `toml:"start_reward"`
}

type CacheConfigs struct {
	TTL time.Duration `toml:"ttl"`
}

type BroadcastConfigs struct {
	Concurrency int           `toml:"concurrency"`
	Pace        time.Duration `toml:"pace"`
	Queue       string        `toml:"queue"`
	MaxRetry    int           `toml:"max_retry"`
}

type LeaderboardConfigs struct {
	RefreshInterval time.Duration `toml:"refresh_interval"`
}

type LogConfigs struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
