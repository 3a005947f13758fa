package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Default returns the configuration used when neither the file nor the
// environment sets a value.
func Default() Configs {
	return Configs{
		Env: "development",
		Database: DatabaseConfigs{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     "5432",
			Database: "rewardbot",
			User:     "postgres",
			LogLevel: "warn",
		},
		Redis: RedisConfigs{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Telegram: TelegramConfigs{
			PollingTimeout: 10 * time.Second,
		},
		Reward:    RewardConfigs{StartReward: 1000},
		Cache:     CacheConfigs{TTL: 24 * time.Hour},
		Broadcast: BroadcastConfigs{Concurrency: 10, Pace: 250 * time.Millisecond, Queue: "broadcast", MaxRetry: 3},
		Leaderboard: LeaderboardConfigs{
			RefreshInterval: 10 * time.Minute,
		},
		Log: LogConfigs{Level: "info"},
	}
}

// Load reads the optional TOML file at path, then the .env files, and lets
// environment variables override both.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, err
		}
	}

	loadEnv()

	setString(&cfg.Env, "APP_ENV")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.Database, "DB_NAME")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.LogLevel, "DB_LOG_LEVEL")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if err := setInt(&cfg.Redis.DB, "REDIS_DB"); err != nil {
		return Configs{}, err
	}

	setString(&cfg.Telegram.BotToken, "BOT_TOKEN")
	setString(&cfg.Telegram.BotUsername, "BOT_USERNAME")
	if v := os.Getenv("ADMIN_IDS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return Configs{}, err
		}
		cfg.Telegram.AdminIDs = ids
	}

	if v := os.Getenv("START_REWARD"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Configs{}, err
		}
		cfg.Reward.StartReward = n
	}

	if err := setDuration(&cfg.Cache.TTL, "CACHE_TTL"); err != nil {
		return Configs{}, err
	}
	if err := setDuration(&cfg.Broadcast.Pace, "BROADCAST_PACE"); err != nil {
		return Configs{}, err
	}
	if err := setInt(&cfg.Broadcast.Concurrency, "BROADCAST_CONCURRENCY"); err != nil {
		return Configs{}, err
	}
	if err := setDuration(&cfg.Leaderboard.RefreshInterval, "LEADERBOARD_REFRESH_INTERVAL"); err != nil {
		return Configs{}, err
	}

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.File, "LOG_FILE")

	return cfg, nil
}

func loadEnv() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	godotenv.Load(".env." + env + ".local")
	if env != "test" {
		godotenv.Load(".env.local")
	}
	godotenv.Load(".env." + env)
	godotenv.Load()
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}

	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}

	*dst = d
	return nil
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}
