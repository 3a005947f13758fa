package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/go-resty/resty/v2"
	"github.com/hibiken/asynq"
	"github.com/questx-lab/rewardbot/config"
	"github.com/questx-lab/rewardbot/internal/bot"
	"github.com/questx-lab/rewardbot/internal/domain"
	"github.com/questx-lab/rewardbot/internal/domain/broadcast"
	"github.com/questx-lab/rewardbot/internal/domain/cron"
	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/migration"
	"github.com/questx-lab/rewardbot/pkg/api/telegram"
	"github.com/questx-lab/rewardbot/pkg/logger"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/questx-lab/rewardbot/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app  *cli.App
	ctx  context.Context
	stop context.CancelFunc

	redisClient xredis.Client
	requests    *repository.Requests

	api              *gotgbot.Bot
	telegramEndpoint *telegram.Endpoint
	messenger        *bot.Messenger
	deliverer        *broadcast.Deliverer
	asynqClient      *asynq.Client

	referralDomain  domain.ReferralDomain
	userDomain      domain.UserDomain
	taskDomain      domain.TaskDomain
	broadcastDomain domain.BroadcastDomain
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	return nil
}

func (s *srv) loadLogger() {
	cfg := xcontext.Configs(s.ctx).Log
	level := logger.ParseLevel(cfg.Level)

	var l logger.Logger = logger.NewLogger(level)
	if cfg.File != "" {
		l = logger.NewFileLogger(level, cfg.File)
	}

	s.ctx = xcontext.WithLogger(s.ctx, l)
}

func (s *srv) loadSnowflake(nodeID int64) error {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
	return nil
}

func (s *srv) loadHTTPClient() {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2)

	s.ctx = xcontext.WithHTTPClient(s.ctx, client)
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent", "silence":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	case "postgres", "":
		dialector = postgres.Open(cfg.ConnectionString())
	default:
		panic(fmt.Sprintf("unsupported database driver %q", cfg.Driver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := migration.AutoMigrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	if err := client.Ping(s.ctx); err != nil {
		xcontext.Logger(s.ctx).Warnf("Redis is unavailable, reads fall back to the database: %v", err)
	}

	s.redisClient = client
}

func (s *srv) loadRepos() {
	s.requests = repository.NewRequests(s.redisClient)
}

func (s *srv) loadTelegram() {
	token := xcontext.Configs(s.ctx).Telegram.BotToken
	if token == "" {
		panic("telegram bot token is not set")
	}

	api, err := gotgbot.NewBot(token, nil)
	if err != nil {
		panic(err)
	}

	s.api = api
	s.telegramEndpoint = telegram.New(token)
	s.messenger = bot.NewMessenger(api)
	s.deliverer = broadcast.NewDeliverer(s.messenger, s.telegramEndpoint)
}

// loadDomains sends broadcasts through enqueuer, or directly when it is nil.
func (s *srv) loadDomains(enqueuer broadcast.Enqueuer) {
	s.referralDomain = domain.NewReferralDomain(s.requests, s.messenger)
	s.userDomain = domain.NewUserDomain(s.requests)
	s.taskDomain = domain.NewTaskDomain(s.requests, s.telegramEndpoint)
	s.broadcastDomain = domain.NewBroadcastDomain(s.requests, enqueuer, s.deliverer)
}

func (s *srv) newCronJobManager() *cron.CronJobManager {
	manager := cron.NewCronJobManager()
	manager.Register(cron.NewLeaderboardCronJob(
		s.requests.Users(), xcontext.Configs(s.ctx).Leaderboard.RefreshInterval))
	return manager
}

func (s *srv) close() {
	if s.asynqClient != nil {
		if err := s.asynqClient.Close(); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot close queue client: %v", err)
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot close redis client: %v", err)
		}
	}

	if s.stop != nil {
		s.stop()
	}
}
