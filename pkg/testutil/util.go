package testutil

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/rewardbot/config"
	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/pkg/logger"
	"github.com/questx-lab/rewardbot/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// MockContext returns a context carrying a fresh, migrated in-memory database,
// default configs and a silent logger.
func MockContext() context.Context {
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	cfg := config.Default()
	cfg.Env = "test"

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)
	ctx = xcontext.WithSnowFlake(ctx, node)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}
