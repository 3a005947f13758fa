package entity

import (
	"context"
	"time"

	"github.com/questx-lab/rewardbot/pkg/xcontext"
)

// Migration marks a versioned data migration as applied.
type Migration struct {
	Version   string `gorm:"primaryKey;size:16"`
	CreatedAt time.Time
}

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Referral{},
		&Task{},
		&UserTask{},
		&RewardLog{},
		&Migration{},
	)
}
