package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"gorm.io/gorm"
)

// Migrators are data migrations which AutoMigrate cannot express. Each one
// runs at most once per database.
var Migrators = map[string]func(context.Context, *repository.Requests) error{
	"0001": migrate0001,
	"0002": migrate0002,
}

// AutoMigrate creates or alters the tables of every entity.
func AutoMigrate(ctx context.Context) error {
	return entity.MigrateTable(ctx)
}

// Run applies the migrator of version and records it in the same transaction.
// A version which was already applied is skipped.
func Run(ctx context.Context, requests *repository.Requests, version string) error {
	migrator, ok := Migrators[version]
	if !ok {
		return fmt.Errorf("invalid migration version %q", version)
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	var applied entity.Migration
	err := xcontext.DB(ctx).Take(&applied, "version = ?", version).Error
	if err == nil {
		xcontext.Logger(ctx).Infof("Migration %s was applied at %s, skipped", version, applied.CreatedAt)
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := migrator(ctx, requests); err != nil {
		return err
	}

	if err := xcontext.DB(ctx).Create(&entity.Migration{Version: version}).Error; err != nil {
		return err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return err
	}

	xcontext.Logger(ctx).Infof("Migration %s applied", version)
	return nil
}
