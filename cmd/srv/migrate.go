package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/migration"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()

	version := cctx.String("version")
	if version == "" {
		xcontext.Logger(s.ctx).Infof("Tables migrated")
		return nil
	}

	s.loadRedisClient()
	s.loadRepos()
	return migration.Run(s.ctx, s.requests, version)
}

type importedUser struct {
	UserID   int64  `json:"user_id"`
	Balance  int64  `json:"balance"`
	Language string `json:"language"`
}

func (s *srv) startImport(cctx *cli.Context) error {
	path := cctx.Args().First()
	if path == "" {
		return errors.New("missing path of the users file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var imported []importedUser
	if err := json.Unmarshal(data, &imported); err != nil {
		return err
	}

	users := make([]entity.User, 0, len(imported))
	for _, u := range imported {
		if u.UserID <= 0 {
			xcontext.Logger(s.ctx).Warnf("Skip user with invalid id %d", u.UserID)
			continue
		}

		users = append(users, entity.User{UserID: u.UserID, Balance: u.Balance, Language: u.Language})
	}

	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()

	if err := s.requests.Users().BatchCreate(s.ctx, users); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Imported %d users", len(users))
	return nil
}
