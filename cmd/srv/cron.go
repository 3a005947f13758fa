package main

import (
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()

	return s.newCronJobManager().Start(s.ctx)
}
