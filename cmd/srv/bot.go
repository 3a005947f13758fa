package main

import (
	"github.com/questx-lab/rewardbot/internal/bot"
	"github.com/questx-lab/rewardbot/internal/domain/broadcast"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startBot(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadTelegram()

	noQueue := cctx.Bool("no-queue")
	var enqueuer broadcast.Enqueuer
	if !noQueue {
		s.asynqClient = broadcast.NewClient(s.ctx)
		enqueuer = s.asynqClient
	}
	s.loadDomains(enqueuer)

	handler := bot.NewHandler(s.referralDomain, s.userDomain, s.taskDomain, s.broadcastDomain, s.telegramEndpoint)
	dispatcher := bot.NewDispatcher(s.ctx, handler)

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error { return bot.Poll(ctx, s.api, dispatcher) })
	if !noQueue && cctx.Bool("worker") {
		g.Go(func() error { return s.runWorker(ctx) })
	}

	if cctx.Bool("cron") {
		g.Go(func() error { return s.newCronJobManager().Start(ctx) })
	}

	xcontext.Logger(s.ctx).Infof("Bot @%s started", s.api.Username)
	return g.Wait()
}
