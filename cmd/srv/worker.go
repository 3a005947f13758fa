package main

import (
	"context"

	"github.com/questx-lab/rewardbot/internal/domain/broadcast"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startWorker(*cli.Context) error {
	s.loadTelegram()
	return s.runWorker(s.ctx)
}

func (s *srv) runWorker(ctx context.Context) error {
	server := broadcast.NewServer(ctx)
	if err := server.Start(broadcast.NewServeMux(ctx, s.deliverer)); err != nil {
		return err
	}

	xcontext.Logger(ctx).Infof("Broadcast worker started")
	<-ctx.Done()
	server.Shutdown()

	xcontext.Logger(ctx).Infof("Broadcast worker stopped")
	return nil
}
