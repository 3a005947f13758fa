package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "rewardbot"
	app.Usage = "Referral and task rewards bot for Telegram"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "path of the TOML config file",
			EnvVars: []string{"CONFIG_FILE"},
		},
		&cli.Int64Flag{
			Name:    "node",
			Usage:   "snowflake node id of this process",
			Value:   1,
			EnvVars: []string{"NODE_ID"},
		},
	}
	app.Before = s.before
	app.After = func(*cli.Context) error {
		s.close()
		return nil
	}
	app.Commands = []*cli.Command{
		{
			Action: s.startBot,
			Name:   "bot",
			Usage:  "Start the bot",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "no-queue",
					Usage: "send broadcasts from the bot process instead of the queue",
				},
				&cli.BoolFlag{
					Name:  "worker",
					Usage: "also run the broadcast worker in this process",
					Value: true,
				},
				&cli.BoolFlag{
					Name:  "cron",
					Usage: "also run the cron jobs in this process",
					Value: true,
				},
			},
			Category:    "Bot",
			Description: `Used to receive updates by long polling and answer users.`,
		},
		{
			Action:      s.startWorker,
			Name:        "worker",
			Usage:       "Start the broadcast worker",
			Category:    "Worker",
			Description: `Used to deliver queued broadcast messages.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start the cron jobs",
			Category:    "Worker",
			Description: `Used to keep the cached leaderboard fresh.`,
		},
		{
			Action: s.startMigrate,
			Name:   "migrate",
			Usage:  "Migrate the database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "data migration to apply after the tables are migrated",
				},
			},
			Category: "Database",
		},
		{
			Action:    s.startImport,
			Name:      "import",
			Usage:     "Import users from a JSON file",
			ArgsUsage: "<path>",
			Category:  "Database",
			Description: `Used to load users of another bot. The file is an array of objects with
user_id, balance and language. A missing balance becomes the default one and
every user gets a root referral record.`,
		},
	}

	s.app = app
}

func (s *srv) before(cctx *cli.Context) error {
	s.ctx, s.stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := s.loadConfig(cctx); err != nil {
		return err
	}

	s.loadLogger()
	s.loadHTTPClient()
	return s.loadSnowflake(cctx.Int64("node"))
}
