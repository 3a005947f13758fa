package bot

import (
	"context"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
)

type HandlerFunc func(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error

// wrap binds the sender of the update to the context of h.
func wrap(ctx context.Context, h HandlerFunc) handlers.Response {
	return func(b *gotgbot.Bot, u *ext.Context) error {
		if u.EffectiveUser == nil {
			return nil
		}

		reqCtx := xcontext.WithRequestUserID(ctx, u.EffectiveUser.Id)
		start := time.Now()
		err := h(reqCtx, b, u)
		xcontext.Logger(ctx).Debugf("Update %d of user %d handled in %v",
			u.UpdateId, u.EffectiveUser.Id, time.Since(start))

		if u.CallbackQuery != nil {
			if _, answerErr := u.CallbackQuery.Answer(b, nil); answerErr != nil {
				xcontext.Logger(ctx).Debugf("Cannot answer callback query: %v", answerErr)
			}
		}

		return err
	}
}

// NewDispatcher routes commands and callback queries to h. Every update is
// handled in its own goroutine.
func NewDispatcher(ctx context.Context, h *Handler) *ext.Dispatcher {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *gotgbot.Bot, u *ext.Context, err error) ext.DispatcherAction {
			xcontext.Logger(ctx).Errorf("Cannot handle update %d: %v", u.UpdateId, err)
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})

	dispatcher.AddHandler(handlers.NewCommand("start", wrap(ctx, h.Start)))
	dispatcher.AddHandler(handlers.NewCommand("addtask", wrap(ctx, h.AddTask)))
	dispatcher.AddHandler(handlers.NewCommand("edittask", wrap(ctx, h.EditTask)))
	dispatcher.AddHandler(handlers.NewCommand("deltask", wrap(ctx, h.DelTask)))
	dispatcher.AddHandler(handlers.NewCommand("broadcast", wrap(ctx, h.Broadcast)))

	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal(cbMenu), wrap(ctx, h.Menu)))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal(cbTasks), wrap(ctx, h.Tasks)))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal(cbFriends), wrap(ctx, h.Friends)))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal(cbLeaders), wrap(ctx, h.Leaders)))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal(cbProfile), wrap(ctx, h.Profile)))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal(cbLanguage), wrap(ctx, h.ToggleLanguage)))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbTaskPrefix), wrap(ctx, h.Task)))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbCheckPrefix), wrap(ctx, h.CheckTask)))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbSelectPrefix), wrap(ctx, h.SelectLanguage)))

	return dispatcher
}

// Poll receives updates by long polling until ctx is done.
func Poll(ctx context.Context, api *gotgbot.Bot, dispatcher *ext.Dispatcher) error {
	updater := ext.NewUpdater(dispatcher, nil)
	timeout := xcontext.Configs(ctx).Telegram.PollingTimeout
	err := updater.StartPolling(api, &ext.PollingOpts{
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout: int64(timeout.Seconds()),
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: timeout + time.Second,
			},
		},
	})
	if err != nil {
		return err
	}

	xcontext.Logger(ctx).Infof("Bot @%s is polling", api.User.Username)
	<-ctx.Done()
	return updater.Stop()
}
