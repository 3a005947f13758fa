package bot

import (
	"context"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/questx-lab/rewardbot/internal/model"
)

// Messenger sends bot initiated messages: broadcast texts and referral reward
// notifications.
type Messenger struct {
	api *gotgbot.Bot
}

func NewMessenger(api *gotgbot.Bot) *Messenger {
	return &Messenger{api: api}
}

func (m *Messenger) SendText(ctx context.Context, chatID int64, text string, b *model.Button) error {
	opts := &gotgbot.SendMessageOpts{}
	if kb := urlKeyboard(b); kb != nil {
		opts.ReplyMarkup = *kb
	}

	_, err := m.api.SendMessage(chatID, text, opts)
	return err
}

func (m *Messenger) NotifyReferralReward(ctx context.Context, reward model.ReferralReward) error {
	text := T(reward.Language, "referral_reward", reward.Amount, reward.Level)
	return m.SendText(ctx, reward.ReferrerID, text, nil)
}
