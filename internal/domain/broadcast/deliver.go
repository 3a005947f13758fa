package broadcast

import (
	"context"

	"github.com/questx-lab/rewardbot/internal/model"
	"github.com/questx-lab/rewardbot/pkg/api/telegram"
)

// Sender sends a text message with an optional url button.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, button *model.Button) error
}

type Deliverer struct {
	sender Sender
	media  telegram.IEndpoint
}

func NewDeliverer(sender Sender, media telegram.IEndpoint) *Deliverer {
	return &Deliverer{sender: sender, media: media}
}

// Deliver sends the media of msg first and then its text. The album goes out
// after the single photo and video.
func (d *Deliverer) Deliver(ctx context.Context, msg Message) error {
	if msg.Photo != "" {
		if err := d.media.SendPhoto(ctx, msg.UserID, msg.Photo, ""); err != nil {
			return err
		}
	}

	if msg.Video != "" {
		if err := d.media.SendVideo(ctx, msg.UserID, msg.Video, ""); err != nil {
			return err
		}
	}

	if len(msg.Album) > 0 {
		if err := d.media.SendMediaGroup(ctx, msg.UserID, msg.Album); err != nil {
			return err
		}
	}

	if text := msg.Text(); text != "" {
		return d.sender.SendText(ctx, msg.UserID, text, msg.Button)
	}

	return nil
}
