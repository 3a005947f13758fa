package taskcheck

import (
	"context"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/pkg/api/telegram"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
)

// VisitLink Validator
type visitLinkValidator struct{}

func (v *visitLinkValidator) Validate(context.Context, int64, *entity.Task) (bool, error) {
	return true, nil
}

// Telegram Channel Validator
type channelValidator struct {
	members MemberGetter
}

func (v *channelValidator) Validate(ctx context.Context, userID int64, task *entity.Task) (bool, error) {
	channel := ChannelFromLink(task.Link)
	status, err := v.members.GetMemberStatus(ctx, channel, userID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get status of user %d in %s: %v", userID, channel, err)
		return false, err
	}

	switch status {
	case telegram.StatusCreator, telegram.StatusAdministrator, telegram.StatusMember:
		return true, nil
	default:
		return false, nil
	}
}
