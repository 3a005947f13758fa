package taskcheck

import (
	"context"

	"github.com/questx-lab/rewardbot/internal/entity"
)

// Validator decides whether a user has done what a task asks for.
type Validator interface {
	Validate(ctx context.Context, userID int64, task *entity.Task) (bool, error)
}

// MemberGetter returns the status of a user in a Telegram chat.
type MemberGetter interface {
	GetMemberStatus(ctx context.Context, chatID string, userID int64) (string, error)
}
