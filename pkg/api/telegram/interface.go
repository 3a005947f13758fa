package telegram

import "context"

type IEndpoint interface {
	GetMemberStatus(ctx context.Context, chatID string, userID int64) (string, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error
	SendVideo(ctx context.Context, chatID int64, fileID, caption string) error
	SendMediaGroup(ctx context.Context, chatID int64, fileIDs []string) error
}
