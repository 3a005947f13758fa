package testutil

import (
	"context"
	"errors"
)

type MockTelegramEndpoint struct {
	GetMemberStatusFunc func(ctx context.Context, chatID string, userID int64) (string, error)
	SendPhotoFunc       func(ctx context.Context, chatID int64, fileID, caption string) error
	SendVideoFunc       func(ctx context.Context, chatID int64, fileID, caption string) error
	SendMediaGroupFunc  func(ctx context.Context, chatID int64, fileIDs []string) error
}

func (e *MockTelegramEndpoint) GetMemberStatus(ctx context.Context, chatID string, userID int64) (string, error) {
	if e.GetMemberStatusFunc != nil {
		return e.GetMemberStatusFunc(ctx, chatID, userID)
	}

	return "", errors.New("not implemented")
}

func (e *MockTelegramEndpoint) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	if e.SendPhotoFunc != nil {
		return e.SendPhotoFunc(ctx, chatID, fileID, caption)
	}

	return errors.New("not implemented")
}

func (e *MockTelegramEndpoint) SendVideo(ctx context.Context, chatID int64, fileID, caption string) error {
	if e.SendVideoFunc != nil {
		return e.SendVideoFunc(ctx, chatID, fileID, caption)
	}

	return errors.New("not implemented")
}

func (e *MockTelegramEndpoint) SendMediaGroup(ctx context.Context, chatID int64, fileIDs []string) error {
	if e.SendMediaGroupFunc != nil {
		return e.SendMediaGroupFunc(ctx, chatID, fileIDs)
	}

	return errors.New("not implemented")
}
