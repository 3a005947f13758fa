package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/questx-lab/rewardbot/pkg/api"
)

const apiURL = "https://api.telegram.org"

// Member statuses of getChatMember which count as joined.
const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
	StatusMember        = "member"
)

type Endpoint struct {
	BotToken string

	apiURL       string
	apiGenerator api.Generator
}

func New(botToken string) *Endpoint {
	return &Endpoint{
		BotToken:     botToken,
		apiURL:       apiURL,
		apiGenerator: api.NewGenerator(),
	}
}

// WithURL points the endpoint at another Bot API server.
func (e *Endpoint) WithURL(url string) *Endpoint {
	e.apiURL = url
	return e
}

func (e *Endpoint) call(ctx context.Context, method string, params api.Parameter) (api.JSON, error) {
	resp, err := e.apiGenerator.New(e.apiURL, "/bot%s/%s", e.BotToken, method).
		Body(params).
		POST(ctx)
	if err != nil {
		return nil, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, errors.New("invalid body type")
	}

	if ok, err := body.GetBool("ok"); err != nil || !ok {
		description, _ := body.GetString("description")
		return nil, fmt.Errorf("%s failed: %s", method, description)
	}

	return body, nil
}

// GetMemberStatus returns the status of userID in chatID, e.g. "member" or
// "left". chatID may be a numeric id or an @username.
func (e *Endpoint) GetMemberStatus(ctx context.Context, chatID string, userID int64) (string, error) {
	body, err := e.call(ctx, "getChatMember", api.Parameter{
		"chat_id": chatID,
		"user_id": strconv.FormatInt(userID, 10),
	})
	if err != nil {
		return "", err
	}

	return body.GetString("result.status")
}

func (e *Endpoint) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	params := api.Parameter{"chat_id": strconv.FormatInt(chatID, 10), "photo": fileID}
	if caption != "" {
		params["caption"] = caption
	}

	_, err := e.call(ctx, "sendPhoto", params)
	return err
}

func (e *Endpoint) SendVideo(ctx context.Context, chatID int64, fileID, caption string) error {
	params := api.Parameter{"chat_id": strconv.FormatInt(chatID, 10), "video": fileID}
	if caption != "" {
		params["caption"] = caption
	}

	_, err := e.call(ctx, "sendVideo", params)
	return err
}

// SendMediaGroup sends fileIDs as an album of photos.
func (e *Endpoint) SendMediaGroup(ctx context.Context, chatID int64, fileIDs []string) error {
	media := make([]map[string]string, 0, len(fileIDs))
	for _, id := range fileIDs {
		media = append(media, map[string]string{"type": "photo", "media": id})
	}

	b, err := json.Marshal(media)
	if err != nil {
		return err
	}

	_, err = e.call(ctx, "sendMediaGroup", api.Parameter{
		"chat_id": strconv.FormatInt(chatID, 10),
		"media":   string(b),
	})
	return err
}
