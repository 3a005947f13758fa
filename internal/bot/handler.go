package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/questx-lab/rewardbot/internal/domain"
	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/internal/model"
	"github.com/questx-lab/rewardbot/pkg/api/telegram"
	"github.com/questx-lab/rewardbot/pkg/errorx"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
)

type Handler struct {
	referralDomain  domain.ReferralDomain
	userDomain      domain.UserDomain
	taskDomain      domain.TaskDomain
	broadcastDomain domain.BroadcastDomain
	media           telegram.IEndpoint
}

func NewHandler(
	referralDomain domain.ReferralDomain,
	userDomain domain.UserDomain,
	taskDomain domain.TaskDomain,
	broadcastDomain domain.BroadcastDomain,
	media telegram.IEndpoint,
) *Handler {
	return &Handler{
		referralDomain:  referralDomain,
		userDomain:      userDomain,
		taskDomain:      taskDomain,
		broadcastDomain: broadcastDomain,
		media:           media,
	}
}

func send(b *gotgbot.Bot, chatID int64, text string, kb *gotgbot.InlineKeyboardMarkup) error {
	opts := &gotgbot.SendMessageOpts{}
	if kb != nil {
		opts.ReplyMarkup = *kb
	}

	_, err := b.SendMessage(chatID, text, opts)
	return err
}

// errorText renders err for the user. Bad requests keep their own message since
// only admins can make them.
func errorText(language string, err error) string {
	var e errorx.Error
	if !errors.As(err, &e) {
		return T(language, "error")
	}

	switch e.Code {
	case errorx.NotFound:
		return T(language, "not_found")
	case errorx.PermissionDenied:
		return T(language, "admin_only")
	case errorx.AlreadyExists:
		return T(language, "task_already")
	case errorx.NotVerified:
		return T(language, "task_not_verified")
	case errorx.Unavailable:
		return T(language, "task_unavailable")
	case errorx.BadRequest:
		return e.Message
	default:
		return T(language, "error")
	}
}

// language returns the language of the sender, english for unknown users.
func (h *Handler) language(ctx context.Context) string {
	profile, err := h.userDomain.GetProfile(ctx, &model.GetProfileRequest{UserID: xcontext.RequestUserID(ctx)})
	if err != nil {
		return entity.DefaultLanguage
	}

	return profile.Language
}

func (h *Handler) reply(ctx context.Context, b *gotgbot.Bot, text string, kb *gotgbot.InlineKeyboardMarkup) error {
	return send(b, xcontext.RequestUserID(ctx), text, kb)
}

func (h *Handler) replyError(ctx context.Context, b *gotgbot.Bot, language string, err error) error {
	return h.reply(ctx, b, errorText(language, err), nil)
}

func (h *Handler) showMenu(ctx context.Context, b *gotgbot.Bot, language string) error {
	kb := menuKeyboard(language)
	return h.reply(ctx, b, T(language, "menu"), &kb)
}

// Start greets a user coming from /start or a deep link. Unknown users pick a
// language first and are registered with the referrer of the link.
func (h *Handler) Start(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	var arg startArg
	if args := u.Args(); len(args) > 1 {
		arg = parseStartArg(args[1])
	}

	profile, err := h.userDomain.GetProfile(ctx, &model.GetProfileRequest{UserID: xcontext.RequestUserID(ctx)})
	if err != nil {
		if errorx.Is(err, errorx.NotFound) {
			kb := selectLanguageKeyboard(arg.referredBy)
			return h.reply(ctx, b, T(u.EffectiveUser.LanguageCode, "choose_language"), &kb)
		}

		return h.replyError(ctx, b, entity.DefaultLanguage, err)
	}

	if arg.taskID != 0 {
		return h.showTask(ctx, b, profile.Language, arg.taskID)
	}

	return h.showMenu(ctx, b, profile.Language)
}

func (h *Handler) SelectLanguage(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	language, referredBy, ok := parseSelectLanguage(u.CallbackQuery.Data)
	if !ok {
		return nil
	}

	resp, err := h.referralDomain.Register(ctx, &model.RegisterRequest{
		UserID:     xcontext.RequestUserID(ctx),
		Language:   language,
		ReferredBy: referredBy,
	})
	if err != nil {
		return h.replyError(ctx, b, language, err)
	}

	return h.showMenu(ctx, b, resp.User.Language)
}

func (h *Handler) Menu(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	return h.showMenu(ctx, b, h.language(ctx))
}

func (h *Handler) Tasks(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	language := h.language(ctx)
	resp, err := h.taskDomain.GetIncomplete(ctx, &model.GetIncompleteTasksRequest{
		UserID: xcontext.RequestUserID(ctx),
		Locale: language,
	})
	if err != nil {
		return h.replyError(ctx, b, language, err)
	}

	if len(resp.Tasks) == 0 {
		kb := backKeyboard(language, cbMenu)
		return h.reply(ctx, b, T(language, "no_tasks"), &kb)
	}

	kb := tasksKeyboard(language, resp.Tasks)
	return h.reply(ctx, b, T(language, "tasks"), &kb)
}

func (h *Handler) Task(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	taskID, ok := parseIDData(u.CallbackQuery.Data, cbTaskPrefix)
	if !ok {
		return nil
	}

	return h.showTask(ctx, b, h.language(ctx), taskID)
}

func (h *Handler) showTask(ctx context.Context, b *gotgbot.Bot, language string, taskID int64) error {
	resp, err := h.taskDomain.Get(ctx, &model.GetTaskRequest{
		ID:     taskID,
		UserID: xcontext.RequestUserID(ctx),
		Locale: language,
	})
	if err != nil {
		return h.replyError(ctx, b, language, err)
	}

	h.sendCover(ctx, resp.Task)

	text := T(language, "task_card", resp.Task.Title, resp.Task.Description, resp.Task.Balance)
	if resp.Completed {
		kb := backKeyboard(language, cbTasks)
		return h.reply(ctx, b, text+"\n\n"+T(language, "task_already"), &kb)
	}

	kb := taskKeyboard(language, resp.Task)
	return h.reply(ctx, b, text, &kb)
}

// sendCover sends the cover of task ahead of its card. A cover which cannot be
// sent is skipped, the card still goes out.
func (h *Handler) sendCover(ctx context.Context, task model.Task) {
	if task.Cover == "" {
		return
	}

	if err := h.media.SendPhoto(ctx, xcontext.RequestUserID(ctx), task.Cover, ""); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot send cover of task %d: %v", task.ID, err)
	}
}

func (h *Handler) CheckTask(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	taskID, ok := parseIDData(u.CallbackQuery.Data, cbCheckPrefix)
	if !ok {
		return nil
	}

	language := h.language(ctx)
	resp, err := h.taskDomain.Check(ctx, &model.CheckTaskRequest{ID: taskID, UserID: xcontext.RequestUserID(ctx)})
	if err != nil {
		return h.replyError(ctx, b, language, err)
	}

	kb := backKeyboard(language, cbTasks)
	return h.reply(ctx, b, T(language, "task_done", resp.Reward, resp.Balance), &kb)
}

func (h *Handler) Friends(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	language := h.language(ctx)
	resp, err := h.referralDomain.GetFriends(ctx, &model.GetFriendsRequest{UserID: xcontext.RequestUserID(ctx)})
	if err != nil {
		return h.replyError(ctx, b, language, err)
	}

	kb := backKeyboard(language, cbMenu)
	return h.reply(ctx, b, T(language, "friends", resp.ReferralLink, resp.FirstLevel, resp.SecondLevel), &kb)
}

func (h *Handler) Leaders(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	language := h.language(ctx)
	resp, err := h.userDomain.GetLeaderboard(ctx, &model.GetLeaderboardRequest{UserID: xcontext.RequestUserID(ctx)})
	if err != nil {
		return h.replyError(ctx, b, language, err)
	}

	kb := backKeyboard(language, cbMenu)
	return h.reply(ctx, b, renderLeaderboard(language, resp), &kb)
}

func renderLeaderboard(language string, resp *model.GetLeaderboardResponse) string {
	lines := []string{T(language, "leaders")}
	for _, entry := range resp.Entries {
		lines = append(lines, T(language, "leaders_row", entry.Place, entry.UserID, entry.Balance))
	}

	if resp.Place != nil {
		lines = append(lines, "", T(language, "leaders_place", *resp.Place))
	}

	return strings.Join(lines, "\n")
}

func (h *Handler) Profile(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	resp, err := h.userDomain.GetProfile(ctx, &model.GetProfileRequest{UserID: xcontext.RequestUserID(ctx)})
	if err != nil {
		return h.replyError(ctx, b, entity.DefaultLanguage, err)
	}

	kb := backKeyboard(resp.Language, cbMenu)
	return h.reply(ctx, b, T(resp.Language, "profile", resp.UserID, resp.Balance, resp.Language), &kb)
}

func (h *Handler) ToggleLanguage(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	resp, err := h.userDomain.ChangeLanguage(ctx, &model.ChangeLanguageRequest{UserID: xcontext.RequestUserID(ctx)})
	if err != nil {
		return h.replyError(ctx, b, entity.DefaultLanguage, err)
	}

	return h.showMenu(ctx, b, resp.Language)
}

// repliedPhoto returns the largest size of the photo msg replies to.
func repliedPhoto(msg *gotgbot.Message) string {
	if msg == nil || msg.ReplyToMessage == nil {
		return ""
	}

	if n := len(msg.ReplyToMessage.Photo); n > 0 {
		return msg.ReplyToMessage.Photo[n-1].FileId
	}

	return ""
}

// AddTask takes the cover from the photo the command replies to unless the
// command names one.
func (h *Handler) AddTask(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	language := h.language(ctx)
	req, err := parseAddTask(commandArgs(u.EffectiveMessage.Text))
	if err != nil {
		return h.reply(ctx, b, T(language, "usage_addtask"), nil)
	}

	if req.Cover == "" {
		req.Cover = repliedPhoto(u.EffectiveMessage)
	}

	resp, err := h.taskDomain.Create(ctx, req)
	if err != nil {
		return h.replyError(ctx, b, language, err)
	}

	return h.reply(ctx, b, T(language, "task_created", resp.ID), nil)
}

func (h *Handler) EditTask(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	language := h.language(ctx)
	args := commandArgs(u.EffectiveMessage.Text)
	cover := repliedPhoto(u.EffectiveMessage)
	if cover != "" && !strings.Contains(args, " ") {
		args += " cover=" + cover
	}

	req, err := parseEditTask(args)
	if err != nil {
		return h.reply(ctx, b, T(language, "usage_edittask"), nil)
	}

	if req.Cover == "" {
		req.Cover = cover
	}

	resp, err := h.taskDomain.Update(ctx, req)
	if err != nil {
		return h.replyError(ctx, b, language, err)
	}

	return h.reply(ctx, b, T(language, "task_updated", resp.ID, resp.Title, resp.Balance), nil)
}

func (h *Handler) DelTask(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	language := h.language(ctx)
	taskID, err := parseDelTask(commandArgs(u.EffectiveMessage.Text))
	if err != nil {
		return h.reply(ctx, b, T(language, "usage_deltask"), nil)
	}

	if _, err := h.taskDomain.Delete(ctx, &model.DeleteTaskRequest{ID: taskID}); err != nil {
		return h.replyError(ctx, b, language, err)
	}

	return h.reply(ctx, b, T(language, "task_deleted", taskID), nil)
}

// Broadcast also takes the media of the message the command replies to.
func (h *Handler) Broadcast(ctx context.Context, b *gotgbot.Bot, u *ext.Context) error {
	language := h.language(ctx)
	msg := u.EffectiveMessage

	var video string
	photo := repliedPhoto(msg)
	if reply := msg.ReplyToMessage; reply != nil && reply.Video != nil {
		video = reply.Video.FileId
	}

	args := commandArgs(msg.Text)
	if args == "" && (photo != "" || video != "") {
		args = "photo=" + photo
		if photo == "" {
			args = "video=" + video
		}
	}

	req, err := parseBroadcast(args)
	if err != nil {
		return h.reply(ctx, b, T(language, "usage_broadcast"), nil)
	}

	if req.Photo == "" {
		req.Photo = photo
	}

	if req.Video == "" {
		req.Video = video
	}

	resp, err := h.broadcastDomain.Broadcast(ctx, req)
	if err != nil {
		return h.replyError(ctx, b, language, err)
	}

	return h.reply(ctx, b, T(language, "broadcast_done", resp.ID, resp.Total, resp.Queued, resp.Failed), nil)
}
