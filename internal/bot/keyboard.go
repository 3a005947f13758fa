package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/questx-lab/rewardbot/internal/model"
)

const (
	cbMenu     = "menu"
	cbTasks    = "tasks"
	cbFriends  = "friends"
	cbLeaders  = "leaders"
	cbProfile  = "profile"
	cbLanguage = "language"

	cbTaskPrefix   = "task:"
	cbCheckPrefix  = "check:"
	cbSelectPrefix = "lang:"
)

func button(text, data string) gotgbot.InlineKeyboardButton {
	return gotgbot.InlineKeyboardButton{Text: text, CallbackData: data}
}

func menuKeyboard(language string) gotgbot.InlineKeyboardMarkup {
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: [][]gotgbot.InlineKeyboardButton{
		{button(T(language, "btn_tasks"), cbTasks)},
		{button(T(language, "btn_friends"), cbFriends), button(T(language, "btn_leaders"), cbLeaders)},
		{button(T(language, "btn_profile"), cbProfile), button(T(language, "btn_language"), cbLanguage)},
	}}
}

func backKeyboard(language, target string) gotgbot.InlineKeyboardMarkup {
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: [][]gotgbot.InlineKeyboardButton{
		{button(T(language, "btn_back"), target)},
	}}
}

// selectLanguageKeyboard carries the referrer of a new user until the user
// picks a language and gets registered.
func selectLanguageKeyboard(referredBy int64) gotgbot.InlineKeyboardMarkup {
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: [][]gotgbot.InlineKeyboardButton{{
		button("English", fmt.Sprintf("%sen:%d", cbSelectPrefix, referredBy)),
		button("Русский", fmt.Sprintf("%sru:%d", cbSelectPrefix, referredBy)),
	}}}
}

func tasksKeyboard(language string, tasks []model.TaskTitle) gotgbot.InlineKeyboardMarkup {
	rows := make([][]gotgbot.InlineKeyboardButton, 0, len(tasks)+1)
	for _, task := range tasks {
		rows = append(rows, []gotgbot.InlineKeyboardButton{
			button(task.Title, cbTaskPrefix+strconv.FormatInt(task.ID, 10)),
		})
	}

	rows = append(rows, []gotgbot.InlineKeyboardButton{button(T(language, "btn_back"), cbMenu)})
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func taskKeyboard(language string, task model.Task) gotgbot.InlineKeyboardMarkup {
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: [][]gotgbot.InlineKeyboardButton{
		{{Text: T(language, "btn_open"), Url: task.Link}},
		{button(T(language, "btn_check"), cbCheckPrefix+strconv.FormatInt(task.ID, 10))},
		{button(T(language, "btn_back"), cbTasks)},
	}}
}

func urlKeyboard(b *model.Button) *gotgbot.InlineKeyboardMarkup {
	if b == nil {
		return nil
	}

	return &gotgbot.InlineKeyboardMarkup{InlineKeyboard: [][]gotgbot.InlineKeyboardButton{
		{{Text: b.Text, Url: b.URL}},
	}}
}

func parseIDData(data, prefix string) (int64, bool) {
	if !strings.HasPrefix(data, prefix) {
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	return id, err == nil
}

// parseSelectLanguage parses "lang:<language>:<referrer>".
func parseSelectLanguage(data string) (string, int64, bool) {
	language, referrer, ok := strings.Cut(strings.TrimPrefix(data, cbSelectPrefix), ":")
	if !ok || language == "" {
		return "", 0, false
	}

	referredBy, err := strconv.ParseInt(referrer, 10, 64)
	if err != nil {
		return "", 0, false
	}

	return language, referredBy, true
}

type startArg struct {
	referredBy int64
	taskID     int64
}

// parseStartArg reads the payload of a deep link: a referrer id or
// task_<task id>. Anything else is ignored.
func parseStartArg(arg string) startArg {
	if id, ok := parseIDData(arg, "task_"); ok {
		return startArg{taskID: id}
	}

	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id > 0 {
		return startArg{referredBy: id}
	}

	return startArg{}
}
