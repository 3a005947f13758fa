package bot

import (
	"fmt"

	"github.com/questx-lab/rewardbot/internal/entity"
)

var texts = map[string]map[string]string{
	"en": {
		"choose_language":   "Choose your language",
		"menu":              "Complete tasks and invite friends to earn rewards.",
		"btn_tasks":         "Tasks",
		"btn_friends":       "Friends",
		"btn_leaders":       "Leaders",
		"btn_profile":       "Profile",
		"btn_language":      "Language: EN",
		"btn_back":          "Back",
		"btn_open":          "Open",
		"btn_check":         "Check",
		"tasks":             "Available tasks:",
		"no_tasks":          "You have completed every task. Come back later!",
		"task_card":         "%s\n\n%s\n\nReward: %d",
		"task_done":         "Task completed! +%d, your balance is %d.",
		"task_already":      "You have already completed this task.",
		"task_not_verified": "The task is not done yet.",
		"task_unavailable":  "Cannot check the task right now, try again later.",
		"friends":           "Invite friends with your link:\n%s\n\nFirst level: %d\nSecond level: %d",
		"leaders":           "Top users:",
		"leaders_row":       "%d. %d - %d",
		"leaders_place":     "Your place: %d",
		"profile":           "ID: %d\nBalance: %d\nLanguage: %s",
		"referral_reward":   "Your friend joined! You received %d (level %d).",
		"error":             "Something went wrong, try again later.",
		"not_found":         "Not found.",
		"admin_only":        "Only admins can do that.",
		"task_created":      "Task %d created.",
		"task_deleted":      "Task %d deleted.",
		"task_updated":      "Task %d updated: %s, reward %d.",
		"broadcast_done":    "Broadcast %s: %d users, %d sent, %d failed.",
		"usage_addtask":     "Usage: /addtask [cover=<file id or url>] <reward> <link> <en title> | <ru title> [|| <en description> | <ru description>]",
		"usage_edittask":    "Usage: /edittask <task id> [reward=<n>] [link=<url>] [cover=<file id or url>] [<en title> | <ru title>] [|| <en description> | <ru description>]",
		"usage_deltask":     "Usage: /deltask <task id>",
		"usage_broadcast":   "Usage: /broadcast [photo=<file id>] [video=<file id>] [album=<file id>,<file id>] [button=<text>=<url>] <en text> | <ru text>",
	},
	"ru": {
		"choose_language":   "Выберите язык",
		"menu":              "Выполняйте задания и приглашайте друзей, чтобы получать награды.",
		"btn_tasks":         "Задания",
		"btn_friends":       "Друзья",
		"btn_leaders":       "Лидеры",
		"btn_profile":       "Профиль",
		"btn_language":      "Язык: RU",
		"btn_back":          "Назад",
		"btn_open":          "Открыть",
		"btn_check":         "Проверить",
		"tasks":             "Доступные задания:",
		"no_tasks":          "Вы выполнили все задания. Загляните позже!",
		"task_card":         "%s\n\n%s\n\nНаграда: %d",
		"task_done":         "Задание выполнено! +%d, ваш баланс %d.",
		"task_already":      "Вы уже выполнили это задание.",
		"task_not_verified": "Задание еще не выполнено.",
		"task_unavailable":  "Не удалось проверить задание, попробуйте позже.",
		"friends":           "Приглашайте друзей по ссылке:\n%s\n\nПервый уровень: %d\nВторой уровень: %d",
		"leaders":           "Лучшие пользователи:",
		"leaders_row":       "%d. %d - %d",
		"leaders_place":     "Ваше место: %d",
		"profile":           "ID: %d\nБаланс: %d\nЯзык: %s",
		"referral_reward":   "Ваш друг присоединился! Вы получили %d (уровень %d).",
		"error":             "Что-то пошло не так, попробуйте позже.",
		"not_found":         "Не найдено.",
		"admin_only":        "Только для администраторов.",
		"task_created":      "Задание %d создано.",
		"task_deleted":      "Задание %d удалено.",
		"task_updated":      "Задание %d обновлено: %s, награда %d.",
		"broadcast_done":    "Рассылка %s: %d пользователей, %d отправлено, %d ошибок.",
		"usage_addtask":     "Формат: /addtask [cover=<file id или url>] <награда> <ссылка> <название en> | <название ru> [|| <описание en> | <описание ru>]",
		"usage_edittask":    "Формат: /edittask <id задания> [reward=<n>] [link=<url>] [cover=<file id или url>] [<название en> | <название ru>] [|| <описание en> | <описание ru>]",
		"usage_deltask":     "Формат: /deltask <id задания>",
		"usage_broadcast":   "Формат: /broadcast [photo=<file id>] [video=<file id>] [album=<file id>,<file id>] [button=<текст>=<url>] <текст en> | <текст ru>",
	},
}

// T renders key in language, falling back to english and then to the key.
func T(language, key string, a ...any) string {
	text, ok := texts[language][key]
	if !ok {
		text, ok = texts[entity.DefaultLanguage][key]
	}

	if !ok {
		return key
	}

	if len(a) == 0 {
		return text
	}

	return fmt.Sprintf(text, a...)
}
