package model

import "github.com/questx-lab/rewardbot/internal/entity"

func ConvertUser(user *entity.User) User {
	if user == nil {
		return User{}
	}

	return User{
		UserID:   user.UserID,
		Balance:  user.Balance,
		Language: user.Language,
	}
}

func ConvertTask(task *entity.LocalizedTask) Task {
	if task == nil {
		return Task{}
	}

	return Task{
		ID:          task.TaskID,
		Title:       task.Title,
		Description: task.Description,
		Source:      task.Source,
		Link:        task.Link,
		Cover:       task.Cover,
		Balance:     task.Balance,
	}
}

func ConvertTaskTitle(title entity.TaskTitle) TaskTitle {
	return TaskTitle{ID: title.TaskID, Title: title.Title}
}

func ConvertLeaderboardEntry(entry entity.LeaderboardEntry) LeaderboardEntry {
	return LeaderboardEntry{
		UserID:  entry.UserID,
		Place:   entry.Place,
		Balance: entry.Balance,
	}
}
