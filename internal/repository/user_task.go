package repository

import (
	"context"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type UserTaskRepository interface {
	GetIncompleteTasks(ctx context.Context, userID int64, locale string) ([]entity.TaskTitle, error)
	Complete(ctx context.Context, userID, taskID int64) (bool, error)
	IsCompleted(ctx context.Context, userID, taskID int64) (bool, error)
}

type userTaskRepository struct{}

func NewUserTaskRepository() *userTaskRepository {
	return &userTaskRepository{}
}

// GetIncompleteTasks is computed from the database on every call.
func (r *userTaskRepository) GetIncompleteTasks(
	ctx context.Context, userID int64, locale string,
) ([]entity.TaskTitle, error) {
	var tasks []entity.Task
	err := xcontext.DB(ctx).
		Select("task_id", "titles").
		Order("task_id").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	var completedIDs []int64
	err = xcontext.DB(ctx).Model(&entity.UserTask{}).
		Where("user_id=?", userID).
		Pluck("task_id", &completedIDs).Error
	if err != nil {
		return nil, err
	}

	completed := make(map[int64]struct{}, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = struct{}{}
	}

	result := []entity.TaskTitle{}
	for i := range tasks {
		if _, ok := completed[tasks[i].TaskID]; ok {
			continue
		}

		result = append(result, entity.TaskTitle{
			TaskID: tasks[i].TaskID,
			Title:  tasks[i].Title(locale),
		})
	}

	return result, nil
}

// Complete returns false if the user has already completed the task. The
// primary key of user_tasks rejects concurrent duplicates, the lookup before
// the insert only saves a write.
func (r *userTaskRepository) Complete(ctx context.Context, userID, taskID int64) (bool, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	completed, err := r.IsCompleted(ctx, userID, taskID)
	if err != nil {
		return false, err
	}

	if completed {
		return false, nil
	}

	tx := xcontext.DB(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.UserTask{UserID: userID, TaskID: taskID, Status: true})
	if tx.Error != nil {
		return false, tx.Error
	}

	if tx.RowsAffected == 0 {
		return false, nil
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return false, err
	}

	return true, nil
}

func (r *userTaskRepository) IsCompleted(ctx context.Context, userID, taskID int64) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.UserTask{}).
		Where("user_id=? AND task_id=?", userID, taskID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
