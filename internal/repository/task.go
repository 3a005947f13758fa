package repository

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/questx-lab/rewardbot/pkg/xredis"
	"gorm.io/gorm"
)

type UpdateTaskParams struct {
	Titles       entity.Locales
	Descriptions entity.Locales
	Source       *string
	Link         *string
	Cover        *string
	Balance      *int64
}

type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	Update(ctx context.Context, taskID int64, params UpdateTaskParams) (*entity.Task, error)
	Delete(ctx context.Context, taskID int64) error
	Get(ctx context.Context, taskID int64) (*entity.Task, error)
	GetByID(ctx context.Context, taskID int64, locale string) (*entity.LocalizedTask, error)
	GetList(ctx context.Context) ([]entity.Task, error)
}

type taskRepository struct {
	redisClient xredis.Client
}

func NewTaskRepository(redisClient xredis.Client) *taskRepository {
	return &taskRepository{redisClient: redisClient}
}

var taskSchema = hashSchema{
	required: []string{"task_id", "titles", "balance"},
	optional: []string{"descriptions", "source", "link", "cover"},
}

type cachedTask struct {
	TaskID       int64  `mapstructure:"task_id"`
	Titles       string `mapstructure:"titles"`
	Descriptions string `mapstructure:"descriptions"`
	Source       string `mapstructure:"source"`
	Link         string `mapstructure:"link"`
	Cover        string `mapstructure:"cover"`
	Balance      int64  `mapstructure:"balance"`
}

func (r *taskRepository) fromCache(ctx context.Context, taskID int64) (*entity.Task, bool) {
	values, ok := readHash(ctx, r.redisClient, taskKey(taskID), taskSchema)
	if !ok {
		return nil, false
	}

	var cached cachedTask
	if err := decodeHash(values, &cached); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode cached task %d: %v", taskID, err)
		return nil, false
	}

	task := &entity.Task{
		TaskID:  cached.TaskID,
		Source:  cached.Source,
		Link:    cached.Link,
		Cover:   cached.Cover,
		Balance: cached.Balance,
	}

	if err := json.Unmarshal([]byte(cached.Titles), &task.Titles); err != nil {
		xcontext.Logger(ctx).Warnf("Invalid cached titles of task %d: %v", taskID, err)
		return nil, false
	}

	if cached.Descriptions != "" {
		if err := json.Unmarshal([]byte(cached.Descriptions), &task.Descriptions); err != nil {
			xcontext.Logger(ctx).Warnf("Invalid cached descriptions of task %d: %v", taskID, err)
			return nil, false
		}
	}

	return task, true
}

func (r *taskRepository) cache(ctx context.Context, task entity.Task) {
	titles, err := json.Marshal(task.Titles)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot marshal titles of task %d: %v", task.TaskID, err)
		return
	}

	descriptions, err := json.Marshal(task.Descriptions)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot marshal descriptions of task %d: %v", task.TaskID, err)
		return
	}

	writeHash(ctx, r.redisClient, taskKey(task.TaskID), map[string]string{
		"task_id":      strconv.FormatInt(task.TaskID, 10),
		"titles":       string(titles),
		"descriptions": string(descriptions),
		"source":       task.Source,
		"link":         task.Link,
		"cover":        task.Cover,
		"balance":      strconv.FormatInt(task.Balance, 10),
	})
}

// Create assigns a snowflake id to the task if it has none.
func (r *taskRepository) Create(ctx context.Context, task *entity.Task) error {
	if task.TaskID == 0 {
		task.TaskID = xcontext.SnowFlake(ctx).Generate().Int64()
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := xcontext.DB(ctx).Create(task).Error; err != nil {
		return err
	}

	key := taskKey(task.TaskID)
	xcontext.AfterCommit(ctx, func() { invalidate(ctx, r.redisClient, key, allTasksKey) })

	return xcontext.WithCommitDBTransaction(ctx)
}

func (r *taskRepository) Update(ctx context.Context, taskID int64, params UpdateTaskParams) (*entity.Task, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	updates := map[string]any{}
	if params.Titles != nil {
		updates["titles"] = params.Titles
	}

	if params.Descriptions != nil {
		updates["descriptions"] = params.Descriptions
	}

	if params.Source != nil {
		updates["source"] = *params.Source
	}

	if params.Link != nil {
		updates["link"] = *params.Link
	}

	if params.Cover != nil {
		updates["cover"] = *params.Cover
	}

	if params.Balance != nil {
		updates["balance"] = *params.Balance
	}

	if len(updates) > 0 {
		err := xcontext.DB(ctx).Model(&entity.Task{}).
			Where("task_id=?", taskID).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}

	var result entity.Task
	if err := xcontext.DB(ctx).Take(&result, "task_id=?", taskID).Error; err != nil {
		return nil, err
	}

	xcontext.AfterCommit(ctx, func() { invalidate(ctx, r.redisClient, taskKey(taskID), allTasksKey) })

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return nil, err
	}

	return &result, nil
}

// Delete also removes every completion of the task.
func (r *taskRepository) Delete(ctx context.Context, taskID int64) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	tx := xcontext.DB(ctx).Delete(&entity.Task{}, "task_id=?", taskID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	xcontext.AfterCommit(ctx, func() {
		invalidate(ctx, r.redisClient, taskKey(taskID), allTasksKey)
	})

	return xcontext.WithCommitDBTransaction(ctx)
}

func (r *taskRepository) Get(ctx context.Context, taskID int64) (*entity.Task, error) {
	if task, ok := r.fromCache(ctx, taskID); ok {
		return task, nil
	}

	var result entity.Task
	if err := xcontext.DB(ctx).Take(&result, "task_id=?", taskID).Error; err != nil {
		return nil, err
	}

	populate(ctx, func() { r.cache(ctx, result) })
	return &result, nil
}

// GetByID projects the title and description of the task to locale.
func (r *taskRepository) GetByID(ctx context.Context, taskID int64, locale string) (*entity.LocalizedTask, error) {
	task, err := r.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return task.Localize(locale), nil
}

// GetList keeps every locale of every task in the cached list so that callers
// can project it to their own locale.
func (r *taskRepository) GetList(ctx context.Context) ([]entity.Task, error) {
	var result []entity.Task
	if readObj(ctx, r.redisClient, allTasksKey, &result) {
		return result, nil
	}

	if err := xcontext.DB(ctx).Order("task_id").Find(&result).Error; err != nil {
		return nil, err
	}

	populate(ctx, func() { writeObj(ctx, r.redisClient, allTasksKey, result) })
	return result, nil
}
