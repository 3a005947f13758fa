package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/questx-lab/rewardbot/internal/domain/taskcheck"
	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/internal/model"
	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/pkg/errorx"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"gorm.io/gorm"
)

type TaskDomain interface {
	Create(context.Context, *model.CreateTaskRequest) (*model.CreateTaskResponse, error)
	Update(context.Context, *model.UpdateTaskRequest) (*model.UpdateTaskResponse, error)
	Delete(context.Context, *model.DeleteTaskRequest) (*model.DeleteTaskResponse, error)
	Get(context.Context, *model.GetTaskRequest) (*model.GetTaskResponse, error)
	GetIncomplete(context.Context, *model.GetIncompleteTasksRequest) (*model.GetIncompleteTasksResponse, error)
	Check(context.Context, *model.CheckTaskRequest) (*model.CheckTaskResponse, error)
}

type taskDomain struct {
	requests *repository.Requests
	members  taskcheck.MemberGetter
}

func NewTaskDomain(requests *repository.Requests, members taskcheck.MemberGetter) *taskDomain {
	return &taskDomain{
		requests: requests,
		members:  members,
	}
}

func checkAdmin(ctx context.Context) error {
	if !xcontext.Configs(ctx).Telegram.IsAdmin(xcontext.RequestUserID(ctx)) {
		return errorx.New(errorx.PermissionDenied, "Only admins can manage tasks")
	}

	return nil
}

func cleanLocales(locales map[string]string) entity.Locales {
	result := entity.Locales{}
	for locale, text := range locales {
		if text = strings.TrimSpace(text); text != "" {
			result[locale] = text
		}
	}

	return result
}

func (d *taskDomain) Create(
	ctx context.Context, req *model.CreateTaskRequest,
) (*model.CreateTaskResponse, error) {
	if err := checkAdmin(ctx); err != nil {
		return nil, err
	}

	titles := cleanLocales(req.Titles)
	if len(titles) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Task needs a title")
	}

	if req.Balance <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Task reward must be positive")
	}

	source, err := taskcheck.SourceFromLink(req.Link)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid task link: %v", err)
	}

	task := &entity.Task{
		Titles:       titles,
		Descriptions: cleanLocales(req.Descriptions),
		Source:       source,
		Link:         req.Link,
		Cover:        req.Cover,
		Balance:      req.Balance,
	}
	if err := d.requests.Tasks().Create(ctx, task); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create task: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateTaskResponse{ID: task.TaskID}, nil
}

// Update changes only the non-empty fields of req.
func (d *taskDomain) Update(
	ctx context.Context, req *model.UpdateTaskRequest,
) (*model.UpdateTaskResponse, error) {
	if err := checkAdmin(ctx); err != nil {
		return nil, err
	}

	params := repository.UpdateTaskParams{}
	if titles := cleanLocales(req.Titles); len(titles) > 0 {
		params.Titles = titles
	}

	if descriptions := cleanLocales(req.Descriptions); len(descriptions) > 0 {
		params.Descriptions = descriptions
	}

	if req.Link != "" {
		source, err := taskcheck.SourceFromLink(req.Link)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid task link: %v", err)
		}

		params.Link = &req.Link
		params.Source = &source
	}

	if req.Cover != "" {
		params.Cover = &req.Cover
	}

	if req.Balance < 0 {
		return nil, errorx.New(errorx.BadRequest, "Task reward must be positive")
	}

	if req.Balance > 0 {
		params.Balance = &req.Balance
	}

	task, err := d.requests.Tasks().Update(ctx, req.ID, params)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found task")
		}

		xcontext.Logger(ctx).Errorf("Cannot update task %d: %v", req.ID, err)
		return nil, errorx.Unknown
	}

	resp := model.UpdateTaskResponse(model.ConvertTask(task.Localize(entity.DefaultLanguage)))
	return &resp, nil
}

func (d *taskDomain) Delete(
	ctx context.Context, req *model.DeleteTaskRequest,
) (*model.DeleteTaskResponse, error) {
	if err := checkAdmin(ctx); err != nil {
		return nil, err
	}

	if err := d.requests.Tasks().Delete(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found task")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete task %d: %v", req.ID, err)
		return nil, errorx.Unknown
	}

	return &model.DeleteTaskResponse{}, nil
}

func (d *taskDomain) Get(
	ctx context.Context, req *model.GetTaskRequest,
) (*model.GetTaskResponse, error) {
	task, err := d.requests.Tasks().GetByID(ctx, req.ID, req.Locale)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found task")
		}

		xcontext.Logger(ctx).Errorf("Cannot get task %d: %v", req.ID, err)
		return nil, errorx.Unknown
	}

	completed, err := d.requests.UserTasks().IsCompleted(ctx, req.UserID, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get completion of task %d: %v", req.ID, err)
		return nil, errorx.Unknown
	}

	return &model.GetTaskResponse{Task: model.ConvertTask(task), Completed: completed}, nil
}

func (d *taskDomain) GetIncomplete(
	ctx context.Context, req *model.GetIncompleteTasksRequest,
) (*model.GetIncompleteTasksResponse, error) {
	titles, err := d.requests.UserTasks().GetIncompleteTasks(ctx, req.UserID, req.Locale)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get incomplete tasks of user %d: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	tasks := make([]model.TaskTitle, 0, len(titles))
	for _, title := range titles {
		tasks = append(tasks, model.ConvertTaskTitle(title))
	}

	return &model.GetIncompleteTasksResponse{Tasks: tasks}, nil
}

// Check verifies the task, marks it completed and pays its reward. A task is
// paid once per user even if Check runs concurrently.
func (d *taskDomain) Check(
	ctx context.Context, req *model.CheckTaskRequest,
) (*model.CheckTaskResponse, error) {
	task, err := d.requests.Tasks().Get(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found task")
		}

		xcontext.Logger(ctx).Errorf("Cannot get task %d: %v", req.ID, err)
		return nil, errorx.Unknown
	}

	completed, err := d.requests.UserTasks().IsCompleted(ctx, req.UserID, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get completion of task %d: %v", req.ID, err)
		return nil, errorx.Unknown
	}

	if completed {
		return nil, errorx.New(errorx.AlreadyExists, "Task is already completed")
	}

	ok, err := taskcheck.NewValidator(task.Source, d.members).Validate(ctx, req.UserID, task)
	if err != nil {
		return nil, errorx.Wrap(errorx.Unavailable, err, "Cannot verify task")
	}

	if !ok {
		return nil, errorx.New(errorx.NotVerified, "Task is not done yet")
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	first, err := d.requests.UserTasks().Complete(txCtx, req.UserID, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot complete task %d: %v", req.ID, err)
		return nil, errorx.Unknown
	}

	if !first {
		return nil, errorx.New(errorx.AlreadyExists, "Task is already completed")
	}

	user, err := d.requests.Users().Update(txCtx, req.UserID, repository.UpdateUserParams{
		BalanceDelta: task.Balance,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot credit user %d: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit task %d of user %d: %v", req.ID, req.UserID, err)
		return nil, errorx.Unknown
	}

	return &model.CheckTaskResponse{Reward: task.Balance, Balance: user.Balance}, nil
}
