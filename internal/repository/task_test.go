package repository

import (
	"testing"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/pkg/testutil"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTask(titles entity.Locales) *entity.Task {
	return &entity.Task{
		Titles:       titles,
		Descriptions: entity.Locales{"en": "Subscribe", "ru": "Подпишись"},
		Source:       "t",
		Link:         "https://t.me/news",
		Balance:      250,
	}
}

func Test_taskRepository_GetByID_Locale(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMemoryRedisClient()
	repo := NewTaskRepository(redisClient)

	task := newTask(entity.Locales{"en": "Join", "ru": "Вступить"})
	require.NoError(t, repo.Create(ctx, task))
	require.NotZero(t, task.TaskID)
	require.False(t, redisClient.Has(taskKey(task.TaskID)))

	// From database, filling the cache.
	got, err := repo.GetByID(ctx, task.TaskID, "fr")
	require.NoError(t, err)
	require.Equal(t, "Join", got.Title)
	require.True(t, redisClient.Has(taskKey(task.TaskID)))

	// From cache.
	got, err = repo.GetByID(ctx, task.TaskID, "fr")
	require.NoError(t, err)
	require.Equal(t, "Join", got.Title)
	require.Equal(t, "Subscribe", got.Description)
	require.Equal(t, int64(250), got.Balance)

	got, err = repo.GetByID(ctx, task.TaskID, "ru")
	require.NoError(t, err)
	require.Equal(t, "Вступить", got.Title)
	require.Equal(t, "Подпишись", got.Description)

	// From database.
	require.NoError(t, redisClient.Del(ctx, taskKey(task.TaskID)))
	got, err = repo.GetByID(ctx, task.TaskID, "fr")
	require.NoError(t, err)
	require.Equal(t, "Join", got.Title)
	require.Equal(t, "t", got.Source)
	require.Equal(t, "https://t.me/news", got.Link)

	noEnglish := newTask(entity.Locales{"ru": "Вступить"})
	require.NoError(t, repo.Create(ctx, noEnglish))
	got, err = repo.GetByID(ctx, noEnglish.TaskID, "fr")
	require.NoError(t, err)
	require.Equal(t, entity.NoTitle, got.Title)
}

func Test_taskRepository_Update_InvalidatesList(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMemoryRedisClient()
	repo := NewTaskRepository(redisClient)

	task := newTask(entity.Locales{"en": "Old title"})
	require.NoError(t, repo.Create(ctx, task))

	tasks, err := repo.GetList(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.True(t, redisClient.Has(allTasksKey))

	_, err = repo.GetByID(ctx, task.TaskID, "en")
	require.NoError(t, err)

	updated, err := repo.Update(ctx, task.TaskID, UpdateTaskParams{
		Titles:  entity.Locales{"en": "New title"},
		Balance: ptr(int64(500)),
	})
	require.NoError(t, err)
	require.Equal(t, int64(500), updated.Balance)
	require.False(t, redisClient.Has(allTasksKey))
	require.False(t, redisClient.Has(taskKey(task.TaskID)))

	tasks, err = repo.GetList(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "New title", tasks[0].Title("en"))

	got, err := repo.GetByID(ctx, task.TaskID, "en")
	require.NoError(t, err)
	require.Equal(t, "New title", got.Title)
	require.Equal(t, int64(500), got.Balance)

	_, err = repo.Update(ctx, 12345, UpdateTaskParams{Balance: ptr(int64(1))})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_taskRepository_GetList_KeepsAllLocales(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewTaskRepository(testutil.NewMemoryRedisClient())

	require.NoError(t, repo.Create(ctx, newTask(entity.Locales{"en": "Join", "ru": "Вступить"})))

	_, err := repo.GetList(ctx)
	require.NoError(t, err)

	cached, err := repo.GetList(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	require.Equal(t, entity.Locales{"en": "Join", "ru": "Вступить"}, cached[0].Titles)
	require.Equal(t, "Вступить", cached[0].Title("ru"))
}

func Test_taskRepository_Delete(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMemoryRedisClient()
	repo := NewTaskRepository(redisClient)
	userRepo := NewUserRepository(redisClient)
	userTaskRepo := NewUserTaskRepository()

	_, err := userRepo.Create(ctx, CreateUserParams{UserID: 1})
	require.NoError(t, err)

	task := newTask(entity.Locales{"en": "Join"})
	require.NoError(t, repo.Create(ctx, task))
	_, err = repo.GetList(ctx)
	require.NoError(t, err)

	ok, err := userTaskRepo.Complete(ctx, 1, task.TaskID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.Delete(ctx, task.TaskID))
	require.False(t, redisClient.Has(taskKey(task.TaskID)))
	require.False(t, redisClient.Has(allTasksKey))

	_, err = repo.GetByID(ctx, task.TaskID, "en")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.UserTask{}).Count(&count).Error)
	require.Zero(t, count)

	require.ErrorIs(t, repo.Delete(ctx, task.TaskID), gorm.ErrRecordNotFound)
}

func Test_taskRepository_IncompleteCache(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMemoryRedisClient()
	repo := NewTaskRepository(redisClient)

	task := newTask(entity.Locales{"en": "Join"})
	require.NoError(t, repo.Create(ctx, task))

	key := taskKey(task.TaskID)
	require.NoError(t, redisClient.Del(ctx, key))
	require.NoError(t, redisClient.HSet(ctx, key, map[string]string{"task_id": "1", "titles": `{"en":"Stale"}`}))

	got, err := repo.GetByID(ctx, task.TaskID, "en")
	require.NoError(t, err)
	require.Equal(t, "Join", got.Title)
}

func Test_taskRepository_Create_InvalidatesList(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMemoryRedisClient()
	repo := NewTaskRepository(redisClient)

	require.NoError(t, repo.Create(ctx, newTask(entity.Locales{"en": "Join"})))
	tasks, err := repo.GetList(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.True(t, redisClient.Has(allTasksKey))

	require.NoError(t, repo.Create(ctx, newTask(entity.Locales{"en": "Visit"})))
	require.False(t, redisClient.Has(allTasksKey))

	tasks, err = repo.GetList(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
}

func Test_taskRepository_GetList_InTransactionDoesNotFillCache(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMemoryRedisClient()
	repo := NewTaskRepository(redisClient)

	task := newTask(entity.Locales{"en": "Join"})
	require.NoError(t, repo.Create(ctx, task))

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	tasks, err := repo.GetList(txCtx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	_, err = repo.GetByID(txCtx, task.TaskID, "en")
	require.NoError(t, err)
	require.NoError(t, xcontext.WithCommitDBTransaction(txCtx))

	require.False(t, redisClient.Has(allTasksKey))
	require.False(t, redisClient.Has(taskKey(task.TaskID)))
}

func Test_taskRepository_CacheUnavailable(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMemoryRedisClient()
	repo := NewTaskRepository(redisClient)

	task := newTask(entity.Locales{"en": "Join", "ru": "Вступить"})
	require.NoError(t, repo.Create(ctx, task))
	_, err := repo.GetList(ctx)
	require.NoError(t, err)
	redisClient.Down.Store(true)

	got, err := repo.GetByID(ctx, task.TaskID, "ru")
	require.NoError(t, err)
	require.Equal(t, "Вступить", got.Title)
	require.Equal(t, int64(250), got.Balance)

	_, err = repo.GetByID(ctx, 12345, "ru")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Create(ctx, newTask(entity.Locales{"en": "Visit"})))
	tasks, err := repo.GetList(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, task.TaskID, tasks[0].TaskID)
}
