package domain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/internal/model"
	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/pkg/errorx"
	"github.com/questx-lab/rewardbot/pkg/testutil"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func adminContext(ctx context.Context) context.Context {
	cfg := xcontext.Configs(ctx)
	cfg.Telegram.AdminIDs = []int64{testutil.User1.UserID}
	ctx = xcontext.WithConfigs(ctx, cfg)
	return xcontext.WithRequestUserID(ctx, testutil.User1.UserID)
}

func memberStatus(status string) *testutil.MockTelegramEndpoint {
	return &testutil.MockTelegramEndpoint{
		GetMemberStatusFunc: func(ctx context.Context, chatID string, userID int64) (string, error) {
			if chatID != "@rewardnews" {
				return "", errors.New("chat not found")
			}

			return status, nil
		},
	}
}

func Test_taskDomain_Create(t *testing.T) {
	ctx := adminContext(testutil.MockContext())
	testutil.CreateFixtureDb(ctx)
	domain := NewTaskDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)

	resp, err := domain.Create(ctx, &model.CreateTaskRequest{
		Titles:  map[string]string{"en": "Follow us", "ru": " Подпишись ", "de": " "},
		Link:    "https://www.instagram.com/reward",
		Balance: 300,
	})
	require.NoError(t, err)
	require.NotZero(t, resp.ID)

	var task entity.Task
	require.NoError(t, xcontext.DB(ctx).Take(&task, "task_id=?", resp.ID).Error)
	require.Equal(t, "instagram", task.Source)
	require.Equal(t, entity.Locales{"en": "Follow us", "ru": "Подпишись"}, task.Titles)
	require.Equal(t, int64(300), task.Balance)
}

func Test_taskDomain_Create_Invalid(t *testing.T) {
	ctx := adminContext(testutil.MockContext())
	domain := NewTaskDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)

	tests := []struct {
		name string
		req  *model.CreateTaskRequest
	}{
		{
			name: "no title",
			req:  &model.CreateTaskRequest{Link: "https://t.me/news", Balance: 10},
		},
		{
			name: "bad link",
			req:  &model.CreateTaskRequest{Titles: map[string]string{"en": "x"}, Link: "t.me/news", Balance: 10},
		},
		{
			name: "no reward",
			req:  &model.CreateTaskRequest{Titles: map[string]string{"en": "x"}, Link: "https://t.me/news"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.Create(ctx, tt.req)
			require.True(t, errorx.Is(err, errorx.BadRequest))
		})
	}

	_, err := domain.Create(xcontext.WithRequestUserID(ctx, testutil.User2.UserID), &model.CreateTaskRequest{
		Titles:  map[string]string{"en": "x"},
		Link:    "https://t.me/news",
		Balance: 10,
	})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))
}

func Test_taskDomain_Update(t *testing.T) {
	ctx := adminContext(testutil.MockContext())
	testutil.CreateFixtureDb(ctx)
	requests := repository.NewRequests(testutil.NewMemoryRedisClient())
	domain := NewTaskDomain(requests, nil)

	// Warm both caches.
	_, err := requests.Tasks().GetList(ctx)
	require.NoError(t, err)
	_, err = requests.Tasks().GetByID(ctx, testutil.VisitTask.TaskID, "en")
	require.NoError(t, err)

	resp, err := domain.Update(ctx, &model.UpdateTaskRequest{
		ID:     testutil.VisitTask.TaskID,
		Titles: map[string]string{"en": "Watch the new video"},
		Link:   "https://t.me/other",
	})
	require.NoError(t, err)
	require.Equal(t, "Watch the new video", resp.Title)
	require.Equal(t, "t", resp.Source)
	require.Equal(t, testutil.VisitTask.Balance, resp.Balance)

	tasks, err := requests.Tasks().GetList(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "Watch the new video", tasks[1].Title("en"))

	got, err := domain.Get(ctx, &model.GetTaskRequest{ID: testutil.VisitTask.TaskID, Locale: "ru"})
	require.NoError(t, err)
	require.Equal(t, "Watch the new video", got.Task.Title)

	_, err = domain.Update(ctx, &model.UpdateTaskRequest{ID: 999, Balance: 1})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_taskDomain_Delete(t *testing.T) {
	ctx := adminContext(testutil.MockContext())
	testutil.CreateFixtureDb(ctx)
	domain := NewTaskDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), memberStatus("member"))

	_, err := domain.Check(ctx, &model.CheckTaskRequest{ID: testutil.ChannelTask.TaskID, UserID: testutil.User2.UserID})
	require.NoError(t, err)

	_, err = domain.Delete(ctx, &model.DeleteTaskRequest{ID: testutil.ChannelTask.TaskID})
	require.NoError(t, err)

	_, err = domain.Get(ctx, &model.GetTaskRequest{ID: testutil.ChannelTask.TaskID})
	require.True(t, errorx.Is(err, errorx.NotFound))

	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.UserTask{}).Count(&count).Error)
	require.Zero(t, count)

	_, err = domain.Delete(ctx, &model.DeleteTaskRequest{ID: testutil.ChannelTask.TaskID})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_taskDomain_Get(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := NewTaskDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)

	resp, err := domain.Get(ctx, &model.GetTaskRequest{
		ID:     testutil.ChannelTask.TaskID,
		UserID: testutil.User1.UserID,
		Locale: "fr",
	})
	require.NoError(t, err)
	require.Equal(t, "Join our channel", resp.Task.Title)
	require.Equal(t, "Subscribe and press check", resp.Task.Description)
	require.False(t, resp.Completed)

	resp, err = domain.Get(ctx, &model.GetTaskRequest{ID: testutil.ChannelTask.TaskID, Locale: "ru"})
	require.NoError(t, err)
	require.Equal(t, "Подпишись на канал", resp.Task.Title)
	require.Equal(t, "Subscribe and press check", resp.Task.Description)
}

func Test_taskDomain_GetIncomplete(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := NewTaskDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)

	resp, err := domain.GetIncomplete(ctx, &model.GetIncompleteTasksRequest{UserID: testutil.User1.UserID, Locale: "ru"})
	require.NoError(t, err)
	require.Equal(t, []model.TaskTitle{
		{ID: testutil.ChannelTask.TaskID, Title: "Подпишись на канал"},
		{ID: testutil.VisitTask.TaskID, Title: "Watch the video"},
	}, resp.Tasks)

	_, err = domain.Check(ctx, &model.CheckTaskRequest{ID: testutil.VisitTask.TaskID, UserID: testutil.User1.UserID})
	require.NoError(t, err)

	resp, err = domain.GetIncomplete(ctx, &model.GetIncompleteTasksRequest{UserID: testutil.User1.UserID, Locale: "en"})
	require.NoError(t, err)
	require.Equal(t, []model.TaskTitle{{ID: testutil.ChannelTask.TaskID, Title: "Join our channel"}}, resp.Tasks)
}

func Test_taskDomain_Check_Channel(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	requests := repository.NewRequests(testutil.NewMemoryRedisClient())
	req := &model.CheckTaskRequest{ID: testutil.ChannelTask.TaskID, UserID: testutil.User2.UserID}

	_, err := NewTaskDomain(requests, memberStatus("left")).Check(ctx, req)
	require.True(t, errorx.Is(err, errorx.NotVerified))

	broken := &testutil.MockTelegramEndpoint{}
	_, err = NewTaskDomain(requests, broken).Check(ctx, req)
	require.True(t, errorx.Is(err, errorx.Unavailable))

	domain := NewTaskDomain(requests, memberStatus("administrator"))
	resp, err := domain.Check(ctx, req)
	require.NoError(t, err)
	require.Equal(t, int64(500), resp.Reward)
	require.Equal(t, int64(1500), resp.Balance)

	_, err = domain.Check(ctx, req)
	require.True(t, errorx.Is(err, errorx.AlreadyExists))
	require.Equal(t, int64(1500), balanceOf(t, ctx, testutil.User2.UserID))

	profile, err := NewUserDomain(requests).GetProfile(ctx, &model.GetProfileRequest{UserID: testutil.User2.UserID})
	require.NoError(t, err)
	require.Equal(t, int64(1500), profile.Balance)
}

func Test_taskDomain_Check_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := NewTaskDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)
	req := &model.CheckTaskRequest{ID: testutil.VisitTask.TaskID, UserID: testutil.User3.UserID}

	var wg sync.WaitGroup
	var mutex sync.Mutex
	paid, rejected := 0, 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := domain.Check(ctx, req)

			mutex.Lock()
			defer mutex.Unlock()
			switch {
			case err == nil:
				paid++
			case errorx.Is(err, errorx.AlreadyExists):
				rejected++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, paid)
	require.Equal(t, 4, rejected)
	require.Equal(t, int64(1200), balanceOf(t, ctx, testutil.User3.UserID))
}

func Test_taskDomain_Check_NotFound(t *testing.T) {
	ctx := testutil.MockContext()
	domain := NewTaskDomain(repository.NewRequests(testutil.NewMemoryRedisClient()), nil)

	_, err := domain.Check(ctx, &model.CheckTaskRequest{ID: 999, UserID: 1})
	require.True(t, errorx.Is(err, errorx.NotFound))
}
