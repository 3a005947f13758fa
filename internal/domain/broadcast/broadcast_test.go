package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/questx-lab/rewardbot/internal/model"
	"github.com/questx-lab/rewardbot/pkg/testutil"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type delivery struct {
	chatID int64
	kind   string
	value  string
}

type recorder struct {
	mutex      sync.Mutex
	deliveries []delivery
	failFor    map[int64]bool
}

func (r *recorder) add(d delivery) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.failFor[d.chatID] {
		return errors.New("Forbidden: bot was blocked by the user")
	}

	r.deliveries = append(r.deliveries, d)
	return nil
}

func (r *recorder) deliverer() *Deliverer {
	sender := &testutil.MockSender{
		SendTextFunc: func(ctx context.Context, chatID int64, text string, button *model.Button) error {
			if button != nil {
				text += " [" + button.Text + "](" + button.URL + ")"
			}
			return r.add(delivery{chatID: chatID, kind: "text", value: text})
		},
	}
	media := &testutil.MockTelegramEndpoint{
		SendPhotoFunc: func(ctx context.Context, chatID int64, fileID, caption string) error {
			return r.add(delivery{chatID: chatID, kind: "photo", value: fileID})
		},
		SendVideoFunc: func(ctx context.Context, chatID int64, fileID, caption string) error {
			return r.add(delivery{chatID: chatID, kind: "video", value: fileID})
		},
		SendMediaGroupFunc: func(ctx context.Context, chatID int64, fileIDs []string) error {
			return r.add(delivery{chatID: chatID, kind: "album", value: strings.Join(fileIDs, ",")})
		},
	}

	return NewDeliverer(sender, media)
}

func TestMessage_Text(t *testing.T) {
	texts := map[string]string{"en": "hello", "ru": "привет"}
	require.Equal(t, "привет", Message{Language: "ru", Texts: texts}.Text())
	require.Equal(t, "hello", Message{Language: "fr", Texts: texts}.Text())
	require.Equal(t, "hello", Message{Language: "ru", Texts: map[string]string{"en": "hello", "ru": ""}}.Text())
	require.Equal(t, "", Message{Language: "en"}.Text())
}

func TestDeliverer_Deliver(t *testing.T) {
	r := &recorder{}
	err := r.deliverer().Deliver(context.Background(), Message{
		UserID:   7,
		Language: "ru",
		Texts:    map[string]string{"en": "hello", "ru": "привет"},
		Photo:    "photo-id",
		Video:    "video-id",
		Button:   &model.Button{Text: "Open", URL: "https://example.com"},
	})
	require.NoError(t, err)
	require.Equal(t, []delivery{
		{chatID: 7, kind: "photo", value: "photo-id"},
		{chatID: 7, kind: "video", value: "video-id"},
		{chatID: 7, kind: "text", value: "привет [Open](https://example.com)"},
	}, r.deliveries)
}

func TestDeliverer_Deliver_Album(t *testing.T) {
	r := &recorder{}
	err := r.deliverer().Deliver(context.Background(), Message{
		UserID:   7,
		Language: "en",
		Album:    []string{"a", "b", "c"},
	})
	require.NoError(t, err)
	require.Equal(t, []delivery{{chatID: 7, kind: "album", value: "a,b,c"}}, r.deliveries)

	r = &recorder{}
	err = r.deliverer().Deliver(context.Background(), Message{
		UserID:   8,
		Language: "en",
		Texts:    map[string]string{"en": "look"},
		Photo:    "cover",
		Album:    []string{"a", "b"},
	})
	require.NoError(t, err)
	require.Equal(t, []delivery{
		{chatID: 8, kind: "photo", value: "cover"},
		{chatID: 8, kind: "album", value: "a,b"},
		{chatID: 8, kind: "text", value: "look"},
	}, r.deliveries)

	// A failed album stops the delivery before the text.
	r = &recorder{failFor: map[int64]bool{9: true}}
	err = r.deliverer().Deliver(context.Background(), Message{
		UserID:   9,
		Language: "en",
		Texts:    map[string]string{"en": "look"},
		Album:    []string{"a", "b"},
	})
	require.Error(t, err)
	require.Empty(t, r.deliveries)
}

func TestDeliverer_HandleTask(t *testing.T) {
	r := &recorder{}
	d := r.deliverer()

	task, err := NewTask(Message{UserID: 7, Language: "en", Texts: map[string]string{"en": "hello"}})
	require.NoError(t, err)
	require.Equal(t, TypeDeliver, task.Type())
	require.NoError(t, d.HandleTask(context.Background(), task))
	require.Equal(t, []delivery{{chatID: 7, kind: "text", value: "hello"}}, r.deliveries)

	err = d.HandleTask(context.Background(), asynq.NewTask(TypeDeliver, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewServeMux(t *testing.T) {
	base := testutil.MockContext()
	var env string
	sender := &testutil.MockSender{
		SendTextFunc: func(ctx context.Context, chatID int64, text string, button *model.Button) error {
			env = xcontext.Configs(ctx).Env
			return nil
		},
	}
	mux := NewServeMux(base, NewDeliverer(sender, &testutil.MockTelegramEndpoint{}))

	task, err := NewTask(Message{UserID: 7, Texts: map[string]string{"en": "hello"}})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	require.Equal(t, "test", env)
}

func TestEnqueue(t *testing.T) {
	ctx := testutil.MockContext()
	var payloads []Message
	enqueuer := &testutil.MockEnqueuer{
		EnqueueContextFunc: func(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
			var msg Message
			if err := json.Unmarshal(task.Payload(), &msg); err != nil {
				return nil, err
			}
			payloads = append(payloads, msg)
			return &asynq.TaskInfo{ID: "1", Queue: "broadcast"}, nil
		},
	}

	msg := Message{BroadcastID: "b1", UserID: 7, Texts: map[string]string{"en": "hello"}}
	require.NoError(t, Enqueue(ctx, enqueuer, msg))
	require.Equal(t, []Message{msg}, payloads)
}

func TestSendAll(t *testing.T) {
	r := &recorder{failFor: map[int64]bool{2: true}}
	msgs := []Message{
		{UserID: 1, Texts: map[string]string{"en": "a"}},
		{UserID: 2, Texts: map[string]string{"en": "b"}},
		{UserID: 3, Texts: map[string]string{"en": "c"}},
	}

	start := time.Now()
	report := SendAll(testutil.MockContext(), r.deliverer(), msgs, 10*time.Millisecond, 2)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	require.Equal(t, 2, report.Sent)
	require.Len(t, report.Failed, 1)
	require.Contains(t, report.Failed, int64(2))
	require.Len(t, r.deliveries, 2)
}

func TestSendAll_Canceled(t *testing.T) {
	r := &recorder{}
	ctx, cancel := context.WithCancel(testutil.MockContext())
	cancel()

	msgs := []Message{{UserID: 1}, {UserID: 2}, {UserID: 3}}
	report := SendAll(ctx, r.deliverer(), msgs, time.Hour, 1)
	require.Equal(t, 1, report.Sent)
	require.Len(t, report.Failed, 2)
	require.ErrorIs(t, report.Failed[2], context.Canceled)
}
