package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handle func(method string, form map[string]string) any) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}

		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(handle(r.URL.Path, form)))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestEndpoint_GetMemberStatus(t *testing.T) {
	server := newTestServer(t, func(path string, form map[string]string) any {
		assert.Equal(t, "/bottoken/getChatMember", path)
		assert.Equal(t, "@news", form["chat_id"])

		if form["user_id"] == "1" {
			return map[string]any{"ok": true, "result": map[string]any{"status": "member"}}
		}

		return map[string]any{"ok": false, "description": "Bad Request: user not found"}
	})

	endpoint := New("token").WithURL(server.URL)

	status, err := endpoint.GetMemberStatus(context.Background(), "@news", 1)
	require.NoError(t, err)
	require.Equal(t, StatusMember, status)

	_, err = endpoint.GetMemberStatus(context.Background(), "@news", 2)
	require.ErrorContains(t, err, "user not found")
}

func TestEndpoint_SendMediaGroup(t *testing.T) {
	server := newTestServer(t, func(path string, form map[string]string) any {
		assert.Equal(t, "/bottoken/sendMediaGroup", path)
		assert.Equal(t, "7", form["chat_id"])
		assert.JSONEq(t, `[{"type":"photo","media":"a"},{"type":"photo","media":"b"}]`, form["media"])
		return map[string]any{"ok": true, "result": []any{}}
	})

	err := New("token").WithURL(server.URL).SendMediaGroup(context.Background(), 7, []string{"a", "b"})
	require.NoError(t, err)
}
