package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSON_Get(t *testing.T) {
	body, err := bytesToJSON([]byte(`{"ok":true,"result":{"status":"member","user":{"id":42}}}`))
	require.NoError(t, err)

	ok, err := body.GetBool("ok")
	require.NoError(t, err)
	require.True(t, ok)

	status, err := body.GetString("result.status")
	require.NoError(t, err)
	require.Equal(t, "member", status)

	_, err = body.GetString("result.user")
	require.Error(t, err)

	_, err = body.GetBool("result.status")
	require.Error(t, err)

	_, err = body.Get("missing")
	require.Error(t, err)

	_, err = body.Get("ok.value")
	require.Error(t, err)
}
