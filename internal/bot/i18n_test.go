package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func TestT(t *testing.T) {
	require.Equal(t, "Tasks", T("en", "btn_tasks"))
	require.Equal(t, "Задания", T("ru", "btn_tasks"))
	require.Equal(t, "Tasks", T("fr", "btn_tasks"))
	require.Equal(t, "unknown_key", T("en", "unknown_key"))
	require.Equal(t, "Task 7 created.", T("en", "task_created", 7))
}

func TestTexts_SameKeys(t *testing.T) {
	en := maps.Keys(texts["en"])
	ru := maps.Keys(texts["ru"])
	slices.Sort(en)
	slices.Sort(ru)
	require.Equal(t, en, ru)
}
