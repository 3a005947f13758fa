package migration

import (
	"context"

	"github.com/questx-lab/rewardbot/internal/domain/taskcheck"
	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
)

// migrate0002 recomputes the source of every task from its link. Tasks with
// an invalid link keep their source.
func migrate0002(ctx context.Context, requests *repository.Requests) error {
	tasks, err := requests.Tasks().GetList(ctx)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		source, err := taskcheck.SourceFromLink(task.Link)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Task %d has an invalid link %q: %v", task.TaskID, task.Link, err)
			continue
		}

		if source == task.Source {
			continue
		}

		_, err = requests.Tasks().Update(ctx, task.TaskID, repository.UpdateTaskParams{Source: &source})
		if err != nil {
			return err
		}
	}

	return nil
}
