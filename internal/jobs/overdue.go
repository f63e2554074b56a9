package jobs

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/nanban-api/internal/metrics"
)

// OverdueMover moves overdue todo tasks back to the backlog.
type OverdueMover interface {
	MoveOverdueToBacklog() (int64, error)
}

// OverdueTaskJob sweeps overdue todo tasks into the backlog.
type OverdueTaskJob struct {
	tasks OverdueMover
}

func NewOverdueTaskJob(tasks OverdueMover) *OverdueTaskJob {
	return &OverdueTaskJob{tasks: tasks}
}

func (j *OverdueTaskJob) Name() string {
	return "overdue-to-backlog"
}

func (j *OverdueTaskJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	moved, err := j.tasks.MoveOverdueToBacklog()
	if err != nil {
		return err
	}
	metrics.OverdueTasksMoved.Add(float64(moved))
	if moved > 0 {
		logrus.WithField("moved", moved).Info("Moved overdue tasks to backlog")
	}
	return nil
}
