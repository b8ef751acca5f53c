package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/tagship/tagship/internal/event"
	"github.com/tagship/tagship/internal/store"
	"github.com/tagship/tagship/internal/util"
)

type RunService struct {
	runStore  store.RunStore
	queue     *RunQueue
	scheduler gocron.Scheduler
}

func NewRunService(
	runStore store.RunStore,
	queue *RunQueue,
	scheduler gocron.Scheduler,
) *RunService {
	return &RunService{
		runStore:  runStore,
		queue:     queue,
		scheduler: scheduler,
	}
}

// CreateRun classifies the pushed ref, records the run, and enqueues it.
func (s *RunService) CreateRun(ctx context.Context, rawRef string) (*store.Run, error) {
	ev, err := event.Classify(rawRef)
	if err != nil {
		return nil, err
	}

	r, err := s.runStore.CreateRun(ctx, ev.Ref, string(ev.Kind))
	if err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(r); err != nil {
		return r, err
	}
	return r, nil
}

func (s *RunService) GetRunByID(ctx context.Context, runID int64) (*store.Run, error) {
	return s.runStore.ReadRunByID(ctx, runID)
}

// PruneRuns deletes runs that ended before the retention window. Runs
// that are still queued or running are never touched.
func (s *RunService) PruneRuns(ctx context.Context, retainDays int) error {
	runs, err := s.runStore.ListRuns(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retainDays)
	for i := range runs {
		r := &runs[i]
		if r.EndedOn == nil || !r.EndedOn.Before(cutoff) {
			continue
		}
		if err := s.runStore.DeleteRun(ctx, r.RunID); err != nil {
			return err
		}
	}
	return nil
}

// ScheduleRunPruning registers a daily job that keeps the run history
// bounded to the retention window.
func (s *RunService) ScheduleRunPruning(retainDays int) {
	if s.scheduler == nil {
		return
	}
	if _, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			if err := s.PruneRuns(context.Background(), retainDays); err != nil {
				log.Println("err pruning run history:", err)
			}
		})); err != nil {
		log.Fatal(err)
	}
}

func (s *RunService) ListRunsPaginated(
	ctx context.Context,
	limit, offset int64,
) ([]store.Run, error) {
	return s.runStore.ListRunsPaginated(ctx, limit, offset)
}

func (s *RunService) GetRunCount(ctx context.Context) (int64, error) {
	return s.runStore.CountRuns(ctx)
}

func (s *RunService) StartQueue() {
	go s.queue.Run()
}

func (s *RunService) ShutdownQueue() {
	s.queue.Shutdown()
}

// ScheduleBuildRun registers a cron job that enqueues a branch build. The
// scheduled variant never publishes: a branch ref always classifies as a
// branch push, so the release stage skips.
func (s *RunService) ScheduleBuildRun(schedule, branch string) (*string, error) {
	if s.scheduler == nil || schedule == "" {
		return nil, nil
	}
	job, err := s.scheduler.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(func() {
			if _, err := s.CreateRun(
				context.Background(),
				"refs/heads/"+branch,
			); err != nil {
				log.Println("err creating scheduled run:", err)
			}
		}))
	if err != nil {
		return nil, fmt.Errorf("error scheduling build run: %+w", err)
	}
	return util.AsPtr(job.ID().String()), nil
}
