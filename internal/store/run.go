package store

import (
	"context"
	"time"
)

type RunStatus string

const (
	StatusQueued  RunStatus = "queued"
	StatusRunning RunStatus = "running"
	StatusFailed  RunStatus = "failed"
	StatusPassed  RunStatus = "passed"
)

type Run struct {
	RunID            int64 `param:"run_id"`
	Ref              string
	RefKind          string
	StageReached     *string
	Outcome          *string
	WorkingDirectory *string
	Output           *string
	ArtifactPath     *string
	Status           RunStatus
	CreatedOn        time.Time
	StartedOn        *time.Time
	EndedOn          *time.Time
}

type RunStore interface {
	CreateRun(context.Context, string, string) (*Run, error)
	ReadRunByID(context.Context, int64) (*Run, error)
	UpdateRunStartedOn(context.Context, int64, string, RunStatus, *time.Time) error
	UpdateRunEndedOn(context.Context, int64, RunStatus, string, string, *string, *time.Time) error
	AppendRunOutput(context.Context, int64, string) error
	DeleteRun(context.Context, int64) error
	ListRuns(context.Context) ([]Run, error)
	ListRunsPaginated(context.Context, int64, int64) ([]Run, error)
	CountRuns(context.Context) (int64, error)
}
