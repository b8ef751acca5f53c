package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tagship/tagship/internal/pipeline"
	"github.com/tagship/tagship/internal/store"
	"github.com/tagship/tagship/internal/util"
)

// PipelineRunner runs one trigger-to-publish sequence for a raw ref.
type PipelineRunner interface {
	Run(ctx context.Context, rawRef string) pipeline.Result
}

// RunnerFactory builds a pipeline whose progress lines go to out. A fresh
// runner per run keeps workspaces isolated between runs.
type RunnerFactory func(out func(string)) PipelineRunner

func NewRunQueue(
	runStore store.RunStore,
	newRunner RunnerFactory,
	retainer *Retainer,
	maxRuns int64,
) *RunQueue {
	return &RunQueue{
		runStore:  runStore,
		newRunner: newRunner,
		retainer:  retainer,
		queue:     make(chan *store.Run, maxRuns),
		done:      make(chan struct{}),
	}
}

// RunQueue executes queued runs one at a time. The pipeline itself has no
// internal parallelism: each stage strictly requires the previous stage's
// output, and the queue is what serializes whole runs.
type RunQueue struct {
	runStore  store.RunStore
	newRunner RunnerFactory
	retainer  *Retainer

	queue chan *store.Run
	done  chan struct{}

	outputCh chan string
	mu       sync.Mutex
}

func (rq *RunQueue) Enqueue(r *store.Run) error {
	select {
	case <-rq.done:
		return NewErrRunQueueClosed()
	default:
	}
	select {
	case rq.queue <- r:
		return nil
	default:
		return NewErrRunQueueFull()
	}
}

func (rq *RunQueue) Run() {
	for {
		select {
		case run := <-rq.queue:
			rq.outputCh = make(chan string)

			var wg sync.WaitGroup
			wg.Go(func() {
				rq.handleOutput(run.RunID)
			})

			rq.processRun(context.Background(), run)

			close(rq.outputCh)
			wg.Wait()
		case <-rq.done:
			// the queue channel is left open: a racing Enqueue must
			// never hit a closed channel
			return
		}
	}
}

func (rq *RunQueue) Shutdown() {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	select {
	case <-rq.done:
	default:
		close(rq.done)
	}
}

func (rq *RunQueue) handleOutput(runID int64) {
	for out := range rq.outputCh {
		if err := rq.runStore.AppendRunOutput(context.Background(), runID, out); err != nil {
			log.Printf("err appending run output: %+v\n", err)
		}
	}
}

func (rq *RunQueue) processRun(ctx context.Context, run *store.Run) {
	startedOn := time.Now().UTC()
	if err := rq.runStore.UpdateRunStartedOn(
		ctx, run.RunID, "", store.StatusRunning, &startedOn,
	); err != nil {
		log.Println("err updating run started on:", err)
	}

	runner := rq.newRunner(func(out string) {
		rq.outputCh <- out
	})
	result := runner.Run(ctx, rawRefForRun(run))

	status := store.StatusPassed
	if !result.Success {
		status = store.StatusFailed
		log.Println("err processing pipeline run:", result.Err)
		if result.Err != nil {
			rq.outputCh <- result.Err.Error() + "\n"
		}
		rq.outputCh <- `
=============================================
FAIL || Pipeline execution failed.
=============================================
`
	} else {
		rq.outputCh <- `
=============================================
PASS || Pipeline execution finished.
=============================================
`
	}

	var artifactPath *string
	if result.ArtifactPath != "" {
		artifactPath = util.AsPtr(result.ArtifactPath)
	}
	endedOn := time.Now().UTC()
	if err := rq.runStore.UpdateRunEndedOn(
		ctx, run.RunID,
		status,
		string(result.StageReached),
		string(result.Outcome),
		artifactPath,
		&endedOn,
	); err != nil {
		log.Println("err updating run ended on:", err)
	}

	if result.Success && rq.retainer != nil && artifactPath != nil {
		if err := rq.retainer.Retain(ctx, *artifactPath); err != nil {
			// retention is a recovery aid, never a pipeline failure
			log.Println("err retaining artifact:", err)
			rq.outputCh <- "err retaining artifact: " + err.Error() + "\n"
		}
	}
}

func rawRefForRun(run *store.Run) string {
	switch run.RefKind {
	case "tag":
		return "refs/tags/" + run.Ref
	default:
		return "refs/heads/" + run.Ref
	}
}
