// Package pipeline runs the trigger-to-publish sequence: classify the ref,
// prepare a workspace, build the artifact, and publish a draft release when
// the ref is a version tag. Stages run strictly in order; the first failure
// ends the run.
package pipeline

import (
	"context"
	"fmt"

	"github.com/tagship/tagship/internal/event"
	"github.com/tagship/tagship/internal/release"
	"github.com/tagship/tagship/internal/toolchain"
	"github.com/tagship/tagship/internal/workspace"
)

type Stage string

const (
	StageClassify Stage = "classify"
	StagePrepare  Stage = "prepare"
	StageBuild    Stage = "build"
	StagePublish  Stage = "publish"
	StageDone     Stage = "done"
)

// Result is the externally observable outcome of one run.
type Result struct {
	StageReached Stage
	Success      bool
	Outcome      release.Outcome
	ArtifactPath string
	Err          error
}

func (r Result) ExitCode() int {
	if r.Success {
		return 0
	}
	return 1
}

type Preparer interface {
	Prepare(ctx context.Context, ev event.TriggerEvent) (*workspace.Workspace, error)
}

type Builder interface {
	Build(ctx context.Context, workDir string) (toolchain.Artifact, error)
}

type Publisher interface {
	CreateDraftRelease(ctx context.Context, d release.Descriptor, token string) (int64, error)
}

// TokenSource resolves the publish credential. It is consulted only inside
// the publish branch, so no earlier stage ever holds a write credential.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Config is the immutable static stage definition for one pipeline. It is
// passed in explicitly so targets and toolchain versions can vary per
// pipeline instance.
type Config struct {
	Repository       string
	ToolchainVersion string
	Target           string
	ArtifactName     string
	PublishEnabled   bool
}

type Pipeline struct {
	cfg       Config
	preparer  Preparer
	builder   Builder
	publisher Publisher
	tokens    TokenSource
	out       func(string)
}

// New wires a pipeline from its collaborators. The out sink receives
// human-readable progress lines; pass nil to discard them.
func New(
	cfg Config,
	preparer Preparer,
	builder Builder,
	publisher Publisher,
	tokens TokenSource,
	out func(string),
) *Pipeline {
	if out == nil {
		out = func(string) {}
	}
	return &Pipeline{
		cfg:       cfg,
		preparer:  preparer,
		builder:   builder,
		publisher: publisher,
		tokens:    tokens,
		out:       out,
	}
}

// Run executes one pipeline invocation for the raw ref of a push event.
// Any stage failure transitions directly to done with success=false; there
// are no retries and no backward transitions.
func (p *Pipeline) Run(ctx context.Context, rawRef string) Result {
	ev, err := event.Classify(rawRef)
	if err != nil {
		return Result{StageReached: StageClassify, Err: err}
	}
	p.out(fmt.Sprintf("Classified %s as %s push '%s'\n", rawRef, ev.Kind, ev.Ref))

	ws, err := p.preparer.Prepare(ctx, ev)
	if err != nil {
		return Result{StageReached: StagePrepare, Err: err}
	}
	if head, err := ws.Head(); err == nil {
		p.out(fmt.Sprintf("Prepared workspace %s at %s\n", ws.Dir, head))
	} else {
		p.out(fmt.Sprintf("Prepared workspace %s\n", ws.Dir))
	}

	artifact, err := p.builder.Build(ctx, ws.Dir)
	if err != nil {
		return Result{StageReached: StageBuild, Err: err}
	}
	p.out(fmt.Sprintf("Built artifact %s\n", artifact.Path))

	outcome, err := p.publishIfTag(ctx, ev, artifact)
	if err != nil {
		return Result{
			StageReached: StagePublish,
			Outcome:      outcome,
			ArtifactPath: artifact.Path,
			Err:          err,
		}
	}

	return Result{
		StageReached: StageDone,
		Success:      true,
		Outcome:      outcome,
		ArtifactPath: artifact.Path,
	}
}

func (p *Pipeline) publishIfTag(
	ctx context.Context,
	ev event.TriggerEvent,
	artifact toolchain.Artifact,
) (release.Outcome, error) {
	if !p.cfg.PublishEnabled {
		p.out("Publishing disabled, skipping release\n")
		return release.OutcomeSkipped, nil
	}

	decision := release.Decide(ev, artifact)
	if decision.Outcome == release.OutcomeSkipped {
		p.out(fmt.Sprintf("Ref '%s' is not a version tag, skipping release\n", ev.Ref))
		return release.OutcomeSkipped, nil
	}

	token, err := p.tokens.Token(ctx)
	if err != nil {
		return decision.Outcome, release.PublishError{Cause: release.CauseAuth, Err: err}
	}

	id, err := p.publisher.CreateDraftRelease(ctx, *decision.Descriptor, token)
	if err != nil {
		// the artifact stays in the workspace so the publish can be
		// redone out of band
		return decision.Outcome, err
	}
	p.out(fmt.Sprintf("Created draft release %d for tag %s\n", id, decision.Descriptor.TagName))

	return release.OutcomePublished, nil
}
