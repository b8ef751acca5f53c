// Package toolchain drives the pinned compiler toolchain that turns a
// prepared workspace into a release artifact.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/tagship/tagship/internal/util"
)

type BuildStage string

const (
	StageInstall         BuildStage = "toolchain_install"
	StageCompile         BuildStage = "compile"
	StageMissingArtifact BuildStage = "missing_artifact"
)

type BuildError struct {
	Stage  BuildStage
	Detail string
	Err    error
}

func (be BuildError) Error() string {
	if be.Err != nil {
		return fmt.Sprintf("build failed at %s: %s: %v", be.Stage, be.Detail, be.Err)
	}
	return fmt.Sprintf("build failed at %s: %s", be.Stage, be.Detail)
}

func (be BuildError) Unwrap() error {
	return be.Err
}

// Artifact is the build output for one run. It is only ever returned with
// Exists set: a zero toolchain exit code with no file on disk is a build
// failure, not a success.
type Artifact struct {
	Path   string
	Exists bool
}

// CommandRunner executes one external command in a directory and returns
// its combined output.
type CommandRunner interface {
	Run(ctx context.Context, dir, program string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir, program string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

type Builder struct {
	version  string
	target   string
	artifact string
	runner   CommandRunner
}

func NewBuilder(version, target, artifactName string) *Builder {
	return NewBuilderWithRunner(version, target, artifactName, execRunner{})
}

func NewBuilderWithRunner(
	version, target, artifactName string,
	runner CommandRunner,
) *Builder {
	return &Builder{
		version:  version,
		target:   target,
		artifact: artifactName,
		runner:   runner,
	}
}

// ArtifactPath is deterministic for a given target triple.
func (b *Builder) ArtifactPath(workDir string) string {
	return filepath.Join(workDir, "target", b.target, "release", b.artifact)
}

// Build installs the pinned toolchain, compiles the workspace in release
// mode, and verifies the expected artifact exists on disk. Each failure is
// reported with the stage it occurred in; all of them abort the run.
func (b *Builder) Build(ctx context.Context, workDir string) (Artifact, error) {
	if out, err := b.runner.Run(
		ctx, workDir,
		"rustup", "toolchain", "install", b.version, "--profile", "minimal",
	); err != nil {
		return Artifact{}, BuildError{Stage: StageInstall, Detail: out, Err: err}
	}
	if out, err := b.runner.Run(
		ctx, workDir,
		"rustup", "target", "add", b.target, "--toolchain", b.version,
	); err != nil {
		return Artifact{}, BuildError{Stage: StageInstall, Detail: out, Err: err}
	}

	if out, err := b.runner.Run(
		ctx, workDir,
		"cargo", "+"+b.version, "build", "--release", "--target", b.target,
	); err != nil {
		return Artifact{}, BuildError{Stage: StageCompile, Detail: out, Err: err}
	}

	path := b.ArtifactPath(workDir)
	if exists, _ := util.PathExists(path); !exists {
		return Artifact{}, BuildError{
			Stage:  StageMissingArtifact,
			Detail: fmt.Sprintf("compiler exited 0 but %s was not produced", path),
		}
	}

	return Artifact{Path: path, Exists: true}, nil
}
